package dashboard

import (
	"sync"
	"time"
)

// PageSnapshot is a copy of everything currently rendered for one session.
type PageSnapshot struct {
	Session   string             `json:"session"`
	Locale    string             `json:"locale"`
	Active    View               `json:"active"`
	Products  ProductTable       `json:"products"`
	Movements MovementTable      `json:"movements"`
	Cases     CaseTable          `json:"cases"`
	Analytics AnalyticsPanel     `json:"analytics"`
	Alerts    []Alert            `json:"alerts"`
	Loaded    map[View]time.Time `json:"loaded"`
}

// page holds the rendered view models. Each setter replaces a whole view.
type page struct {
	mu        sync.RWMutex
	active    View
	products  ProductTable
	movements MovementTable
	cases     CaseTable
	analytics AnalyticsPanel
	loaded    map[View]time.Time
}

func newPage() *page {
	return &page{
		active: ViewCatalog,
		loaded: make(map[View]time.Time),
	}
}

func (p *page) setActive(view View) {
	p.mu.Lock()
	p.active = view
	p.mu.Unlock()
}

func (p *page) replaceProducts(table ProductTable, at time.Time) {
	p.mu.Lock()
	p.products = table
	p.loaded[ViewCatalog] = at
	p.mu.Unlock()
}

func (p *page) replaceMovements(table MovementTable, at time.Time) {
	p.mu.Lock()
	p.movements = table
	p.loaded[ViewMovements] = at
	p.mu.Unlock()
}

func (p *page) replaceCases(table CaseTable, at time.Time) {
	p.mu.Lock()
	p.cases = table
	p.loaded[ViewUnresolved] = at
	p.mu.Unlock()
}

func (p *page) replaceAnalytics(panel AnalyticsPanel, at time.Time) {
	p.mu.Lock()
	p.analytics = panel
	p.loaded[ViewAnalytics] = at
	p.mu.Unlock()
}

func (p *page) snapshot() PageSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	loaded := make(map[View]time.Time, len(p.loaded))
	for view, at := range p.loaded {
		loaded[view] = at
	}
	return PageSnapshot{
		Active:    p.active,
		Products:  ProductTable{Rows: append([]ProductRow(nil), p.products.Rows...)},
		Movements: MovementTable{Rows: append([]MovementRow(nil), p.movements.Rows...)},
		Cases:     CaseTable{Rows: append([]CaseRow(nil), p.cases.Rows...)},
		Analytics: p.analytics,
		Loaded:    loaded,
	}
}
