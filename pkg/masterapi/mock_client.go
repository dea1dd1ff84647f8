package masterapi

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Products  []dashboard.Product
	Movements []dashboard.Movement
	Cases     []dashboard.UnresolvedCase
	Analytics dashboard.AnalyticsSnapshot
	Problems  dashboard.ProblemAnalysis
}

// MockClient implements dashboard.APIClient using in-memory fixtures.
// Mutations change the fixtures so follow-up reads observe them.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

var _ dashboard.APIClient = (*MockClient)(nil)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	c := &MockClient{data: data}
	c.data.Products = cloneProducts(data.Products)
	c.reindexLocked()
	return c
}

// ListProducts returns the fixture catalog.
func (c *MockClient) ListProducts(context.Context) ([]dashboard.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProducts(c.data.Products), nil
}

// SearchProducts matches name, symptoms or benefits case-insensitively.
func (c *MockClient) SearchProducts(_ context.Context, query string) ([]dashboard.Product, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []dashboard.Product{}
	for _, p := range c.data.Products {
		haystack := strings.ToLower(p.Name + " " + p.Symptoms + " " + p.Benefits)
		if strings.Contains(haystack, query) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// FilterProducts returns products of the given category.
func (c *MockClient) FilterProducts(ctx context.Context, category string) ([]dashboard.Product, error) {
	if strings.TrimSpace(category) == "" {
		return c.ListProducts(ctx)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []dashboard.Product{}
	for _, p := range c.data.Products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// AddProduct appends a product, rejecting an empty name like the backend.
func (c *MockClient) AddProduct(_ context.Context, form dashboard.ProductForm) (dashboard.MutationResult, error) {
	if strings.TrimSpace(form.Name) == "" {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathAddProduct, Status: 400, Message: "Datos de producto inválidos"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Products = append(c.data.Products, dashboard.Product{
		Name:         form.Name,
		Symptoms:     form.Symptoms,
		Presentation: form.Presentation,
		Benefits:     form.Benefits,
	})
	c.reindexLocked()
	return dashboard.MutationResult{Message: "Producto agregado exitosamente"}, nil
}

// UploadCatalog drains the file and acknowledges it.
func (c *MockClient) UploadCatalog(_ context.Context, upload dashboard.CatalogUpload) (dashboard.MutationResult, error) {
	if upload.Content == nil {
		return dashboard.MutationResult{}, dashboard.ErrNoFile
	}
	if _, err := io.Copy(io.Discard, upload.Content); err != nil {
		return dashboard.MutationResult{}, &dashboard.TransportError{Method: "POST", Path: pathUploadCatalog, Err: err}
	}
	return dashboard.MutationResult{Message: "Catálogo actualizado"}, nil
}

// DeleteProduct removes the product at index.
func (c *MockClient) DeleteProduct(_ context.Context, index int) (dashboard.MutationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.data.Products) {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{
			Path:    fmt.Sprintf("%s%d", pathDeleteProduct, index),
			Status:  200,
			Message: "Índice de producto inválido",
		}
	}
	c.data.Products = append(c.data.Products[:index:index], c.data.Products[index+1:]...)
	c.reindexLocked()
	return dashboard.MutationResult{Message: "Producto eliminado exitosamente"}, nil
}

// ListMovements returns the newest query.Limit fixture movements.
func (c *MockClient) ListMovements(_ context.Context, query dashboard.MovementQuery) ([]dashboard.Movement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	movements := c.data.Movements
	if query.Limit > 0 && len(movements) > query.Limit {
		movements = movements[len(movements)-query.Limit:]
	}
	out := make([]dashboard.Movement, len(movements))
	copy(out, movements)
	return out, nil
}

// ListUnresolved returns fixture cases, filtered by status unless "all".
func (c *MockClient) ListUnresolved(_ context.Context, query dashboard.CaseQuery) ([]dashboard.UnresolvedCase, error) {
	status := strings.TrimSpace(query.Status)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []dashboard.UnresolvedCase{}
	for _, item := range c.data.Cases {
		if status != "" && status != "all" && string(item.Status) != status {
			continue
		}
		out = append(out, cloneCase(item))
	}
	return out, nil
}

// ResolveCase flips a fixture case to resolved.
func (c *MockClient) ResolveCase(_ context.Context, id string) (dashboard.MutationResult, error) {
	return c.updateCase(id, func(item *dashboard.UnresolvedCase) {
		item.Status = dashboard.StatusResolved
	})
}

// AddCaseNotes sets the notes of a fixture case.
func (c *MockClient) AddCaseNotes(_ context.Context, id, notes string) (dashboard.MutationResult, error) {
	if strings.TrimSpace(notes) == "" {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: casePath(id, "notes"), Status: 400, Message: "Notas requeridas"}
	}
	return c.updateCase(id, func(item *dashboard.UnresolvedCase) {
		item.Notes = notes
	})
}

func (c *MockClient) updateCase(id string, apply func(*dashboard.UnresolvedCase)) (dashboard.MutationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Cases {
		if c.data.Cases[i].ID == id {
			apply(&c.data.Cases[i])
			return dashboard.MutationResult{Message: "Caso actualizado"}, nil
		}
	}
	return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathUnresolved + "/" + id, Status: 200, Message: "Caso no encontrado"}
}

// FetchAnalytics returns the fixture snapshot ignoring the window.
func (c *MockClient) FetchAnalytics(context.Context, int) (dashboard.AnalyticsSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.data.Analytics
	snap.TopProducts = cloneCounts(snap.TopProducts)
	snap.TopSymptoms = cloneCounts(snap.TopSymptoms)
	snap.ConsultationsByDay = cloneCounts(snap.ConsultationsByDay)
	return snap, nil
}

// FetchProblemAnalysis returns the fixture analysis.
func (c *MockClient) FetchProblemAnalysis(context.Context) (dashboard.ProblemAnalysis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return dashboard.ProblemAnalysis{
		UnresolvedTotal: c.data.Problems.UnresolvedTotal,
		Categories:      cloneCounts(c.data.Problems.Categories),
		Suggestions:     append([]string(nil), c.data.Problems.Suggestions...),
	}, nil
}

// reindexLocked refreshes positions and stable ids after the catalog changes.
func (c *MockClient) reindexLocked() {
	seen := map[string]int{}
	for i := range c.data.Products {
		p := &c.data.Products[i]
		p.Position = i
		identity := p.Name + "\x1f" + p.Symptoms + "\x1f" + p.Presentation
		p.ID = ProductID(p.Name, p.Symptoms, p.Presentation, seen[identity])
		seen[identity]++
	}
}

func cloneProduct(p dashboard.Product) dashboard.Product {
	if p.Extra != nil {
		extra := make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			extra[k] = v
		}
		p.Extra = extra
	}
	return p
}

func cloneProducts(products []dashboard.Product) []dashboard.Product {
	out := make([]dashboard.Product, len(products))
	for i, p := range products {
		out[i] = cloneProduct(p)
	}
	return out
}

func cloneCase(item dashboard.UnresolvedCase) dashboard.UnresolvedCase {
	if item.UpdatedAt != nil {
		updated := *item.UpdatedAt
		item.UpdatedAt = &updated
	}
	return item
}

func cloneCounts(entries []dashboard.CountEntry) []dashboard.CountEntry {
	if entries == nil {
		return nil
	}
	out := make([]dashboard.CountEntry, len(entries))
	copy(out, entries)
	return out
}
