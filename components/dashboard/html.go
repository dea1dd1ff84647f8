package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

const (
	pageTemplate   = "master_dashboard.html"
	alertsTemplate = "partials/alerts.html"
)

// TabLink is one entry of the tab bar.
type TabLink struct {
	View   View   `json:"view"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
	HTML   string `json:"-"`
}

func viewTemplate(view View) string {
	return "tabs/" + string(view) + ".html"
}

func (c *Controller) templates() (Renderer, error) {
	c.rendererOnce.Do(func() {
		if c.renderer == nil {
			c.renderer, c.rendererErr = NewTemplateRenderer()
		}
	})
	return c.renderer, c.rendererErr
}

// RenderView writes the HTML fragment of one tab from the current page state.
func (c *Controller) RenderView(ctx context.Context, view View, out io.Writer) error {
	renderer, err := c.templates()
	if err != nil {
		return fmt.Errorf("dashboard: template renderer: %w", err)
	}
	snap := c.Snapshot()
	if _, err := renderer.Render(viewTemplate(view), c.viewData(ctx, view, snap), out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", view, err)
	}
	return nil
}

// RenderAlerts writes the banner list fragment.
func (c *Controller) RenderAlerts(out io.Writer) error {
	renderer, err := c.templates()
	if err != nil {
		return fmt.Errorf("dashboard: template renderer: %w", err)
	}
	if _, err := renderer.Render(alertsTemplate, map[string]any{"alerts": c.alerts.Active()}, out); err != nil {
		return fmt.Errorf("dashboard: render alerts: %w", err)
	}
	return nil
}

// RenderPage writes the full dashboard page with every tab pre-rendered.
func (c *Controller) RenderPage(ctx context.Context, out io.Writer) error {
	renderer, err := c.templates()
	if err != nil {
		return fmt.Errorf("dashboard: template renderer: %w", err)
	}
	snap := c.Snapshot()
	tabs := make([]TabLink, 0, len(Views()))
	for _, view := range Views() {
		var buf bytes.Buffer
		if _, err := renderer.Render(viewTemplate(view), c.viewData(ctx, view, snap), &buf); err != nil {
			return fmt.Errorf("dashboard: render %s: %w", view, err)
		}
		tabs = append(tabs, TabLink{
			View:   view,
			Label:  c.message(ctx, "tab."+string(view), string(view)),
			Active: snap.Active == view,
			HTML:   buf.String(),
		})
	}
	var alerts bytes.Buffer
	if _, err := renderer.Render(alertsTemplate, map[string]any{"alerts": snap.Alerts}, &alerts); err != nil {
		return fmt.Errorf("dashboard: render alerts: %w", err)
	}
	data := map[string]any{
		"title":       c.message(ctx, "page.title", "Panel maestro SaludArte"),
		"session":     snap.Session,
		"locale":      snap.Locale,
		"active":      snap.Active,
		"tabs":        tabs,
		"alerts_html": alerts.String(),
	}
	if _, err := renderer.Render(pageTemplate, data, out); err != nil {
		return fmt.Errorf("dashboard: render page: %w", err)
	}
	return nil
}

func (c *Controller) viewData(ctx context.Context, view View, snap PageSnapshot) map[string]any {
	data := map[string]any{
		"view":    view,
		"session": snap.Session,
		"labels":  c.labels(ctx),
	}
	switch view {
	case ViewCatalog:
		data["table"] = snap.Products
	case ViewMovements:
		data["table"] = snap.Movements
	case ViewUnresolved:
		data["table"] = snap.Cases
	case ViewAnalytics:
		data["panel"] = snap.Analytics
	}
	return data
}

func (c *Controller) labels(ctx context.Context) map[string]string {
	return map[string]string{
		"delete_confirm": c.message(ctx, "prompt.product.delete", "¿Está seguro de que desea eliminar este producto?"),
		"notes_prompt":   c.message(ctx, "prompt.case.notes", "Ingrese notas para este caso:"),
	}
}
