package dashboard

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// MaxTopEntries caps the number of bars shown per ranking.
const MaxTopEntries = 10

const (
	TopProductsContainer = "topProducts"
	TopSymptomsContainer = "topSymptoms"
)

type topEntriesStyle struct {
	badge    Severity
	bar      Severity
	emptyKey string
	emptyMsg string
}

var topEntryStyles = map[string]topEntriesStyle{
	TopProductsContainer: {SeverityPrimary, SeveritySuccess, "analytics.empty.top_products", "No hay datos de productos recomendados aún."},
	TopSymptomsContainer: {SeverityInfo, SeverityInfo, "analytics.empty.top_symptoms", "No hay datos de síntomas consultados aún."},
}

// ProductRow is one rendered catalog row. Actions address the product by ID.
type ProductRow struct {
	ID            string `json:"id"`
	Position      int    `json:"position"`
	Name          string `json:"name"`
	Symptoms      string `json:"symptoms"`
	SymptomsTitle string `json:"symptoms_title"`
	Presentation  string `json:"presentation"`
}

// ProductTable replaces the catalog table body as a whole.
type ProductTable struct {
	Rows []ProductRow `json:"rows"`
}

// MovementRow is one rendered movement log row.
type MovementRow struct {
	Date           string   `json:"date"`
	Product        string   `json:"product"`
	ActionLabel    string   `json:"action_label"`
	ActionSeverity Severity `json:"action_severity"`
	BadgeClass     string   `json:"badge_class"`
	Symptoms       string   `json:"symptoms"`
	SymptomsTitle  string   `json:"symptoms_title"`
	UserType       string   `json:"user_type"`
}

// MovementTable replaces the movements table body as a whole.
type MovementTable struct {
	Rows []MovementRow `json:"rows"`
}

// CaseRow is one rendered unresolved case row. Actions address the case by ID.
type CaseRow struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	Symptoms       string   `json:"symptoms"`
	SymptomsTitle  string   `json:"symptoms_title"`
	StatusLabel    string   `json:"status_label"`
	StatusSeverity Severity `json:"status_severity"`
	BadgeClass     string   `json:"badge_class"`
	Notes          string   `json:"notes"`
}

// CaseTable replaces the unresolved cases table body as a whole.
type CaseTable struct {
	Rows []CaseRow `json:"rows"`
}

// TopEntryBar is one bar of a ranking; Percent is relative to the top entry.
type TopEntryBar struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Width   string  `json:"width"`
}

// TopEntriesPanel is a ranked list of bars or an empty-state message.
type TopEntriesPanel struct {
	ContainerID  string        `json:"container_id"`
	Bars         []TopEntryBar `json:"bars"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
	BadgeClass   string        `json:"badge_class"`
	BarClass     string        `json:"bar_class"`
	ChartHTML    string        `json:"-"`
}

// CategoryRow is one problem category with its case count label.
type CategoryRow struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	CountLabel string `json:"count_label"`
}

// CategoryList renders problem categories or an empty-state message.
type CategoryList struct {
	Rows         []CategoryRow `json:"rows"`
	Empty        bool          `json:"empty"`
	EmptyMessage string        `json:"empty_message,omitempty"`
}

// SuggestionList renders improvement suggestions or an empty-state message.
type SuggestionList struct {
	Items        []string `json:"items"`
	Empty        bool     `json:"empty"`
	EmptyMessage string   `json:"empty_message,omitempty"`
}

// UsageSummary holds the headline analytics numbers.
type UsageSummary struct {
	TotalConsultations int     `json:"total_consultations"`
	DailyAverage       float64 `json:"daily_average"`
	Total              string  `json:"total"`
	Average            string  `json:"average"`
}

// AnalyticsPanel is the complete analytics tab.
type AnalyticsPanel struct {
	Summary         UsageSummary    `json:"summary"`
	TopProducts     TopEntriesPanel `json:"top_products"`
	TopSymptoms     TopEntriesPanel `json:"top_symptoms"`
	Categories      CategoryList    `json:"categories"`
	Suggestions     SuggestionList  `json:"suggestions"`
	UnresolvedTotal int             `json:"unresolved_total"`
}

// Presenter turns fetched records into view models for one viewer locale.
type Presenter struct {
	Translator TranslationService
	Locale     string
	Formatter  Formatter
}

func (p Presenter) text(ctx context.Context, key, fallback string, args map[string]any) string {
	if p.Translator == nil {
		return interpolate(fallback, args)
	}
	return translateOrFallback(ctx, p.Translator, key, p.Locale, interpolate(fallback, args), args)
}

// RenderProducts renders one row per product in input order.
func (p Presenter) RenderProducts(ctx context.Context, products []Product) ProductTable {
	rows := make([]ProductRow, 0, len(products))
	for _, product := range products {
		rows = append(rows, ProductRow{
			ID:            product.ID,
			Position:      product.Position,
			Name:          orPlaceholder(product.Name, p.text(ctx, "product.placeholder.name", "Sin nombre", nil)),
			Symptoms:      orPlaceholder(product.Symptoms, p.text(ctx, "product.placeholder.symptoms", "Sin síntomas definidos", nil)),
			SymptomsTitle: product.Symptoms,
			Presentation:  orPlaceholder(product.Presentation, p.text(ctx, "product.placeholder.presentation", "No especificada", nil)),
		})
	}
	return ProductTable{Rows: rows}
}

// RenderMovements renders the movement log with localized timestamps and action badges.
func (p Presenter) RenderMovements(ctx context.Context, movements []Movement) MovementTable {
	rows := make([]MovementRow, 0, len(movements))
	for _, movement := range movements {
		sev := ActionSeverity(movement.Action)
		rows = append(rows, MovementRow{
			Date:           p.Formatter.Timestamp(movement.Timestamp, p.Locale),
			Product:        orPlaceholder(movement.ProductName, p.text(ctx, "movement.placeholder.product", "N/A", nil)),
			ActionLabel:    p.actionLabel(ctx, movement.Action),
			ActionSeverity: sev,
			BadgeClass:     sev.BadgeClass(),
			Symptoms:       orPlaceholder(movement.Symptoms, p.text(ctx, "movement.placeholder.symptoms", "N/A", nil)),
			SymptomsTitle:  movement.Symptoms,
			UserType:       orPlaceholder(movement.UserType, p.text(ctx, "movement.placeholder.user_type", "Sistema", nil)),
		})
	}
	return MovementTable{Rows: rows}
}

// RenderUnresolvedCases renders the case table with status badges.
func (p Presenter) RenderUnresolvedCases(ctx context.Context, cases []UnresolvedCase) CaseTable {
	rows := make([]CaseRow, 0, len(cases))
	for _, item := range cases {
		sev := StatusSeverity(item.Status)
		rows = append(rows, CaseRow{
			ID:             item.ID,
			Date:           p.Formatter.Timestamp(item.Timestamp, p.Locale),
			Symptoms:       item.Symptoms,
			SymptomsTitle:  item.Symptoms,
			StatusLabel:    p.statusLabel(ctx, item.Status),
			StatusSeverity: sev,
			BadgeClass:     sev.BadgeClass(),
			Notes:          orPlaceholder(item.Notes, p.text(ctx, "case.placeholder.notes", "Sin notas", nil)),
		})
	}
	return CaseTable{Rows: rows}
}

// RenderTopEntries ranks entries by descending count, keeping server order for
// ties, and sizes each bar relative to the first one.
func (p Presenter) RenderTopEntries(ctx context.Context, entries []CountEntry, containerID string) TopEntriesPanel {
	style, ok := topEntryStyles[containerID]
	if !ok {
		style = topEntriesStyle{badge: SeverityPrimary, bar: SeveritySuccess}
	}
	panel := TopEntriesPanel{
		ContainerID: containerID,
		BadgeClass:  style.badge.BadgeClass(),
		BarClass:    style.bar.BadgeClass(),
	}
	if len(entries) == 0 {
		panel.Empty = true
		panel.Bars = []TopEntryBar{}
		panel.EmptyMessage = p.text(ctx, style.emptyKey, style.emptyMsg, nil)
		return panel
	}
	ranked := make([]CountEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > MaxTopEntries {
		ranked = ranked[:MaxTopEntries]
	}
	top := ranked[0].Count
	panel.Bars = make([]TopEntryBar, len(ranked))
	for i, entry := range ranked {
		percent := 0.0
		switch {
		case i == 0:
			percent = 100
		case top > 0:
			percent = float64(entry.Count) / float64(top) * 100
		}
		panel.Bars[i] = TopEntryBar{
			Label:   entry.Label,
			Count:   entry.Count,
			Percent: percent,
			Width:   strconv.FormatFloat(percent, 'f', -1, 64) + "%",
		}
	}
	return panel
}

// RenderProblemCategories lists categories with a "N caso(s)" label.
func (p Presenter) RenderProblemCategories(ctx context.Context, entries []CountEntry) CategoryList {
	if len(entries) == 0 {
		return CategoryList{
			Rows:         []CategoryRow{},
			Empty:        true,
			EmptyMessage: p.text(ctx, "analytics.empty.categories", "No hay casos sin resolver categorizados.", nil),
		}
	}
	rows := make([]CategoryRow, len(entries))
	for i, entry := range entries {
		key, fallback := "analytics.case_count.other", "{count} casos"
		if entry.Count == 1 {
			key, fallback = "analytics.case_count.one", "{count} caso"
		}
		rows[i] = CategoryRow{
			Label:      entry.Label,
			Count:      entry.Count,
			CountLabel: p.text(ctx, key, fallback, map[string]any{"count": entry.Count}),
		}
	}
	return CategoryList{Rows: rows}
}

// RenderSuggestions lists improvement suggestions.
func (p Presenter) RenderSuggestions(ctx context.Context, suggestions []string) SuggestionList {
	items := make([]string, 0, len(suggestions))
	for _, item := range suggestions {
		if strings.TrimSpace(item) != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return SuggestionList{
			Items:        items,
			Empty:        true,
			EmptyMessage: p.text(ctx, "analytics.empty.suggestions", "No hay recomendaciones disponibles.", nil),
		}
	}
	return SuggestionList{Items: items}
}

// RenderUsageSummary formats the headline numbers; the daily average keeps one decimal.
func (p Presenter) RenderUsageSummary(snapshot AnalyticsSnapshot) UsageSummary {
	return UsageSummary{
		TotalConsultations: snapshot.TotalConsultations,
		DailyAverage:       snapshot.DailyAverage,
		Total:              p.Formatter.Integer(snapshot.TotalConsultations, p.Locale),
		Average:            p.Formatter.Decimal(snapshot.DailyAverage, p.Locale),
	}
}

// RenderAnalytics assembles the analytics tab from both analytics payloads.
func (p Presenter) RenderAnalytics(ctx context.Context, snapshot AnalyticsSnapshot, problems ProblemAnalysis) AnalyticsPanel {
	return AnalyticsPanel{
		Summary:         p.RenderUsageSummary(snapshot),
		TopProducts:     p.RenderTopEntries(ctx, snapshot.TopProducts, TopProductsContainer),
		TopSymptoms:     p.RenderTopEntries(ctx, snapshot.TopSymptoms, TopSymptomsContainer),
		Categories:      p.RenderProblemCategories(ctx, problems.Categories),
		Suggestions:     p.RenderSuggestions(ctx, problems.Suggestions),
		UnresolvedTotal: problems.UnresolvedTotal,
	}
}

func (p Presenter) actionLabel(ctx context.Context, action MovementAction) string {
	switch action {
	case ActionRecommended:
		return p.text(ctx, "movement.action.recommended", "Recomendado", nil)
	case ActionAdded:
		return p.text(ctx, "movement.action.added", "Agregado", nil)
	case ActionUpdated:
		return p.text(ctx, "movement.action.updated", "Actualizado", nil)
	case ActionDeleted:
		return p.text(ctx, "movement.action.deleted", "Eliminado", nil)
	case ActionViewed:
		return p.text(ctx, "movement.action.viewed", "Visto", nil)
	default:
		return string(action)
	}
}

func (p Presenter) statusLabel(ctx context.Context, status CaseStatus) string {
	switch status {
	case StatusPending:
		return p.text(ctx, "case.status.pending", "Pendiente", nil)
	case StatusReviewing:
		return p.text(ctx, "case.status.reviewing", "En revisión", nil)
	case StatusResolved:
		return p.text(ctx, "case.status.resolved", "Resuelto", nil)
	default:
		return string(status)
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
