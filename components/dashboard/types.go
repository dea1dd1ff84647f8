package dashboard

import (
	"context"
	"io"
	"strings"
	"time"
)

// View identifies one of the dashboard tabs.
type View string

const (
	ViewCatalog    View = "catalog"
	ViewMovements  View = "movements"
	ViewUnresolved View = "unresolved"
	ViewAnalytics  View = "analytics"
)

// Views lists the tabs in display order.
func Views() []View {
	return []View{ViewCatalog, ViewMovements, ViewUnresolved, ViewAnalytics}
}

// ParseView accepts either a bare view name or a fragment id such as "#movements".
func ParseView(target string) (View, bool) {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(target), "#")))
	for _, view := range Views() {
		if string(view) == name {
			return view, true
		}
	}
	return "", false
}

// Product is one catalog entry. ID is assigned at the HTTP boundary and stays
// stable across fetches as long as the identifying fields do not change.
type Product struct {
	ID           string            `json:"id"`
	Position     int               `json:"position"`
	Name         string            `json:"name"`
	Symptoms     string            `json:"symptoms"`
	Presentation string            `json:"presentation"`
	Benefits     string            `json:"benefits,omitempty"`
	Category     string            `json:"category,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// MovementAction is the kind of catalog activity recorded by the backend.
type MovementAction string

const (
	ActionRecommended MovementAction = "recommended"
	ActionAdded       MovementAction = "added"
	ActionUpdated     MovementAction = "updated"
	ActionDeleted     MovementAction = "deleted"
	ActionViewed      MovementAction = "viewed"
)

// Movement is a read-only entry of the catalog activity log.
type Movement struct {
	Timestamp   time.Time      `json:"timestamp"`
	ProductName string         `json:"product_name,omitempty"`
	Action      MovementAction `json:"action"`
	Symptoms    string         `json:"symptoms,omitempty"`
	UserType    string         `json:"user_type,omitempty"`
	Details     string         `json:"details,omitempty"`
	SessionID   string         `json:"session_id,omitempty"`
}

// CaseStatus tracks the review state of an unresolved case.
type CaseStatus string

const (
	StatusPending   CaseStatus = "pending"
	StatusReviewing CaseStatus = "reviewing"
	StatusResolved  CaseStatus = "resolved"
)

// UnresolvedCase is a consultation the system could not answer.
type UnresolvedCase struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Symptoms  string     `json:"symptoms"`
	Status    CaseStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CountEntry is one (label, count) pair of a server-ordered ranking.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AnalyticsSnapshot aggregates consultation usage.
type AnalyticsSnapshot struct {
	TotalConsultations int          `json:"total_consultations"`
	DailyAverage       float64      `json:"daily_average"`
	UniqueProducts     int          `json:"unique_products"`
	UniqueSymptoms     int          `json:"unique_symptoms"`
	TopProducts        []CountEntry `json:"top_products"`
	TopSymptoms        []CountEntry `json:"top_symptoms"`
	ConsultationsByDay []CountEntry `json:"consultations_by_day"`
}

// ProblemAnalysis summarizes unresolved cases by category.
type ProblemAnalysis struct {
	UnresolvedTotal int          `json:"unresolved_total"`
	Categories      []CountEntry `json:"categories"`
	Suggestions     []string     `json:"suggestions"`
}

// ProductForm carries the add/edit product dialog values.
type ProductForm struct {
	Name         string `json:"PRODUCTO" validate:"required"`
	Symptoms     string `json:"SINTOMAS" validate:"required"`
	Presentation string `json:"PRESENTACION" validate:"required"`
	Benefits     string `json:"BENEFICIOS,omitempty"`
}

// CatalogUpload is the spreadsheet attached to the upload dialog.
type CatalogUpload struct {
	Filename string
	Content  io.Reader
}

// MovementQuery narrows the movement log window.
type MovementQuery struct {
	Days  int
	Limit int
}

// CaseQuery filters unresolved cases by status; empty means all.
type CaseQuery struct {
	Status string
}

// MutationResult is the acknowledgement returned by a successful mutation.
type MutationResult struct {
	Message string `json:"message,omitempty"`
}

// APIClient is the typed contract for the remote /master/api backend. Every
// verb fails with *TransportError or *ApplicationError.
type APIClient interface {
	ListProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	FilterProducts(ctx context.Context, category string) ([]Product, error)
	AddProduct(ctx context.Context, form ProductForm) (MutationResult, error)
	UploadCatalog(ctx context.Context, upload CatalogUpload) (MutationResult, error)
	DeleteProduct(ctx context.Context, index int) (MutationResult, error)
	ListMovements(ctx context.Context, query MovementQuery) ([]Movement, error)
	ListUnresolved(ctx context.Context, query CaseQuery) ([]UnresolvedCase, error)
	ResolveCase(ctx context.Context, id string) (MutationResult, error)
	AddCaseNotes(ctx context.Context, id, notes string) (MutationResult, error)
	FetchAnalytics(ctx context.Context, days int) (AnalyticsSnapshot, error)
	FetchProblemAnalysis(ctx context.Context) (ProblemAnalysis, error)
}
