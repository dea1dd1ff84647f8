package masterapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// productNamespace scopes the name-based product identifiers.
var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:saludarte:master:product"))

// Catalog columns mapped onto Product fields; anything else lands in Extra.
const (
	columnName         = "producto"
	columnSymptoms     = "sintomas"
	columnPresentation = "presentacion"
	columnBenefits     = "beneficios"
	columnCategory     = "categoria"
)

// ProductID derives the stable identifier of a catalog row. Rows with equal
// identifying fields are told apart by ordinal, their occurrence count so far.
func ProductID(name, symptoms, presentation string, ordinal int) string {
	key := strings.Join([]string{name, symptoms, presentation, strconv.Itoa(ordinal)}, "\x1f")
	return uuid.NewSHA1(productNamespace, []byte(key)).String()
}

func decodeProducts(rows []map[string]any) []dashboard.Product {
	products := make([]dashboard.Product, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		p := dashboard.Product{Position: i}
		for key, raw := range row {
			value := cellString(raw)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case columnName:
				p.Name = value
			case columnSymptoms:
				p.Symptoms = value
			case columnPresentation:
				p.Presentation = value
			case columnBenefits:
				p.Benefits = value
			case columnCategory:
				p.Category = value
			default:
				if value == "" {
					continue
				}
				if p.Extra == nil {
					p.Extra = make(map[string]string)
				}
				p.Extra[strcase.ToSnake(key)] = value
			}
		}
		identity := p.Name + "\x1f" + p.Symptoms + "\x1f" + p.Presentation
		p.ID = ProductID(p.Name, p.Symptoms, p.Presentation, seen[identity])
		seen[identity]++
		products = append(products, p)
	}
	return products
}

// cellString renders a spreadsheet cell; whole numbers print without a fraction.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

type movementRecord struct {
	Timestamp   string `json:"timestamp"`
	ProductName string `json:"product_name"`
	Action      string `json:"action"`
	Symptoms    string `json:"symptoms"`
	UserType    string `json:"user_type"`
	Details     string `json:"details"`
	SessionID   string `json:"session_id"`
}

func decodeMovements(rows []movementRecord, loc *time.Location) ([]dashboard.Movement, error) {
	out := make([]dashboard.Movement, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTimestamp(row.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("movement %d: %w", i, err)
		}
		out = append(out, dashboard.Movement{
			Timestamp:   ts,
			ProductName: row.ProductName,
			Action:      dashboard.MovementAction(strings.TrimSpace(row.Action)),
			Symptoms:    row.Symptoms,
			UserType:    row.UserType,
			Details:     row.Details,
			SessionID:   row.SessionID,
		})
	}
	return out, nil
}

type caseRecord struct {
	ID        flexString `json:"id"`
	Timestamp string     `json:"timestamp"`
	Symptoms  string     `json:"symptoms"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes"`
	SessionID string     `json:"session_id"`
	UpdatedAt string     `json:"updated_at"`
}

func decodeCases(rows []caseRecord, loc *time.Location) ([]dashboard.UnresolvedCase, error) {
	out := make([]dashboard.UnresolvedCase, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTimestamp(row.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		item := dashboard.UnresolvedCase{
			ID:        string(row.ID),
			Timestamp: ts,
			Symptoms:  row.Symptoms,
			Status:    dashboard.CaseStatus(strings.TrimSpace(row.Status)),
			Notes:     row.Notes,
			SessionID: row.SessionID,
		}
		if strings.TrimSpace(row.UpdatedAt) != "" {
			updated, err := parseTimestamp(row.UpdatedAt, loc)
			if err != nil {
				return nil, fmt.Errorf("case %d updated_at: %w", i, err)
			}
			item.UpdatedAt = &updated
		}
		out = append(out, item)
	}
	return out, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*f = flexString(n.String())
	return nil
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseTimestamp reads ISO-8601 values. Values without an offset are taken
// in loc.
func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

type analyticsPayload struct {
	Patterns struct {
		Total          int     `json:"total_consultas"`
		DailyAverage   float64 `json:"promedio_diario"`
		UniqueProducts int     `json:"productos_unicos_recomendados"`
		UniqueSymptoms int     `json:"sintomas_unicos_consultados"`
	} `json:"patrones_uso"`
	TopProducts json.RawMessage `json:"productos_mas_recomendados"`
	TopSymptoms json.RawMessage `json:"sintomas_mas_consultados"`
	ByDay       json.RawMessage `json:"consultas_por_dia"`
}

func (p analyticsPayload) toSnapshot() (dashboard.AnalyticsSnapshot, error) {
	products, err := decodeOrderedCounts(p.TopProducts)
	if err != nil {
		return dashboard.AnalyticsSnapshot{}, fmt.Errorf("productos_mas_recomendados: %w", err)
	}
	symptoms, err := decodeOrderedCounts(p.TopSymptoms)
	if err != nil {
		return dashboard.AnalyticsSnapshot{}, fmt.Errorf("sintomas_mas_consultados: %w", err)
	}
	byDay, err := decodeOrderedCounts(p.ByDay)
	if err != nil {
		return dashboard.AnalyticsSnapshot{}, fmt.Errorf("consultas_por_dia: %w", err)
	}
	return dashboard.AnalyticsSnapshot{
		TotalConsultations: p.Patterns.Total,
		DailyAverage:       p.Patterns.DailyAverage,
		UniqueProducts:     p.Patterns.UniqueProducts,
		UniqueSymptoms:     p.Patterns.UniqueSymptoms,
		TopProducts:        products,
		TopSymptoms:        symptoms,
		ConsultationsByDay: byDay,
	}, nil
}

type problemPayload struct {
	Total       int             `json:"casos_sin_resolver"`
	Categories  json.RawMessage `json:"categorias_problemas"`
	Suggestions []string        `json:"recomendaciones_mejora"`
}

func (p problemPayload) toAnalysis() (dashboard.ProblemAnalysis, error) {
	categories, err := decodeOrderedCounts(p.Categories)
	if err != nil {
		return dashboard.ProblemAnalysis{}, fmt.Errorf("categorias_problemas: %w", err)
	}
	return dashboard.ProblemAnalysis{
		UnresolvedTotal: p.Total,
		Categories:      categories,
		Suggestions:     append([]string(nil), p.Suggestions...),
	}, nil
}

// decodeOrderedCounts reads a {"label": count} object keeping the member order
// the server wrote, which a map would lose.
func decodeOrderedCounts(raw json.RawMessage) ([]dashboard.CountEntry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var out []dashboard.CountEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", keyTok)
		}
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return nil, fmt.Errorf("count for %q: %w", label, err)
		}
		count, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return nil, fmt.Errorf("count for %q: %w", label, err)
			}
			count = int64(f)
		}
		out = append(out, dashboard.CountEntry{Label: label, Count: int(count)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
