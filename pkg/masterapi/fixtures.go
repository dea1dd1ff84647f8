package masterapi

import (
	"time"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// DemoData returns a small catalog with activity for local demos.
func DemoData(now time.Time) MockData {
	day := func(offset, hour int) time.Time {
		y, m, d := now.AddDate(0, 0, -offset).Date()
		return time.Date(y, m, d, hour, 0, 0, 0, now.Location())
	}
	updated := day(0, 9)
	return MockData{
		Products: []dashboard.Product{
			{Name: "Árnica", Symptoms: "golpes, moretones, dolor muscular", Presentation: "gel", Benefits: "antiinflamatorio", Category: "dolor"},
			{Name: "Manzanilla", Symptoms: "digestión lenta, gastritis", Presentation: "infusión", Benefits: "calmante digestivo", Category: "digestivo"},
			{Name: "Valeriana", Symptoms: "insomnio, ansiedad, nervios", Presentation: "cápsulas", Benefits: "relajante", Category: "nervioso"},
			{Name: "Eucalipto", Symptoms: "tos, congestión nasal", Presentation: "jarabe", Category: "respiratorio"},
		},
		Movements: []dashboard.Movement{
			{Timestamp: day(2, 10), ProductName: "Árnica", Action: dashboard.ActionRecommended, Symptoms: "dolor de rodilla", UserType: "paciente"},
			{Timestamp: day(1, 12), ProductName: "Valeriana", Action: dashboard.ActionRecommended, Symptoms: "no puedo dormir", UserType: "paciente"},
			{Timestamp: day(1, 16), ProductName: "Eucalipto", Action: dashboard.ActionAdded, UserType: "master"},
			{Timestamp: day(0, 8), ProductName: "Manzanilla", Action: dashboard.ActionViewed},
		},
		Cases: []dashboard.UnresolvedCase{
			{ID: "c-1001", Timestamp: day(3, 11), Symptoms: "dolor en el pecho al respirar", Status: dashboard.StatusPending},
			{ID: "c-1002", Timestamp: day(1, 18), Symptoms: "ansiedad y palpitaciones", Status: dashboard.StatusReviewing, Notes: "derivar a consulta", UpdatedAt: &updated},
		},
		Analytics: dashboard.AnalyticsSnapshot{
			TotalConsultations: 42,
			DailyAverage:       1.4,
			UniqueProducts:     3,
			UniqueSymptoms:     5,
			TopProducts:        []dashboard.CountEntry{{Label: "Árnica", Count: 18}, {Label: "Valeriana", Count: 12}, {Label: "Manzanilla", Count: 7}},
			TopSymptoms:        []dashboard.CountEntry{{Label: "dolor muscular", Count: 15}, {Label: "insomnio", Count: 9}, {Label: "gastritis", Count: 4}},
		},
		Problems: dashboard.ProblemAnalysis{
			UnresolvedTotal: 2,
			Categories:      []dashboard.CountEntry{{Label: "Dolor/Molestias", Count: 1}, {Label: "Sistema Nervioso", Count: 1}},
			Suggestions: []string{
				"Considerar ampliar productos para Dolor/Molestias (1 casos)",
				"Revisar mapeo de síntomas en el catálogo",
			},
		},
	}
}
