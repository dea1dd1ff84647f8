// Package intake checks the patient intake form (age, weight, symptoms) and
// produces the per-field feedback shown under each input.
package intake

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// Field names, in display order.
const (
	FieldAge      = "age"
	FieldWeight   = "weight"
	FieldSymptoms = "symptoms"
)

// State is the validation state of one input.
type State string

const (
	StateValid   State = "valid"
	StateInvalid State = "invalid"
	// StateEmpty is used for optional inputs left blank: no feedback is shown.
	StateEmpty State = ""
)

// Form holds the raw values typed into the intake form.
type Form struct {
	Age      string `json:"age"`
	Weight   string `json:"weight"`
	Symptoms string `json:"symptoms"`
}

// FieldFeedback is the feedback line rendered for one input.
type FieldFeedback struct {
	Field         string `json:"field"`
	State         State  `json:"state"`
	Message       string `json:"message,omitempty"`
	InputClass    string `json:"input_class,omitempty"`
	FeedbackClass string `json:"feedback_class,omitempty"`
}

// Result is the outcome for the whole form.
type Result struct {
	Valid  bool            `json:"valid"`
	Fields []FieldFeedback `json:"fields"`
}

// Field returns the feedback of one input.
func (r Result) Field(name string) (FieldFeedback, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldFeedback{}, false
}

type parsed struct {
	Age      int      `validate:"gte=1,lte=120"`
	Weight   *float64 `validate:"omitempty,gte=20,lte=300"`
	Symptoms string   `validate:"min=10"`
}

var fieldNames = map[string]string{
	"Age":      FieldAge,
	"Weight":   FieldWeight,
	"Symptoms": FieldSymptoms,
}

var fallbacks = map[string]string{
	"intake.age.invalid":      "Por favor ingresa una edad válida (1-120 años)",
	"intake.age.valid":        "¡Perfecto!",
	"intake.weight.invalid":   "Por favor ingresa un peso válido (20-300 kg)",
	"intake.weight.valid":     "¡Perfecto!",
	"intake.symptoms.invalid": "Por favor describe tus síntomas con más detalle (mínimo 10 caracteres)",
	"intake.symptoms.valid":   "¡Excelente descripción!",
}

// Options configures a Validator.
type Options struct {
	Translator dashboard.TranslationService
	Locale     string
}

// Validator checks intake forms.
type Validator struct {
	translator dashboard.TranslationService
	locale     string
	validate   *validator.Validate
}

// NewValidator builds a validator. Without a translator the Spanish messages are used.
func NewValidator(opts Options) *Validator {
	locale := opts.Locale
	if locale == "" {
		locale = dashboard.DefaultLocale
	}
	return &Validator{
		translator: opts.Translator,
		locale:     locale,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks the form for the given locale; an empty locale uses the
// validator default. Unparseable numbers count as out of range.
func (v *Validator) Validate(ctx context.Context, locale string, form Form) (Result, error) {
	if locale == "" {
		locale = v.locale
	}
	input := parsed{Symptoms: strings.TrimSpace(form.Symptoms)}
	if age, err := strconv.Atoi(strings.TrimSpace(form.Age)); err == nil {
		input.Age = age
	}
	weightGiven := strings.TrimSpace(form.Weight) != ""
	if weightGiven {
		weight, _ := strconv.ParseFloat(strings.TrimSpace(form.Weight), 64)
		input.Weight = &weight
	}

	invalid := map[string]bool{}
	if err := v.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Result{}, err
		}
		for _, fe := range fieldErrs {
			invalid[fieldNames[fe.StructField()]] = true
		}
	}

	res := Result{Valid: len(invalid) == 0}
	for _, field := range []string{FieldAge, FieldWeight, FieldSymptoms} {
		if field == FieldWeight && !weightGiven {
			res.Fields = append(res.Fields, FieldFeedback{Field: field, State: StateEmpty})
			continue
		}
		res.Fields = append(res.Fields, v.feedback(ctx, locale, field, !invalid[field]))
	}
	return res, nil
}

func (v *Validator) feedback(ctx context.Context, locale, field string, ok bool) FieldFeedback {
	if ok {
		return FieldFeedback{
			Field:         field,
			State:         StateValid,
			Message:       v.message(ctx, locale, "intake."+field+".valid"),
			InputClass:    "is-valid",
			FeedbackClass: "valid-feedback",
		}
	}
	return FieldFeedback{
		Field:         field,
		State:         StateInvalid,
		Message:       v.message(ctx, locale, "intake."+field+".invalid"),
		InputClass:    "is-invalid",
		FeedbackClass: "invalid-feedback",
	}
}

func (v *Validator) message(ctx context.Context, locale, key string) string {
	if v.translator != nil {
		if msg, err := v.translator.Translate(ctx, key, locale, nil); err == nil && msg != "" {
			return msg
		}
	}
	return fallbacks[key]
}
