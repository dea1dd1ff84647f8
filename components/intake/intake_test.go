package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

func TestValidateAcceptsCompleteForm(t *testing.T) {
	v := NewValidator(Options{})
	res, err := v.Validate(context.Background(), "", Form{Age: "34", Weight: "72.5", Symptoms: "dolor de cabeza fuerte"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	age, ok := res.Field(FieldAge)
	require.True(t, ok)
	assert.Equal(t, StateValid, age.State)
	assert.Equal(t, "¡Perfecto!", age.Message)
	assert.Equal(t, "is-valid", age.InputClass)
	assert.Equal(t, "valid-feedback", age.FeedbackClass)

	symptoms, _ := res.Field(FieldSymptoms)
	assert.Equal(t, "¡Excelente descripción!", symptoms.Message)
}

func TestValidateBounds(t *testing.T) {
	v := NewValidator(Options{})
	cases := []struct {
		name  string
		form  Form
		field string
		want  State
	}{
		{"age zero", Form{Age: "0"}, FieldAge, StateInvalid},
		{"age one", Form{Age: "1"}, FieldAge, StateValid},
		{"age max", Form{Age: "120"}, FieldAge, StateValid},
		{"age over", Form{Age: "121"}, FieldAge, StateInvalid},
		{"age blank", Form{Age: " "}, FieldAge, StateInvalid},
		{"age text", Form{Age: "treinta"}, FieldAge, StateInvalid},
		{"weight blank", Form{Weight: ""}, FieldWeight, StateEmpty},
		{"weight low", Form{Weight: "19.9"}, FieldWeight, StateInvalid},
		{"weight min", Form{Weight: "20"}, FieldWeight, StateValid},
		{"weight max", Form{Weight: "300"}, FieldWeight, StateValid},
		{"weight high", Form{Weight: "301"}, FieldWeight, StateInvalid},
		{"weight text", Form{Weight: "mucho"}, FieldWeight, StateInvalid},
		{"symptoms short", Form{Symptoms: "  tos  "}, FieldSymptoms, StateInvalid},
		{"symptoms padded", Form{Symptoms: "   123456789   "}, FieldSymptoms, StateInvalid},
		{"symptoms ten", Form{Symptoms: "0123456789"}, FieldSymptoms, StateValid},
		{"symptoms accents", Form{Symptoms: "ñáéíóúñáéí"}, FieldSymptoms, StateValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := v.Validate(context.Background(), "", tc.form)
			require.NoError(t, err)
			got, ok := res.Field(tc.field)
			require.True(t, ok)
			assert.Equal(t, tc.want, got.State)
		})
	}
}

func TestValidateBlankWeightHasNoFeedback(t *testing.T) {
	res, err := NewValidator(Options{}).Validate(context.Background(), "", Form{Age: "40", Symptoms: "mareos por la mañana"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	weight, _ := res.Field(FieldWeight)
	assert.Empty(t, weight.Message)
	assert.Empty(t, weight.InputClass)
}

func TestValidateInvalidMessages(t *testing.T) {
	res, err := NewValidator(Options{}).Validate(context.Background(), "", Form{Age: "200", Weight: "5", Symptoms: "tos"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, "Por favor ingresa una edad válida (1-120 años)", res.Fields[0].Message)
	assert.Equal(t, "Por favor ingresa un peso válido (20-300 kg)", res.Fields[1].Message)
	assert.Equal(t, "Por favor describe tus síntomas con más detalle (mínimo 10 caracteres)", res.Fields[2].Message)
	assert.Equal(t, "invalid-feedback", res.Fields[2].FeedbackClass)
}

func TestValidateUsesTranslator(t *testing.T) {
	catalog, err := dashboard.DefaultMessageCatalog()
	require.NoError(t, err)
	v := NewValidator(Options{Translator: catalog})

	res, err := v.Validate(context.Background(), "en", Form{Age: "30", Symptoms: "short"})
	require.NoError(t, err)
	age, _ := res.Field(FieldAge)
	assert.Equal(t, "Perfect!", age.Message)
	symptoms, _ := res.Field(FieldSymptoms)
	assert.Equal(t, "Please describe your symptoms in more detail (at least 10 characters)", symptoms.Message)

	res, err = v.Validate(context.Background(), "", Form{Age: "30", Symptoms: "short"})
	require.NoError(t, err)
	symptoms, _ = res.Field(FieldSymptoms)
	assert.Equal(t, "Por favor describe tus síntomas con más detalle (mínimo 10 caracteres)", symptoms.Message)
}
