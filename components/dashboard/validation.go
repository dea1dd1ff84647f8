package dashboard

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FormValidator checks dialog forms before any request is sent.
type FormValidator interface {
	ValidateProduct(form ProductForm) error
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type structValidator struct{}

// NewFormValidator returns the validator/v10 backed form validator.
func NewFormValidator() FormValidator {
	return structValidator{}
}

// ValidateProduct requires name, symptoms and presentation to be non-blank.
func (structValidator) ValidateProduct(form ProductForm) error {
	trimmed := ProductForm{
		Name:         strings.TrimSpace(form.Name),
		Symptoms:     strings.TrimSpace(form.Symptoms),
		Presentation: strings.TrimSpace(form.Presentation),
		Benefits:     strings.TrimSpace(form.Benefits),
	}
	err := formValidator().Struct(trimmed)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}
