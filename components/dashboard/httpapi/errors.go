package httpapi

import (
	"errors"
	"net/http"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

// StatusFor maps dashboard errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		validationErr  *dashboard.ValidationError
		applicationErr *dashboard.ApplicationError
		transportErr   *dashboard.TransportError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrUnknownView), errors.Is(err, dashboard.ErrProductNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.Is(err, dashboard.ErrNoFile), errors.Is(err, dashboard.ErrMissingCaseID):
		return http.StatusBadRequest
	case errors.As(err, &applicationErr):
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON body of every failed request. Result is set when a
// dashboard action ran and failed.
type ErrorBody struct {
	Error  string                  `json:"error"`
	Fields []string                `json:"fields,omitempty"`
	Result *dashboard.ActionResult `json:"result,omitempty"`
}

// NewErrorBody builds the response body for err.
func NewErrorBody(err error, result *dashboard.ActionResult) ErrorBody {
	body := ErrorBody{Error: err.Error(), Result: result}
	var validationErr *dashboard.ValidationError
	if errors.As(err, &validationErr) {
		body.Fields = validationErr.Fields
	}
	return body
}
