package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownView is returned when a tab activation names no registered view.
	ErrUnknownView = errors.New("dashboard: unknown view")
	// ErrMissingClient is returned when a controller is built without an API client.
	ErrMissingClient = errors.New("dashboard: api client is required")
	// ErrProductNotFound is returned when a product id no longer matches the catalog.
	ErrProductNotFound = errors.New("dashboard: product not found")
	// ErrNoFile is returned when a catalog upload has no file attached.
	ErrNoFile = errors.New("dashboard: no catalog file attached")
	// ErrMissingCaseID is returned when a case action names no case.
	ErrMissingCaseID = errors.New("dashboard: case id is required")
)

// TransportError reports a request that never produced a readable response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError reports a response the server produced but that signals
// failure: success=false, an {"error": ...} body, a non-2xx status, or a
// payload that does not match the expected shape.
type ApplicationError struct {
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *ApplicationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("application error: %s (%d): %s", e.Path, e.Status, msg)
	}
	return fmt.Sprintf("application error: %s: %s", e.Path, msg)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

// ServerMessage returns the server-provided failure message, if any.
func ServerMessage(err error) string {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dashboard: invalid form fields: %v", e.Fields)
}
