package httpapi

import (
	"strings"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/dashboard/commands"
)

// Request keys shared by both transports.
const (
	SessionHeader  = "X-Dashboard-Session"
	SessionQuery   = "session"
	LocaleQuery    = "locale"
	UserHeader     = "X-Dashboard-User"
	TenantHeader   = "X-Dashboard-Tenant"
	FilenameQuery  = "filename"
	ConfirmQuery   = "confirm"
	CatalogField   = "catalog_file"
	maxUploadBytes = 32 << 20
)

// RequestValues are the raw values a transport reads from a request.
type RequestValues struct {
	SessionHeader  string
	SessionQuery   string
	LocaleQuery    string
	AcceptLanguage string
	User           string
	Tenant         string
}

// TargetResolver turns request values into the addressed session and operator.
type TargetResolver struct {
	Locales       []string
	DefaultLocale string
}

// Resolve picks the session (header first) and negotiates the locale.
func (r TargetResolver) Resolve(v RequestValues) commands.Target {
	session := strings.TrimSpace(v.SessionHeader)
	if session == "" {
		session = strings.TrimSpace(v.SessionQuery)
	}
	if session == "" {
		session = dashboard.DefaultSession
	}
	fallback := r.DefaultLocale
	if fallback == "" {
		fallback = dashboard.DefaultLocale
	}
	locale := strings.TrimSpace(v.LocaleQuery)
	if locale == "" {
		locale = v.AcceptLanguage
	}
	supported := r.Locales
	if len(supported) == 0 {
		supported = []string{fallback}
	}
	user := strings.TrimSpace(v.User)
	return commands.Target{
		Session:  session,
		Locale:   dashboard.NegotiateLocale(locale, supported, fallback),
		ActorID:  user,
		UserID:   user,
		TenantID: strings.TrimSpace(v.Tenant),
	}
}

// Truthy reports whether a query flag is set ("1", "true", "yes", "on").
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "si", "sí":
		return true
	}
	return false
}

// NotesPayload is the body of the case notes endpoint. A missing notes member
// means the operator dismissed the prompt.
type NotesPayload struct {
	Notes *string `json:"notes"`
}

// DismissResponse is returned after dismissing an alert.
type DismissResponse struct {
	Dismissed bool `json:"dismissed"`
}
