package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/dashboard/commands"
	"github.com/saludarte/go-master-dashboard/components/dashboard/queries"
	"github.com/saludarte/go-master-dashboard/components/intake"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 120

// Handlers exposes the master dashboard over net/http.
type Handlers struct {
	API       Executor
	Broadcast *dashboard.BroadcastHook
	Targets   TargetResolver
	Logger    log.Interface
}

func (h *Handlers) target(r *http.Request) commands.Target {
	return h.Targets.Resolve(RequestValues{
		SessionHeader:  r.Header.Get(SessionHeader),
		SessionQuery:   r.URL.Query().Get(SessionQuery),
		LocaleQuery:    r.URL.Query().Get(LocaleQuery),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		User:           r.Header.Get(UserHeader),
		Tenant:         r.Header.Get(TenantHeader),
	})
}

func (h *Handlers) logger() log.Interface {
	if h.Logger == nil {
		return log.Log
	}
	return h.Logger
}

func snapshotInput(t commands.Target) queries.SnapshotInput {
	return queries.SnapshotInput{Session: t.Session, Locale: t.Locale}
}

// HandlePage renders the full dashboard page.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.API.RenderPage(r.Context(), snapshotInput(h.target(r)), &buf); err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleSnapshot returns the page state as JSON.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.API.Page(r.Context(), snapshotInput(h.target(r)))
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleTab activates a tab and returns its HTML fragment.
func (h *Handlers) HandleTab(w http.ResponseWriter, r *http.Request) {
	t := h.target(r)
	var buf bytes.Buffer
	input := queries.ViewInput{Session: t.Session, Locale: t.Locale, Target: chi.URLParam(r, "view")}
	if err := h.API.RenderView(r.Context(), input, &buf); err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleSearch searches the catalog by free text.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	t := h.target(r)
	table, err := h.API.Products(r.Context(), queries.ProductsInput{Session: t.Session, Locale: t.Locale, Search: r.URL.Query().Get("q")})
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// HandleFilter narrows the catalog by category.
func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	t := h.target(r)
	table, err := h.API.Products(r.Context(), queries.ProductsInput{Session: t.Session, Locale: t.Locale, Category: r.URL.Query().Get("category")})
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// HandleAddProduct creates a product from a JSON form.
func (h *Handlers) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	var form dashboard.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.API.AddProduct(r.Context(), commands.AddProductInput{Target: h.target(r), Form: form})
	h.writeResult(w, http.StatusCreated, res, err)
}

// HandleUploadCatalog accepts a multipart catalog spreadsheet.
func (h *Handlers) HandleUploadCatalog(w http.ResponseWriter, r *http.Request) {
	input := commands.UploadCatalogInput{Target: h.target(r)}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if file, header, err := r.FormFile(CatalogField); err == nil {
		defer file.Close()
		input.Filename = header.Filename
		input.Content = file
	}
	res, err := h.API.UploadCatalog(r.Context(), input)
	h.writeResult(w, http.StatusOK, res, err)
}

// HandleDeleteProduct deletes a product; ?confirm=true records the operator's confirmation.
func (h *Handlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.API.DeleteProduct(r.Context(), commands.DeleteProductInput{
		Target:    h.target(r),
		ProductID: chi.URLParam(r, "id"),
		Confirmed: Truthy(r.URL.Query().Get(ConfirmQuery)),
	})
	h.writeResult(w, http.StatusOK, res, err)
}

// HandleResolveCase marks a case resolved.
func (h *Handlers) HandleResolveCase(w http.ResponseWriter, r *http.Request) {
	res, err := h.API.ResolveCase(r.Context(), commands.ResolveCaseInput{Target: h.target(r), CaseID: chi.URLParam(r, "id")})
	h.writeResult(w, http.StatusOK, res, err)
}

// HandleAddNotes attaches notes to a case.
func (h *Handlers) HandleAddNotes(w http.ResponseWriter, r *http.Request) {
	var payload NotesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.AddNotesInput{Target: h.target(r), CaseID: chi.URLParam(r, "id")}
	if payload.Notes != nil {
		input.Notes, input.Provided = *payload.Notes, true
	}
	res, err := h.API.AddNotes(r.Context(), input)
	h.writeResult(w, http.StatusOK, res, err)
}

// HandleAlerts lists the visible banners.
func (h *Handlers) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.API.Alerts(r.Context(), snapshotInput(h.target(r)))
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// HandleDismissAlert closes a banner.
func (h *Handlers) HandleDismissAlert(w http.ResponseWriter, r *http.Request) {
	ok, err := h.API.DismissAlert(r.Context(), snapshotInput(h.target(r)), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	writeJSON(w, status, DismissResponse{Dismissed: ok})
}

// HandleValidateIntake returns per-field feedback for the intake form.
func (h *Handlers) HandleValidateIntake(w http.ResponseWriter, r *http.Request) {
	var form intake.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := h.API.ValidateIntake(r.Context(), h.target(r).Locale, form)
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Mount registers the routes on a chi router.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/", h.HandlePage)
	r.Get("/_page", h.HandleSnapshot)
	r.Get("/tabs/{view}", h.HandleTab)
	r.Get("/products/search", h.HandleSearch)
	r.Get("/products/filter", h.HandleFilter)
	r.Post("/products", h.HandleAddProduct)
	r.Delete("/products/{id}", h.HandleDeleteProduct)
	r.Post("/catalog", h.HandleUploadCatalog)
	r.Post("/cases/{id}/resolve", h.HandleResolveCase)
	r.Post("/cases/{id}/notes", h.HandleAddNotes)
	r.Get("/alerts", h.HandleAlerts)
	r.Delete("/alerts/{id}", h.HandleDismissAlert)
	r.Post("/intake/validate", h.HandleValidateIntake)
	if h.Broadcast != nil {
		r.Get("/ws", h.Broadcast.ServeWebSocket)
		r.Get("/events", h.Broadcast.ServeSSE)
	}
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	BasePath    string
	RateLimit   int
	SSLRedirect bool
}

// NewRouter builds the chi router with security headers and per-IP rate limiting.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	base := opts.BasePath
	if base == "" {
		base = "/admin/master"
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = DefaultRateLimit
	}
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.SSLRedirect,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		secureMiddleware.Handler,
		httprate.Limit(rate, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	)
	r.Route(base, func(r chi.Router) {
		h.Mount(r)
	})
	return r
}

func (h *Handlers) writeResult(w http.ResponseWriter, status int, res dashboard.ActionResult, err error) {
	if err != nil {
		h.writeError(w, err, &res)
		return
	}
	if res.Status != dashboard.ActionSucceeded {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error, res *dashboard.ActionResult) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger().WithError(err).WithField("status", status).Warn("request failed")
	}
	writeJSON(w, status, NewErrorBody(err, res))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
