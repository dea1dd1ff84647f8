package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apex/log"
	router "github.com/goliatone/go-router"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/dashboard/commands"
	"github.com/saludarte/go-master-dashboard/components/dashboard/httpapi"
	"github.com/saludarte/go-master-dashboard/components/dashboard/queries"
	"github.com/saludarte/go-master-dashboard/components/intake"
)

// DefaultBasePath is where the dashboard is mounted when Config.BasePath is empty.
const DefaultBasePath = "/admin/master"

// TargetResolver converts a router.Context into the addressed session and operator.
type TargetResolver func(Context) commands.Target

// Context is the part of router.Context the handlers use.
type Context interface {
	Context() context.Context
	Param(name string, defaultValue ...string) string
	Query(name string, defaultValue ...string) string
	Header(key string) string
	Body() []byte
	JSON(code int, v any) error
	Send(body []byte) error
	SetHeader(key, value string) router.Context
	Locals(key any, value ...any) any
}

// Config wires go-router with the master dashboard executor and event hook.
type Config[T any] struct {
	Router         router.Router[T]
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	Targets        httpapi.TargetResolver
	TargetResolver TargetResolver
	BasePath       string
	Routes         RouteConfig
	Logger         log.Interface
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	Page      string
	Tab       string
	Search    string
	Filter    string
	Products  string
	Product   string
	Catalog   string
	Resolve   string
	Notes     string
	Alerts    string
	Alert     string
	Intake    string
	WebSocket string
}

type handlerFunc func(Context) error

type route struct {
	method  string
	path    string
	handler handlerFunc
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: executor is required")
	}
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}
	routes := defaultRouteConfig(cfg.Routes)
	group := cfg.Router.Group(base)

	for _, rt := range cfg.table(routes) {
		handler := rt.handler
		wrapped := router.WrapHandler(func(ctx router.Context) error {
			return handler(ctx)
		})
		switch rt.method {
		case http.MethodGet:
			group.Get(rt.path, wrapped)
		case http.MethodPost:
			group.Post(rt.path, wrapped)
		case http.MethodDelete:
			group.Delete(rt.path, wrapped)
		}
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func (cfg Config[T]) table(routes RouteConfig) []route {
	h := handlers{api: cfg.API, logger: cfg.Logger, target: cfg.TargetResolver}
	if h.target == nil {
		targets := cfg.Targets
		h.target = func(ctx Context) commands.Target { return defaultTarget(ctx, targets) }
	}
	if h.logger == nil {
		h.logger = log.Log
	}
	return []route{
		{http.MethodGet, routes.HTML, h.page},
		{http.MethodGet, routes.Page, h.snapshot},
		{http.MethodGet, routes.Tab, h.tab},
		{http.MethodGet, routes.Search, h.search},
		{http.MethodGet, routes.Filter, h.filter},
		{http.MethodPost, routes.Products, h.addProduct},
		{http.MethodDelete, routes.Product, h.deleteProduct},
		{http.MethodPost, routes.Catalog, h.uploadCatalog},
		{http.MethodPost, routes.Resolve, h.resolveCase},
		{http.MethodPost, routes.Notes, h.addNotes},
		{http.MethodGet, routes.Alerts, h.alerts},
		{http.MethodDelete, routes.Alert, h.dismissAlert},
		{http.MethodPost, routes.Intake, h.validateIntake},
	}
}

type handlers struct {
	api    httpapi.Executor
	logger log.Interface
	target TargetResolver
}

func snapshotInput(t commands.Target) queries.SnapshotInput {
	return queries.SnapshotInput{Session: t.Session, Locale: t.Locale}
}

func (h handlers) page(ctx Context) error {
	var buf bytes.Buffer
	if err := h.api.RenderPage(ctx.Context(), snapshotInput(h.target(ctx)), &buf); err != nil {
		return h.respondError(ctx, err, nil)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h handlers) snapshot(ctx Context) error {
	snap, err := h.api.Page(ctx.Context(), snapshotInput(h.target(ctx)))
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (h handlers) tab(ctx Context) error {
	t := h.target(ctx)
	var buf bytes.Buffer
	input := queries.ViewInput{Session: t.Session, Locale: t.Locale, Target: ctx.Param("view")}
	if err := h.api.RenderView(ctx.Context(), input, &buf); err != nil {
		return h.respondError(ctx, err, nil)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h handlers) search(ctx Context) error {
	t := h.target(ctx)
	table, err := h.api.Products(ctx.Context(), queries.ProductsInput{Session: t.Session, Locale: t.Locale, Search: ctx.Query("q")})
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	return ctx.JSON(http.StatusOK, table)
}

func (h handlers) filter(ctx Context) error {
	t := h.target(ctx)
	table, err := h.api.Products(ctx.Context(), queries.ProductsInput{Session: t.Session, Locale: t.Locale, Category: ctx.Query("category")})
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	return ctx.JSON(http.StatusOK, table)
}

func (h handlers) addProduct(ctx Context) error {
	var form dashboard.ProductForm
	if err := json.Unmarshal(ctx.Body(), &form); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	res, err := h.api.AddProduct(ctx.Context(), commands.AddProductInput{Target: h.target(ctx), Form: form})
	return h.respondResult(ctx, http.StatusCreated, res, err)
}

// uploadCatalog takes the spreadsheet as the raw request body and its name
// from ?filename=.
func (h handlers) uploadCatalog(ctx Context) error {
	input := commands.UploadCatalogInput{Target: h.target(ctx), Filename: ctx.Query(httpapi.FilenameQuery)}
	if body := ctx.Body(); len(body) > 0 {
		input.Content = bytes.NewReader(body)
	}
	res, err := h.api.UploadCatalog(ctx.Context(), input)
	return h.respondResult(ctx, http.StatusOK, res, err)
}

func (h handlers) deleteProduct(ctx Context) error {
	res, err := h.api.DeleteProduct(ctx.Context(), commands.DeleteProductInput{
		Target:    h.target(ctx),
		ProductID: ctx.Param("id"),
		Confirmed: httpapi.Truthy(ctx.Query(httpapi.ConfirmQuery)),
	})
	return h.respondResult(ctx, http.StatusOK, res, err)
}

func (h handlers) resolveCase(ctx Context) error {
	res, err := h.api.ResolveCase(ctx.Context(), commands.ResolveCaseInput{Target: h.target(ctx), CaseID: ctx.Param("id")})
	return h.respondResult(ctx, http.StatusOK, res, err)
}

func (h handlers) addNotes(ctx Context) error {
	var payload httpapi.NotesPayload
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	input := commands.AddNotesInput{Target: h.target(ctx), CaseID: ctx.Param("id")}
	if payload.Notes != nil {
		input.Notes, input.Provided = *payload.Notes, true
	}
	res, err := h.api.AddNotes(ctx.Context(), input)
	return h.respondResult(ctx, http.StatusOK, res, err)
}

func (h handlers) alerts(ctx Context) error {
	alerts, err := h.api.Alerts(ctx.Context(), snapshotInput(h.target(ctx)))
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (h handlers) dismissAlert(ctx Context) error {
	ok, err := h.api.DismissAlert(ctx.Context(), snapshotInput(h.target(ctx)), ctx.Param("id"))
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return ctx.JSON(status, httpapi.DismissResponse{Dismissed: ok})
}

func (h handlers) validateIntake(ctx Context) error {
	var form intake.Form
	if err := json.Unmarshal(ctx.Body(), &form); err != nil {
		return respondError(ctx, http.StatusBadRequest, err)
	}
	res, err := h.api.ValidateIntake(ctx.Context(), h.target(ctx).Locale, form)
	if err != nil {
		return h.respondError(ctx, err, nil)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (h handlers) respondResult(ctx Context, status int, res dashboard.ActionResult, err error) error {
	if err != nil {
		return h.respondError(ctx, err, &res)
	}
	if res.Status != dashboard.ActionSucceeded {
		status = http.StatusOK
	}
	return ctx.JSON(status, res)
}

func (h handlers) respondError(ctx Context, err error, res *dashboard.ActionResult) error {
	status := httpapi.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("status", status).Warn("request failed")
	}
	return ctx.JSON(status, httpapi.NewErrorBody(err, res))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		if err := streamEvents(ws.Context(), events, func(event dashboard.DashboardEvent) error {
			return ws.WriteJSON(event)
		}); err != nil {
			return err
		}
		return ws.Close()
	})
}

// streamEvents writes events until the channel closes or ctx is done.
func streamEvents(ctx context.Context, events <-chan dashboard.DashboardEvent, write func(dashboard.DashboardEvent) error) error {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := write(event); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func defaultTarget(ctx Context, targets httpapi.TargetResolver) commands.Target {
	values := httpapi.RequestValues{
		SessionHeader:  ctx.Header(httpapi.SessionHeader),
		SessionQuery:   ctx.Query(httpapi.SessionQuery),
		LocaleQuery:    ctx.Query(httpapi.LocaleQuery),
		AcceptLanguage: ctx.Header("Accept-Language"),
		User:           ctx.Header(httpapi.UserHeader),
		Tenant:         ctx.Header(httpapi.TenantHeader),
	}
	if v, ok := ctx.Locals("user_id").(string); ok && v != "" {
		values.User = v
	}
	if v, ok := ctx.Locals("tenant_id").(string); ok && v != "" {
		values.Tenant = v
	}
	if v, ok := ctx.Locals("locale").(string); ok && v != "" {
		values.LocaleQuery = v
	}
	return targets.Resolve(values)
}

func respondError(ctx Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := []struct {
		field *string
		value string
	}{
		{&routes.HTML, "/"},
		{&routes.Page, "/_page"},
		{&routes.Tab, "/tabs/:view"},
		{&routes.Search, "/products/search"},
		{&routes.Filter, "/products/filter"},
		{&routes.Products, "/products"},
		{&routes.Product, "/products/:id"},
		{&routes.Catalog, "/catalog"},
		{&routes.Resolve, "/cases/:id/resolve"},
		{&routes.Notes, "/cases/:id/notes"},
		{&routes.Alerts, "/alerts"},
		{&routes.Alert, "/alerts/:id"},
		{&routes.Intake, "/intake/validate"},
		{&routes.WebSocket, "/ws"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	return routes
}
