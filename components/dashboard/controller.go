package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
)

// DefaultCatalogNoticeDelay is the pause before the "catalog applied" banner.
const DefaultCatalogNoticeDelay = 2 * time.Second

// ControllerOptions wires collaborators into a Controller. Only Client is required.
type ControllerOptions struct {
	Client     APIClient
	Renderer   Renderer
	Charts     ChartRenderer
	Translator TranslationService
	Validator  FormValidator
	Prompter   Prompter
	Activity   ActivityHook
	Events     EventPublisher
	Telemetry  Telemetry
	Logger     log.Interface

	Session  string
	Locale   string
	Location *time.Location

	AlertTTL           time.Duration
	CatalogNoticeDelay time.Duration
	Scheduler          Scheduler
	Now                func() time.Time

	Movements     MovementQuery
	Cases         CaseQuery
	AnalyticsDays int
}

// ActionStatus is the outcome of an operator action.
type ActionStatus string

const (
	ActionSucceeded ActionStatus = "succeeded"
	ActionFailed    ActionStatus = "failed"
	ActionCancelled ActionStatus = "cancelled"
)

// ActionResult tells the caller what the page should do after an action.
type ActionResult struct {
	Status        ActionStatus `json:"status"`
	Message       string       `json:"message,omitempty"`
	ServerMessage string       `json:"server_message,omitempty"`
	CloseDialog   bool         `json:"close_dialog"`
	ResetForm     bool         `json:"reset_form"`
	Reloaded      View         `json:"reloaded,omitempty"`
}

// Controller is the master dashboard for one session. It owns the rendered
// page state, the alert banners and the per-view request sequence. It never
// caches fetched collections: every load and every successful mutation
// re-fetches and replaces the affected view.
type Controller struct {
	opts       ControllerOptions
	client     APIClient
	presenter  Presenter
	validator  FormValidator
	telemetry  Telemetry
	logger     *log.Entry
	alerts     *AlertCenter
	seq        *requestSequencer
	page       *page
	dispatcher *Dispatcher

	rendererOnce sync.Once
	renderer     Renderer
	rendererErr  error
}

// NewController builds a controller and registers the four tab loaders.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Client == nil {
		return nil, ErrMissingClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CatalogNoticeDelay <= 0 {
		opts.CatalogNoticeDelay = DefaultCatalogNoticeDelay
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Log
	}
	validator := opts.Validator
	if validator == nil {
		validator = NewFormValidator()
	}

	c := &Controller{
		opts:   opts,
		client: opts.Client,
		presenter: Presenter{
			Translator: opts.Translator,
			Locale:     opts.Locale,
			Formatter:  Formatter{Location: opts.Location},
		},
		validator: validator,
		telemetry: normalizeTelemetry(opts.Telemetry),
		logger:    logger.WithField("session", opts.Session),
		seq:       newRequestSequencer(),
		page:      newPage(),
		renderer:  opts.Renderer,
	}
	c.alerts = NewAlertCenter(
		WithAlertTTL(opts.AlertTTL),
		WithAlertScheduler(opts.Scheduler),
		WithAlertClock(opts.Now),
		WithAlertListener(c.forwardAlert),
	)

	c.dispatcher = NewDispatcher()
	loaders := map[View]Loader{
		ViewCatalog:    c.LoadProducts,
		ViewMovements:  c.LoadMovements,
		ViewUnresolved: c.LoadUnresolved,
		ViewAnalytics:  c.LoadAnalytics,
	}
	for _, view := range Views() {
		if err := c.dispatcher.Register(view, loaders[view]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Session returns the session the controller belongs to.
func (c *Controller) Session() string { return c.opts.Session }

// Locale returns the viewer locale.
func (c *Controller) Locale() string { return c.opts.Locale }

// Alerts exposes the alert center.
func (c *Controller) Alerts() *AlertCenter { return c.alerts }

// Init performs the initial page load: the catalog tab.
func (c *Controller) Init(ctx context.Context) error {
	c.page.setActive(ViewCatalog)
	return c.LoadProducts(ctx)
}

// Activate switches to a tab and runs its loader.
func (c *Controller) Activate(ctx context.Context, target string) (View, error) {
	view, loader, err := c.dispatcher.Resolve(target)
	if err != nil {
		return "", err
	}
	c.page.setActive(view)
	return view, loader(ctx)
}

// Snapshot returns a copy of the rendered page state.
func (c *Controller) Snapshot() PageSnapshot {
	snap := c.page.snapshot()
	snap.Session = c.opts.Session
	snap.Locale = c.opts.Locale
	snap.Alerts = c.alerts.Active()
	return snap
}

// DismissAlert removes a banner before it expires.
func (c *Controller) DismissAlert(id string) bool {
	return c.alerts.Dismiss(id)
}

// Close releases pending alert timers.
func (c *Controller) Close() {
	c.alerts.Close()
}

// LoadProducts fetches the full catalog and replaces the product table.
func (c *Controller) LoadProducts(ctx context.Context) error {
	return c.loadProducts(ctx, "list", true, c.client.ListProducts)
}

// SearchProducts replaces the product table with search results. A blank
// query shows the full catalog. Failures are logged, not alerted.
func (c *Controller) SearchProducts(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.loadProducts(ctx, "search", false, c.client.ListProducts)
	}
	return c.loadProducts(ctx, "search", false, func(ctx context.Context) ([]Product, error) {
		return c.client.SearchProducts(ctx, query)
	})
}

// FilterProducts replaces the product table with one category. Failures are
// logged, not alerted.
func (c *Controller) FilterProducts(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	return c.loadProducts(ctx, "filter", false, func(ctx context.Context) ([]Product, error) {
		return c.client.FilterProducts(ctx, category)
	})
}

func (c *Controller) loadProducts(ctx context.Context, mode string, alertOnError bool, fetch func(context.Context) ([]Product, error)) error {
	failure := ""
	if alertOnError {
		failure = c.message(ctx, "alert.load.products", "Error cargando productos")
	}
	return c.runLoad(ctx, ViewCatalog, mode, failure, func(ctx context.Context) (func(time.Time), error) {
		products, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		table := c.presenter.RenderProducts(ctx, products)
		return func(at time.Time) { c.page.replaceProducts(table, at) }, nil
	})
}

// LoadMovements fetches the movement log and replaces its table.
func (c *Controller) LoadMovements(ctx context.Context) error {
	failure := c.message(ctx, "alert.load.movements", "Error cargando movimientos")
	return c.runLoad(ctx, ViewMovements, "list", failure, func(ctx context.Context) (func(time.Time), error) {
		movements, err := c.client.ListMovements(ctx, c.opts.Movements)
		if err != nil {
			return nil, err
		}
		table := c.presenter.RenderMovements(ctx, movements)
		return func(at time.Time) { c.page.replaceMovements(table, at) }, nil
	})
}

// LoadUnresolved fetches unresolved cases and replaces their table.
func (c *Controller) LoadUnresolved(ctx context.Context) error {
	failure := c.message(ctx, "alert.load.unresolved", "Error cargando casos sin resolver")
	return c.runLoad(ctx, ViewUnresolved, "list", failure, func(ctx context.Context) (func(time.Time), error) {
		cases, err := c.client.ListUnresolved(ctx, c.opts.Cases)
		if err != nil {
			return nil, err
		}
		table := c.presenter.RenderUnresolvedCases(ctx, cases)
		return func(at time.Time) { c.page.replaceCases(table, at) }, nil
	})
}

// LoadAnalytics fetches usage analytics and problem analysis concurrently and
// replaces the analytics panel. Either failure fails the whole load.
func (c *Controller) LoadAnalytics(ctx context.Context) error {
	failure := c.message(ctx, "alert.load.analytics", "Error cargando análisis avanzado")
	return c.runLoad(ctx, ViewAnalytics, "list", failure, func(ctx context.Context) (func(time.Time), error) {
		var (
			snapshot AnalyticsSnapshot
			problems ProblemAnalysis
		)
		group, gctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			snapshot, err = c.client.FetchAnalytics(gctx, c.opts.AnalyticsDays)
			return err
		})
		group.Go(func() error {
			var err error
			problems, err = c.client.FetchProblemAnalysis(gctx)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
		panel := c.presenter.RenderAnalytics(ctx, snapshot, problems)
		if c.opts.Charts != nil {
			title := c.message(ctx, "analytics.chart.top_products", "Productos más recomendados")
			html, err := c.opts.Charts.RenderRanking(title, panel.TopProducts)
			if err != nil {
				c.logger.WithError(err).Warn("render top products chart")
			} else {
				panel.TopProducts.ChartHTML = html
			}
		}
		return func(at time.Time) { c.page.replaceAnalytics(panel, at) }, nil
	})
}

// runLoad dispatches a fetch for view. Responses older than the latest
// request for the same view are dropped without rendering or alerting.
func (c *Controller) runLoad(ctx context.Context, view View, mode, failure string, fetch func(context.Context) (func(time.Time), error)) error {
	seq := c.seq.Begin(view)
	started := c.opts.Now()
	fields := log.Fields{"view": view, "mode": mode, "seq": seq}

	apply, err := fetch(ctx)
	if err != nil {
		if !c.seq.IsLatest(view, seq) {
			c.logger.WithFields(fields).WithError(err).Debug("dropping stale failure")
			return nil
		}
		c.logger.WithFields(fields).WithError(err).Error("load failed")
		if failure != "" {
			c.alerts.Post(AlertError, failure)
		}
		c.telemetry.Record(ctx, "dashboard.view.error", map[string]any{"view": view, "mode": mode, "error": err.Error()})
		return err
	}

	at := c.opts.Now()
	if !c.seq.Commit(view, seq, func() { apply(at) }) {
		c.logger.WithFields(fields).Debug("dropping stale response")
		c.telemetry.Record(ctx, "dashboard.view.stale", map[string]any{"view": view, "mode": mode})
		return nil
	}
	c.publish(ctx, DashboardEvent{Type: EventViewReplaced, View: view})
	c.telemetry.Record(ctx, "dashboard.view.load", map[string]any{
		"view":        view,
		"mode":        mode,
		"duration_ms": at.Sub(started).Milliseconds(),
	})
	return nil
}

// AddProduct validates the dialog form, creates the product and reloads the
// catalog. On failure the dialog stays open and nothing is re-fetched.
func (c *Controller) AddProduct(ctx context.Context, form ProductForm) (ActionResult, error) {
	if err := c.validator.ValidateProduct(form); err != nil {
		msg := c.message(ctx, "alert.form.invalid", "Completa los campos requeridos")
		c.alerts.Post(AlertError, msg)
		return ActionResult{Status: ActionFailed, Message: msg}, err
	}
	res, err := c.client.AddProduct(ctx, form)
	if err != nil {
		return c.fail(ctx, VerbProductAdd, err, "alert.product.add_failed", "Error agregando producto")
	}
	msg := c.succeed(ctx, VerbProductAdd, "product", form.Name, "alert.product.added", "Producto agregado exitosamente",
		map[string]any{"name": form.Name, "presentation": form.Presentation})
	c.reload(ctx, c.LoadProducts)
	return ActionResult{
		Status:        ActionSucceeded,
		Message:       msg,
		ServerMessage: res.Message,
		CloseDialog:   true,
		ResetForm:     true,
		Reloaded:      ViewCatalog,
	}, nil
}

// EditProduct returns the current values of a product to prefill the dialog.
func (c *Controller) EditProduct(ctx context.Context, id string) (ProductForm, error) {
	product, err := c.findProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.alerts.Post(AlertError, c.message(ctx, "alert.product.not_found", "El producto ya no existe en el catálogo"))
		}
		return ProductForm{}, err
	}
	return ProductForm{
		Name:         product.Name,
		Symptoms:     product.Symptoms,
		Presentation: product.Presentation,
		Benefits:     product.Benefits,
	}, nil
}

// UploadCatalog sends a catalog spreadsheet. On success a second banner
// announces the new catalog after CatalogNoticeDelay.
func (c *Controller) UploadCatalog(ctx context.Context, upload CatalogUpload) (ActionResult, error) {
	if upload.Content == nil || strings.TrimSpace(upload.Filename) == "" {
		msg := c.message(ctx, "alert.catalog.no_file", "Selecciona un archivo de catálogo")
		c.alerts.Post(AlertError, msg)
		return ActionResult{Status: ActionFailed, Message: msg}, ErrNoFile
	}
	res, err := c.client.UploadCatalog(ctx, upload)
	if err != nil {
		return c.fail(ctx, VerbCatalogUpload, err, "alert.catalog.upload_failed", "Error subiendo catálogo")
	}
	msg := c.succeed(ctx, VerbCatalogUpload, "catalog", upload.Filename, "alert.catalog.uploaded", "Catálogo actualizado exitosamente",
		map[string]any{"filename": upload.Filename})
	c.reload(ctx, c.LoadProducts)
	c.alerts.PostLater(c.opts.CatalogNoticeDelay, AlertInfo,
		c.message(ctx, "alert.catalog.applied", "El sistema se ha actualizado con el nuevo catálogo"))
	return ActionResult{
		Status:        ActionSucceeded,
		Message:       msg,
		ServerMessage: res.Message,
		CloseDialog:   true,
		ResetForm:     true,
		Reloaded:      ViewCatalog,
	}, nil
}

// DeleteProduct asks for confirmation, resolves the product ID to its current
// position in the catalog, deletes it and reloads the catalog.
func (c *Controller) DeleteProduct(ctx context.Context, id string) (ActionResult, error) {
	question := c.message(ctx, "prompt.product.delete", "¿Está seguro de que desea eliminar este producto?")
	if !prompterFrom(ctx, c.opts.Prompter).Confirm(ctx, question) {
		return ActionResult{Status: ActionCancelled}, nil
	}
	product, err := c.findProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			msg := c.message(ctx, "alert.product.not_found", "El producto ya no existe en el catálogo")
			c.alerts.Post(AlertError, msg)
			return ActionResult{Status: ActionFailed, Message: msg}, err
		}
		return c.fail(ctx, VerbProductDelete, err, "alert.product.delete_failed", "Error eliminando producto")
	}
	res, err := c.client.DeleteProduct(ctx, product.Position)
	if err != nil {
		return c.fail(ctx, VerbProductDelete, err, "alert.product.delete_failed", "Error eliminando producto")
	}
	msg := c.succeed(ctx, VerbProductDelete, "product", id, "alert.product.deleted", "Producto eliminado exitosamente",
		map[string]any{"name": product.Name, "position": product.Position})
	c.reload(ctx, c.LoadProducts)
	return ActionResult{Status: ActionSucceeded, Message: msg, ServerMessage: res.Message, Reloaded: ViewCatalog}, nil
}

// ResolveCase marks a case resolved and reloads the case table.
func (c *Controller) ResolveCase(ctx context.Context, id string) (ActionResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ActionResult{Status: ActionFailed}, ErrMissingCaseID
	}
	res, err := c.client.ResolveCase(ctx, id)
	if err != nil {
		return c.fail(ctx, VerbCaseResolve, err, "alert.case.resolve_failed", "Error resolviendo caso")
	}
	msg := c.succeed(ctx, VerbCaseResolve, "case", id, "alert.case.resolved", "Caso marcado como resuelto", nil)
	c.reload(ctx, c.LoadUnresolved)
	return ActionResult{Status: ActionSucceeded, Message: msg, ServerMessage: res.Message, Reloaded: ViewUnresolved}, nil
}

// AddNotes prompts for notes and attaches them to a case. Blank or dismissed
// prompts cancel without a request.
func (c *Controller) AddNotes(ctx context.Context, id string) (ActionResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ActionResult{Status: ActionFailed}, ErrMissingCaseID
	}
	question := c.message(ctx, "prompt.case.notes", "Ingrese notas para este caso:")
	notes, ok := prompterFrom(ctx, c.opts.Prompter).Prompt(ctx, question)
	notes = strings.TrimSpace(notes)
	if !ok || notes == "" {
		return ActionResult{Status: ActionCancelled}, nil
	}
	res, err := c.client.AddCaseNotes(ctx, id, notes)
	if err != nil {
		return c.fail(ctx, VerbCaseNotes, err, "alert.case.notes_failed", "Error agregando notas")
	}
	msg := c.succeed(ctx, VerbCaseNotes, "case", id, "alert.case.notes_added", "Notas agregadas exitosamente",
		map[string]any{"length": len(notes)})
	c.reload(ctx, c.LoadUnresolved)
	return ActionResult{Status: ActionSucceeded, Message: msg, ServerMessage: res.Message, Reloaded: ViewUnresolved}, nil
}

func (c *Controller) findProduct(ctx context.Context, id string) (Product, error) {
	products, err := c.client.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, product := range products {
		if product.ID == id {
			return product, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

func (c *Controller) fail(ctx context.Context, verb string, err error, key, fallback string) (ActionResult, error) {
	msg := ServerMessage(err)
	if msg == "" {
		msg = c.message(ctx, key, fallback)
	}
	c.logger.WithField("action", verb).WithError(err).Error("action failed")
	c.alerts.Post(AlertError, msg)
	c.telemetry.Record(ctx, "dashboard.action.error", map[string]any{"action": verb, "error": err.Error()})
	return ActionResult{Status: ActionFailed, Message: msg}, err
}

func (c *Controller) succeed(ctx context.Context, verb, objectType, objectID, key, fallback string, meta map[string]any) string {
	msg := c.message(ctx, key, fallback)
	c.alerts.Post(AlertSuccess, msg)
	c.logger.WithFields(log.Fields{"action": verb, "object_id": objectID}).Info("action succeeded")
	c.telemetry.Record(ctx, "dashboard.action", map[string]any{"action": verb, "object_id": objectID})
	if c.opts.Activity != nil {
		event := ActivityEvent{
			Verb:       verb,
			ObjectType: objectType,
			ObjectID:   objectID,
			Actor:      activityContextFrom(ctx),
			Metadata:   meta,
			OccurredAt: c.opts.Now(),
		}
		if err := c.opts.Activity.Notify(ctx, event); err != nil {
			c.logger.WithError(err).Warn("activity hook failed")
		}
	}
	return msg
}

// reload re-fetches after a successful mutation. A failed reload already
// raised its own banner, so the mutation still counts as succeeded.
func (c *Controller) reload(ctx context.Context, loader Loader) {
	if err := loader(ctx); err != nil {
		c.logger.WithError(err).Warn("reload after action failed")
	}
}

func (c *Controller) message(ctx context.Context, key, fallback string) string {
	return translateOrFallback(ctx, c.opts.Translator, key, c.opts.Locale, fallback, nil)
}

func (c *Controller) forwardAlert(event AlertEvent) {
	alert := event.Alert
	c.publish(context.Background(), DashboardEvent{Type: event.Type, Alert: &alert})
}

func (c *Controller) publish(ctx context.Context, event DashboardEvent) {
	if c.opts.Events == nil {
		return
	}
	event.Session = c.opts.Session
	if event.OccurredAt.IsZero() {
		event.OccurredAt = c.opts.Now()
	}
	if err := c.opts.Events.Publish(ctx, event); err != nil {
		c.logger.WithError(err).Warn("publish dashboard event")
	}
}
