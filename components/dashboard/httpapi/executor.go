package httpapi

import (
	"context"
	"errors"
	"io"

	"github.com/apex/log"
	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/dashboard/commands"
	"github.com/saludarte/go-master-dashboard/components/dashboard/queries"
	"github.com/saludarte/go-master-dashboard/components/intake"
)

// Executor is the transport-neutral surface shared by the net/http and
// go-router transports.
type Executor interface {
	Page(ctx context.Context, input queries.SnapshotInput) (dashboard.PageSnapshot, error)
	RenderPage(ctx context.Context, input queries.SnapshotInput, out io.Writer) error
	RenderView(ctx context.Context, input queries.ViewInput, out io.Writer) error
	Products(ctx context.Context, input queries.ProductsInput) (dashboard.ProductTable, error)
	AddProduct(ctx context.Context, input commands.AddProductInput) (dashboard.ActionResult, error)
	UploadCatalog(ctx context.Context, input commands.UploadCatalogInput) (dashboard.ActionResult, error)
	DeleteProduct(ctx context.Context, input commands.DeleteProductInput) (dashboard.ActionResult, error)
	ResolveCase(ctx context.Context, input commands.ResolveCaseInput) (dashboard.ActionResult, error)
	AddNotes(ctx context.Context, input commands.AddNotesInput) (dashboard.ActionResult, error)
	Alerts(ctx context.Context, input queries.SnapshotInput) ([]dashboard.Alert, error)
	DismissAlert(ctx context.Context, input queries.SnapshotInput, id string) (bool, error)
	ValidateIntake(ctx context.Context, locale string, form intake.Form) (intake.Result, error)
}

// Runner executes a command and reports the action outcome.
type Runner[T any] interface {
	Run(ctx context.Context, msg T) (dashboard.ActionResult, error)
}

// ErrNoSessions is returned when the executor has no session pool.
var ErrNoSessions = errors.New("httpapi: session pool is required")

// CommandExecutor implements Executor with the shared commands and queries.
type CommandExecutor struct {
	Sessions *dashboard.Sessions
	Intake   *intake.Validator
	Logger   log.Interface

	SnapshotQuerier gocommand.Querier[queries.SnapshotInput, dashboard.PageSnapshot]
	ViewQuerier     gocommand.Querier[queries.ViewInput, dashboard.PageSnapshot]
	ProductsQuerier gocommand.Querier[queries.ProductsInput, dashboard.ProductTable]

	AddProductRunner    Runner[commands.AddProductInput]
	UploadCatalogRunner Runner[commands.UploadCatalogInput]
	DeleteProductRunner Runner[commands.DeleteProductInput]
	ResolveCaseRunner   Runner[commands.ResolveCaseInput]
	AddNotesRunner      Runner[commands.AddNotesInput]
}

var _ Executor = (*CommandExecutor)(nil)

// ExecutorOptions configures NewCommandExecutor.
type ExecutorOptions struct {
	Sessions  *dashboard.Sessions
	Intake    *intake.Validator
	Telemetry commands.Telemetry
	Logger    log.Interface
}

// NewCommandExecutor wires every command and query to the session pool.
func NewCommandExecutor(opts ExecutorOptions) *CommandExecutor {
	actions := commands.SessionResolver(opts.Sessions)
	views := queries.SessionResolver(opts.Sessions)
	validator := opts.Intake
	if validator == nil {
		validator = intake.NewValidator(intake.Options{})
	}
	return &CommandExecutor{
		Sessions: opts.Sessions,
		Intake:   validator,
		Logger:   opts.Logger,

		SnapshotQuerier: queries.NewSnapshotQuery(views),
		ViewQuerier:     queries.NewViewQuery(views),
		ProductsQuerier: queries.NewProductsQuery(views),

		AddProductRunner:    commands.NewAddProductCommand(actions, opts.Telemetry),
		UploadCatalogRunner: commands.NewUploadCatalogCommand(actions, opts.Telemetry),
		DeleteProductRunner: commands.NewDeleteProductCommand(actions, opts.Telemetry),
		ResolveCaseRunner:   commands.NewResolveCaseCommand(actions, opts.Telemetry),
		AddNotesRunner:      commands.NewAddNotesCommand(actions, opts.Telemetry),
	}
}

func (e *CommandExecutor) logger() log.Interface {
	if e.Logger == nil {
		return log.Log
	}
	return e.Logger
}

func (e *CommandExecutor) controller(ctx context.Context, input queries.SnapshotInput) (*dashboard.Controller, error) {
	if e.Sessions == nil {
		return nil, ErrNoSessions
	}
	return e.Sessions.Get(ctx, input.Session, input.Locale)
}

// Page returns the session snapshot.
func (e *CommandExecutor) Page(ctx context.Context, input queries.SnapshotInput) (dashboard.PageSnapshot, error) {
	return e.SnapshotQuerier.Query(ctx, input)
}

// RenderPage writes the full page HTML.
func (e *CommandExecutor) RenderPage(ctx context.Context, input queries.SnapshotInput, out io.Writer) error {
	c, err := e.controller(ctx, input)
	if err != nil {
		return err
	}
	return c.RenderPage(ctx, out)
}

// RenderView activates a tab and writes its fragment. A failed load is already
// on the page as a banner, so only unknown tabs are returned as errors.
func (e *CommandExecutor) RenderView(ctx context.Context, input queries.ViewInput, out io.Writer) error {
	snap, err := e.ViewQuerier.Query(ctx, input)
	if err != nil {
		if errors.Is(err, dashboard.ErrUnknownView) || snap.Session == "" {
			return err
		}
		e.logger().WithField("view", input.Target).WithError(err).Warn("tab load failed")
	}
	c, err := e.controller(ctx, queries.SnapshotInput{Session: input.Session, Locale: input.Locale})
	if err != nil {
		return err
	}
	return c.RenderView(ctx, snap.Active, out)
}

// Products runs a search or category filter.
func (e *CommandExecutor) Products(ctx context.Context, input queries.ProductsInput) (dashboard.ProductTable, error) {
	return e.ProductsQuerier.Query(ctx, input)
}

// AddProduct runs the add-product command.
func (e *CommandExecutor) AddProduct(ctx context.Context, input commands.AddProductInput) (dashboard.ActionResult, error) {
	return e.AddProductRunner.Run(ctx, input)
}

// UploadCatalog runs the catalog upload command.
func (e *CommandExecutor) UploadCatalog(ctx context.Context, input commands.UploadCatalogInput) (dashboard.ActionResult, error) {
	return e.UploadCatalogRunner.Run(ctx, input)
}

// DeleteProduct runs the delete command.
func (e *CommandExecutor) DeleteProduct(ctx context.Context, input commands.DeleteProductInput) (dashboard.ActionResult, error) {
	return e.DeleteProductRunner.Run(ctx, input)
}

// ResolveCase runs the resolve command.
func (e *CommandExecutor) ResolveCase(ctx context.Context, input commands.ResolveCaseInput) (dashboard.ActionResult, error) {
	return e.ResolveCaseRunner.Run(ctx, input)
}

// AddNotes runs the notes command.
func (e *CommandExecutor) AddNotes(ctx context.Context, input commands.AddNotesInput) (dashboard.ActionResult, error) {
	return e.AddNotesRunner.Run(ctx, input)
}

// Alerts lists the visible banners of a session.
func (e *CommandExecutor) Alerts(ctx context.Context, input queries.SnapshotInput) ([]dashboard.Alert, error) {
	c, err := e.controller(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.Alerts().Active(), nil
}

// DismissAlert closes a banner early.
func (e *CommandExecutor) DismissAlert(ctx context.Context, input queries.SnapshotInput, id string) (bool, error) {
	c, err := e.controller(ctx, input)
	if err != nil {
		return false, err
	}
	return c.DismissAlert(id), nil
}

// ValidateIntake checks a patient intake form.
func (e *CommandExecutor) ValidateIntake(ctx context.Context, locale string, form intake.Form) (intake.Result, error) {
	return e.Intake.Validate(ctx, locale, form)
}
