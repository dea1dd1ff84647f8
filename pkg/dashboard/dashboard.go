// Package dashboard wires the master dashboard from configuration: backend
// client, message catalog, charts, activity trail and the session pool.
package dashboard

import (
	"fmt"
	"time"

	"github.com/apex/log"

	core "github.com/saludarte/go-master-dashboard/components/dashboard"
	"github.com/saludarte/go-master-dashboard/components/dashboard/httpapi"
	"github.com/saludarte/go-master-dashboard/components/intake"
	"github.com/saludarte/go-master-dashboard/pkg/activity"
	"github.com/saludarte/go-master-dashboard/pkg/activity/usersink"
	"github.com/saludarte/go-master-dashboard/pkg/config"
	"github.com/saludarte/go-master-dashboard/pkg/masterapi"
)

// Controller exposes the underlying components/dashboard.Controller type.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// NewController proxies to the internal constructor.
func NewController(opts ControllerOptions) (*Controller, error) {
	return core.NewController(opts)
}

// Options adjusts NewRuntime.
type Options struct {
	// Client replaces the backend client built from the config.
	Client core.APIClient
	// Mock serves the demo fixtures instead of calling the backend.
	Mock     bool
	Renderer core.Renderer
	Prompter core.Prompter
	Sink     usersink.Sink
	Logger   log.Interface
	Now      func() time.Time
}

// Runtime holds the collaborators shared by every session.
type Runtime struct {
	Config    *config.Config
	Client    core.APIClient
	Catalog   *core.MessageCatalog
	Charts    core.ChartRenderer
	Activity  *activity.Emitter
	Broadcast *core.BroadcastHook
	Sessions  *core.Sessions
	Intake    *intake.Validator
	Executor  *httpapi.CommandExecutor
	Logger    log.Interface

	location *time.Location
	opts     Options
}

// NewRuntime builds the runtime described by cfg.
func NewRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("dashboard: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Log
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := opts.Client
	switch {
	case client != nil:
	case opts.Mock:
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		client = masterapi.NewMockClient(masterapi.DemoData(now().In(location)))
	default:
		client, err = masterapi.NewHTTPClient(masterapi.HTTPConfig{
			BaseURL:  cfg.APIBaseURL,
			Timeout:  cfg.HTTPTimeout,
			Location: location,
		})
		if err != nil {
			return nil, err
		}
	}

	catalog, err := core.DefaultMessageCatalog()
	if err != nil {
		return nil, err
	}
	if cfg.MessagesPath != "" {
		if err := catalog.LoadMessagesFile(cfg.MessagesPath); err != nil {
			return nil, err
		}
	}

	sink := opts.Sink
	if sink == nil {
		sink = usersink.LogSink{Logger: logger}
	}
	emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{Enabled: true})

	rt := &Runtime{
		Config:    cfg,
		Client:    client,
		Catalog:   catalog,
		Charts:    core.NewEChartsRenderer(core.WithChartAssetsHost(cfg.ChartAssetsHost)),
		Activity:  emitter,
		Broadcast: core.NewBroadcastHook(),
		Intake:    intake.NewValidator(intake.Options{Translator: catalog, Locale: cfg.Locale}),
		Logger:    logger,
		location:  location,
		opts:      opts,
	}
	rt.Sessions = core.NewSessions(rt.NewController, logger,
		core.WithSessionIdleTTL(cfg.SessionIdleTTL),
		core.WithMaxSessions(cfg.MaxSessions),
	)
	rt.Executor = httpapi.NewCommandExecutor(httpapi.ExecutorOptions{
		Sessions:  rt.Sessions,
		Intake:    rt.Intake,
		Telemetry: core.LogTelemetry{Logger: logger},
		Logger:    logger,
	})
	return rt, nil
}

// NewController builds the controller of one session. It is the session
// pool's factory and is also used directly by the CLI.
func (rt *Runtime) NewController(session, locale string) (*Controller, error) {
	if locale == "" {
		locale = rt.Config.Locale
	}
	return core.NewController(core.ControllerOptions{
		Client:     rt.Client,
		Renderer:   rt.opts.Renderer,
		Charts:     rt.Charts,
		Translator: rt.Catalog,
		Prompter:   rt.opts.Prompter,
		Activity:   rt.Activity,
		Events:     rt.Broadcast,
		Telemetry:  core.LogTelemetry{Logger: rt.Logger},
		Logger:     rt.Logger,

		Session:  session,
		Locale:   locale,
		Location: rt.location,

		AlertTTL:           rt.Config.AlertTTL,
		CatalogNoticeDelay: rt.Config.CatalogNoticeDelay,
		Now:                rt.opts.Now,

		Movements:     core.MovementQuery{Days: rt.Config.MovementsDays, Limit: rt.Config.MovementsLimit},
		AnalyticsDays: rt.Config.AnalyticsDays,
	})
}

// Locales lists the locales the message catalog can answer.
func (rt *Runtime) Locales() []string {
	return rt.Catalog.Locales()
}

// Targets resolves request sessions and locales for the HTTP transports.
func (rt *Runtime) Targets() httpapi.TargetResolver {
	return httpapi.TargetResolver{Locales: rt.Locales(), DefaultLocale: rt.Config.Locale}
}
