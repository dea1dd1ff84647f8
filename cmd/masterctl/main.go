package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/apex/log"

	"github.com/saludarte/go-master-dashboard/pkg/config"
	dashboardpkg "github.com/saludarte/go-master-dashboard/pkg/dashboard"
)

type cli struct {
	Globals

	Serve     serveCmd     `cmd:"" help:"Serve the master dashboard over HTTP."`
	Products  productsCmd  `cmd:"" help:"List, search, add and delete catalog products."`
	Catalog   catalogCmd   `cmd:"" help:"Upload a catalog spreadsheet."`
	Movements movementsCmd `cmd:"" help:"Show recent catalog movements."`
	Cases     casesCmd     `cmd:"" help:"Review unresolved cases."`
	Analytics analyticsCmd `cmd:"" help:"Show usage analytics and problem analysis."`
	Intake    intakeCmd    `cmd:"" help:"Check patient intake values."`
}

// Globals are flags shared by every command. Unset flags keep the values
// read from the environment.
type Globals struct {
	BaseURL   string `name:"base-url" help:"Backend base URL (MASTER_API_BASE_URL)."`
	Locale    string `help:"Message locale (MASTER_LOCALE)."`
	Timezone  string `help:"Time zone for server timestamps (MASTER_TIMEZONE)."`
	Mock      bool   `help:"Use the built-in demo data instead of the backend."`
	LogFormat string `name:"log-format" help:"Log format: text, json or cli (LOG_FORMAT)."`
	LogLevel  string `name:"log-level" help:"Log level (LOG_LEVEL)."`
	NoColor   bool   `name:"no-color" help:"Disable colored output."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("masterctl"),
		kong.Description("Operator console for the SaludArte master dashboard."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}

// config loads the environment configuration and applies flag overrides.
func (g *Globals) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.BaseURL != "" {
		cfg.APIBaseURL = g.BaseURL
	}
	if g.Locale != "" {
		cfg.Locale = g.Locale
	}
	if g.Timezone != "" {
		cfg.Timezone = g.Timezone
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) runtime(opts dashboardpkg.Options) (*dashboardpkg.Runtime, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	log.Log = logger
	opts.Mock = opts.Mock || g.Mock
	opts.Logger = logger
	rt, err := dashboardpkg.NewRuntime(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("masterctl: %w", err)
	}
	return rt, nil
}
