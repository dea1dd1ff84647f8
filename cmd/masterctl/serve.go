package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/saludarte/go-master-dashboard/components/dashboard/gorouter"
	"github.com/saludarte/go-master-dashboard/components/dashboard/httpapi"
	dashboardpkg "github.com/saludarte/go-master-dashboard/pkg/dashboard"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Transport   string `enum:"fiber,nethttp" default:"fiber" help:"HTTP stack: fiber (go-router) or nethttp (chi)."`
	Listen      string `help:"Listen address (MASTER_LISTEN_ADDR)."`
	SSLRedirect bool   `name:"ssl-redirect" help:"Redirect plain HTTP to HTTPS (nethttp only)."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
	rt, err := g.runtime(dashboardpkg.Options{Mock: g.Mock})
	if err != nil {
		return err
	}
	addr := rt.Config.ListenAddr
	if cmd.Listen != "" {
		addr = cmd.Listen
	}
	logger := rt.Logger.WithFields(log.Fields{
		"addr":      addr,
		"base_path": rt.Config.BasePath,
		"transport": cmd.Transport,
		"mock":      g.Mock,
	})
	logger.Info("serving master dashboard")

	if cmd.Transport == "nethttp" {
		return serveNetHTTP(ctx, rt, addr, cmd.SSLRedirect)
	}
	return serveFiber(rt, addr)
}

func serveFiber(rt *dashboardpkg.Runtime, addr string) error {
	server := router.NewFiberAdapter()
	appRouter := server.Router()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:    appRouter,
		API:       rt.Executor,
		Broadcast: rt.Broadcast,
		Targets:   rt.Targets(),
		BasePath:  rt.Config.BasePath,
		Logger:    rt.Logger,
	}); err != nil {
		return fmt.Errorf("masterctl: register routes: %w", err)
	}
	return server.Serve(addr)
}

func serveNetHTTP(ctx context.Context, rt *dashboardpkg.Runtime, addr string, sslRedirect bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := httpapi.NewRouter(&httpapi.Handlers{
		API:       rt.Executor,
		Broadcast: rt.Broadcast,
		Targets:   rt.Targets(),
		Logger:    rt.Logger,
	}, httpapi.RouterOptions{
		BasePath:    rt.Config.BasePath,
		RateLimit:   rt.Config.RateLimitPerMin,
		SSLRedirect: sslRedirect,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		rt.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
