// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notelink/internal/api"
	"github.com/starford/notelink/internal/bibliography"
	"github.com/starford/notelink/internal/followsvc"
	"github.com/starford/notelink/internal/mcpserver"
	"github.com/starford/notelink/internal/sse"
)

// Version is reported by the MCP server.
const Version = "1.0.0"

var _ followsvc.EventSink = (*sse.Broker)(nil)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notebook_root", cfg.Notebook.Root),
		slog.String("history_path", cfg.History.Path),
		slog.String("os_profile", cfg.OS.Profile),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := build(app, broker)
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if c.Bibliography != nil && cfg.Bibliography.Watch {
		g.Go(func() error {
			return watchBibliography(gCtx, c.Bibliography, logger, broker.PublishBibliographyReloaded)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the bibliography watcher stops with the
// HTTP server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	slog.SetDefault(app.logger)

	c, err := build(app, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.Bibliography != nil && app.config.Bibliography.Watch {
		go func() {
			if err := watchBibliography(ctx, c.Bibliography, app.logger, nil); err != nil {
				app.logger.Warn("bibliography watcher failed", slog.String("error", err.Error()))
			}
		}()
	}

	app.logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.Service, c.Store, Version).ServeStdio()
}

func watchBibliography(ctx context.Context, bib *bibliography.Bibliography, logger *slog.Logger, cb func(int)) error {
	err := bib.Watch(ctx, func(entries int) {
		logger.Info("bibliography reloaded", slog.Int("entries", entries))
		if cb != nil {
			cb(entries)
		}
	})
	if err != nil {
		return fmt.Errorf("bibliography watcher: %w", err)
	}
	return nil
}
