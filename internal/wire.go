package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/notelink/internal/bibliography"
	"github.com/starford/notelink/internal/editor"
	"github.com/starford/notelink/internal/followsvc"
	"github.com/starford/notelink/internal/history"
	"github.com/starford/notelink/internal/navigator"
	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// NewLogger returns the structured JSON logger used by every mode. It
// writes to stderr because stdout carries command results and the MCP
// protocol.
func NewLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Components are the collaborators shared by the CLI, REST and MCP
// front-ends.
type Components struct {
	Service      *followsvc.Service
	Store        storage.Provider
	Bibliography *bibliography.Bibliography // nil when no bibliography is configured
	Logger       *slog.Logger

	history *history.DB
}

// Close releases the history database.
func (c *Components) Close() error {
	return c.history.Close()
}

// Open wires the application for one-shot CLI commands.
func Open(opts ...Option) (*Components, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	return build(app, nil)
}

func build(app *application, events followsvc.EventSink) (*Components, error) {
	cfg := app.config
	logger := app.logger

	profile, err := osprofile.Named(cfg.OS.Profile)
	if err != nil {
		return nil, err
	}
	var runner oscmd.Runner = oscmd.Unavailable
	editorRunner := runner
	if profile.Supported() {
		sh, err := oscmd.NewShell(profile.Shell, logger)
		if err != nil {
			return nil, err
		}
		runner, editorRunner = sh, sh
		if app.terminal {
			editorRunner = sh.Attached(os.Stdin, os.Stdout, os.Stderr)
		}
	}

	store, err := storage.NewFS(cfg.Notebook.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	var navOpts []navigator.Option
	navOpts = append(navOpts, navigator.WithLogger(logger))
	if cfg.Notebook.Initial != "" {
		navOpts = append(navOpts, navigator.WithInitialDir(cfg.Notebook.Initial))
	}
	ed := editor.New(profile, editorRunner, cfg.Editor.Command, cfg.Editor.LineCommand)
	nav := navigator.New(db, db, ed, profile, navOpts...)

	c := &Components{Store: store, Logger: logger, history: db}
	deps := followsvc.Deps{
		Profile:   profile,
		Runner:    runner,
		History:   db,
		Navigator: nav,
		Store:     store,
		Notifier:  app.notifier,
		Events:    events,
		Logger:    logger,
	}
	if cfg.Bibliography.Path != "" {
		bib, err := bibliography.Open(cfg.Bibliography.Path, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init bibliography: %w", err)
		}
		c.Bibliography = bib
		deps.Citations = bib
	}

	c.Service = followsvc.New(followsvc.Settings{
		Policy:           cfg.Links.Policy(),
		MaxCitationDepth: cfg.Links.MaxCitationDepth,
	}, deps)

	logger.Debug("components ready",
		slog.String("os_profile", profile.Name),
		slog.String("notebook_root", store.Root()),
		slog.String("relative_to", cfg.Links.RelativeTo),
		slog.Bool("editor", ed.Enabled()),
		slog.Bool("terminal", app.terminal))
	return c, nil
}
