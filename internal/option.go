package internal

import (
	"log/slog"

	"github.com/starford/notelink/internal/notice"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	logger   *slog.Logger
	notifier notice.Notifier
	terminal bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger sets the logger. By default a JSON logger on stderr is built
// from the configured level.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithNotifier sets where user-visible notices are shown in addition to
// being returned with each follow result.
func WithNotifier(n notice.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}

// WithTerminal launches the editor attached to the process's stdin, stdout
// and stderr. Serve and MCP modes leave it unset because stdout carries
// their protocol.
func WithTerminal() Option {
	return func(a *application) {
		a.terminal = true
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errConfigRequired
	}
	if app.logger == nil {
		app.logger = NewLogger(app.config.App.LogLevel)
	}
	return app, nil
}
