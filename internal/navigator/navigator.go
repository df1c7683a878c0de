// Package navigator implements in-notebook navigation with a history stack
// of previously active documents.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/notelink/internal/history"
	"github.com/starford/notelink/internal/osprofile"
)

// Session persists the active and initial documents.
type Session interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Launcher shows a document to the user.
type Launcher interface {
	Open(ctx context.Context, path string, line int) error
}

// Navigator tracks the active document. It is safe for concurrent use.
type Navigator struct {
	mu       sync.Mutex
	stack    history.Stack
	session  Session
	launcher Launcher
	profile  osprofile.Profile
	initial  string
	logger   *slog.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithInitialDir pins the initial anchor directory instead of deriving it
// from the first active document.
func WithInitialDir(dir string) Option {
	return func(n *Navigator) { n.initial = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) { n.logger = logger }
}

// New creates a Navigator.
func New(stack history.Stack, session Session, launcher Launcher, profile osprofile.Profile, opts ...Option) *Navigator {
	n := &Navigator{
		stack:    stack,
		session:  session,
		launcher: launcher,
		profile:  profile,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetActive marks path as the active document without touching the history.
func (n *Navigator) SetActive(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.activate(path)
}

// Active returns the active document, or "" when none is known.
func (n *Navigator) Active() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.get(history.KeyActive)
}

// CurrentDir returns the directory of the active document.
func (n *Navigator) CurrentDir() string {
	active := n.Active()
	if active == "" {
		return ""
	}
	return n.profile.Dir(active)
}

// InitialDir returns the directory of the first document made active.
func (n *Navigator) InitialDir() string {
	if n.initial != "" {
		return n.initial
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.get(history.KeyInitial)
}

// NavigateTo records the active document on the history stack, makes path
// active and opens it.
func (n *Navigator) NavigateTo(ctx context.Context, path string) error {
	if err := n.Visit(path); err != nil {
		return err
	}
	return n.launcher.Open(ctx, path, 0)
}

// Visit records the active document on the history stack and makes path
// active without opening it. A later ShowLine opens it.
func (n *Navigator) Visit(path string) error {
	n.mu.Lock()
	prev := n.get(history.KeyActive)
	if prev != "" && prev != path {
		if err := n.stack.Push(prev); err != nil {
			n.mu.Unlock()
			return fmt.Errorf("navigator: %w", err)
		}
	}
	err := n.activate(path)
	n.mu.Unlock()
	if err != nil {
		return err
	}

	n.logger.Info("navigator: navigate", slog.String("from", prev), slog.String("to", path))
	return nil
}

// Back pops the history stack and reopens the previous document. An empty
// stack yields apperr.ErrEmptyHistory.
func (n *Navigator) Back(ctx context.Context) (string, error) {
	n.mu.Lock()
	path, err := n.stack.Pop()
	if err == nil {
		err = n.activate(path)
	}
	n.mu.Unlock()
	if err != nil {
		return "", err
	}

	n.logger.Info("navigator: back", slog.String("to", path))
	return path, n.launcher.Open(ctx, path, 0)
}

// ShowLine moves to line of the active document.
func (n *Navigator) ShowLine(ctx context.Context, line int) error {
	active := n.Active()
	if active == "" {
		return fmt.Errorf("navigator: no active document")
	}
	return n.launcher.Open(ctx, active, line)
}

func (n *Navigator) activate(path string) error {
	if err := n.session.Set(history.KeyActive, path); err != nil {
		return fmt.Errorf("navigator: %w", err)
	}
	if n.initial == "" && n.get(history.KeyInitial) == "" {
		if err := n.session.Set(history.KeyInitial, n.profile.Dir(path)); err != nil {
			return fmt.Errorf("navigator: %w", err)
		}
	}
	return nil
}

func (n *Navigator) get(key string) string {
	v, err := n.session.Get(key)
	if err != nil {
		n.logger.Warn("navigator: session read failed", slog.String("key", key), slog.String("error", err.Error()))
		return ""
	}
	return v
}
