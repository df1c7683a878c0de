// Package exists asks the operating system shell whether a path exists.
package exists

import (
	"context"
	"errors"
	"log/slog"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/notice"
	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
)

// Kind selects what sort of filesystem entry is tested for.
type Kind string

const (
	File Kind = "file"
	Dir  Kind = "dir"
)

// Checker runs one shell test per call; results are never cached.
type Checker struct {
	profile  osprofile.Profile
	runner   oscmd.Runner
	notifier notice.Notifier
	logger   *slog.Logger
}

// NewChecker creates a Checker.
func NewChecker(profile osprofile.Profile, runner oscmd.Runner, notifier notice.Notifier, logger *slog.Logger) *Checker {
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{profile: profile, runner: runner, notifier: notifier, logger: logger}
}

// Exists reports whether path exists as kind. An unsupported profile or a
// failed shell call counts as "does not exist".
func (c *Checker) Exists(ctx context.Context, path string, kind Kind) bool {
	cmd, err := c.profile.ExistsCommand(c.profile.ShellEscape(path), kind == Dir)
	if err != nil {
		if errors.Is(err, apperr.ErrUnsupportedOS) {
			c.logger.Warn("exists: unsupported os", slog.String("profile", c.profile.Name))
			c.notifier.Notify(UnsupportedNotice("existence check"))
		}
		return false
	}
	out, err := c.runner.Output(ctx, cmd)
	if err != nil {
		c.logger.Warn("exists: shell test failed", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	return out == "true"
}

// UnsupportedNotice is the message shown when a capability is missing for the
// running operating system.
func UnsupportedNotice(capability string) string {
	return capability + " is not available on this operating system"
}
