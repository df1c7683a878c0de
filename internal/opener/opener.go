// Package opener hands resolved targets and URLs to the operating system's
// default application.
package opener

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/links"
	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
)

// Existence is the part of exists.Checker the opener needs.
type Existence interface {
	Exists(ctx context.Context, path string, kind exists.Kind) bool
}

// Opener launches targets through the profile's launcher command.
type Opener struct {
	profile osprofile.Profile
	checker Existence
	runner  oscmd.Runner
	logger  *slog.Logger
}

// New creates an Opener.
func New(profile osprofile.Profile, checker Existence, runner oscmd.Runner, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{profile: profile, checker: checker, runner: runner, logger: logger}
}

// Open launches target. URLs go straight to the launcher; paths must exist
// as a file or a directory first. target is the display form; it is
// shell-escaped here for execution.
//
// Returned errors wrap apperr.ErrUnsupportedOS or apperr.ErrTargetNotFound
// when nothing was launched.
func (o *Opener) Open(ctx context.Context, target string) error {
	if !o.profile.Supported() {
		return fmt.Errorf("opener: %w", apperr.ErrUnsupportedOS)
	}

	if !links.LooksLikeURL(target) {
		if !o.checker.Exists(ctx, target, exists.File) && !o.checker.Exists(ctx, target, exists.Dir) {
			return fmt.Errorf("opener: %s: %w", target, apperr.ErrTargetNotFound)
		}
	}

	cmd, err := o.profile.OpenCommand(o.profile.ShellEscape(target))
	if err != nil {
		return fmt.Errorf("opener: %w", err)
	}
	o.logger.Info("opener: launching", slog.String("target", target))
	if err := o.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("opener: launch %s: %w", target, err)
	}
	return nil
}
