// Package editor launches the user's editor on a notebook document.
package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
)

// Placeholders substituted in command templates.
const (
	PathPlaceholder = "{path}"
	LinePlaceholder = "{line}"
)

// Editor expands command templates and runs them through oscmd.
// An empty Command disables launching; navigation is then only recorded.
type Editor struct {
	profile     osprofile.Profile
	runner      oscmd.Runner
	command     string
	lineCommand string
}

// New creates an Editor. lineCommand is used when a line number is known and
// falls back to command when empty.
func New(profile osprofile.Profile, runner oscmd.Runner, command, lineCommand string) *Editor {
	return &Editor{
		profile:     profile,
		runner:      runner,
		command:     strings.TrimSpace(command),
		lineCommand: strings.TrimSpace(lineCommand),
	}
}

// Enabled reports whether a command is configured.
func (e *Editor) Enabled() bool {
	return e.command != ""
}

// Open launches the editor on path; line > 0 positions the cursor when a
// line command is configured.
func (e *Editor) Open(ctx context.Context, path string, line int) error {
	if !e.Enabled() {
		return nil
	}
	cmd, err := e.Command(path, line)
	if err != nil {
		return err
	}
	if err := e.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// Command returns the expanded command line without running it.
func (e *Editor) Command(path string, line int) (string, error) {
	tmpl := e.command
	if line > 0 && e.lineCommand != "" {
		tmpl = e.lineCommand
	}
	if tmpl == "" || strings.HasPrefix(tmpl, "{") {
		return "", fmt.Errorf("editor: no program in command %q", tmpl)
	}
	escaped := e.profile.ShellEscape(path)
	if !strings.Contains(tmpl, PathPlaceholder) {
		tmpl += " " + PathPlaceholder
	}
	return strings.NewReplacer(
		PathPlaceholder, escaped,
		LinePlaceholder, strconv.Itoa(max(line, 1)),
	).Replace(tmpl), nil
}
