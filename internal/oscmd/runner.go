// Package oscmd isolates every shell invocation behind a narrow interface so
// callers can be exercised with a recording fake.
package oscmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/starford/notelink/internal/apperr"
)

// Runner executes shell command strings.
type Runner interface {
	// Output runs command and returns the first line of its stdout.
	Output(ctx context.Context, command string) (string, error)
	// Run runs command for its side effect.
	Run(ctx context.Context, command string) error
}

// Shell runs commands through an argv prefix such as {"sh", "-c"}.
type Shell struct {
	argv   []string
	logger *slog.Logger
}

// NewShell creates a shell runner. argv must not be empty.
func NewShell(argv []string, logger *slog.Logger) (*Shell, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("oscmd: empty shell argv")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{argv: argv, logger: logger}, nil
}

func (s *Shell) command(ctx context.Context, command string) *exec.Cmd {
	args := append(append([]string{}, s.argv[1:]...), command)
	cmd := exec.CommandContext(ctx, s.argv[0], args...)
	cmd.Env = os.Environ()
	return cmd
}

// Output runs command and returns the first line of stdout, trimmed.
func (s *Shell) Output(ctx context.Context, command string) (string, error) {
	s.logger.Debug("oscmd: output", slog.String("command", command))

	cmd := s.command(ctx, command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("oscmd: run %q: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}
	line, _, _ := strings.Cut(stdout.String(), "\n")
	return strings.TrimSpace(line), nil
}

// Run executes command without capturing its output.
func (s *Shell) Run(ctx context.Context, command string) error {
	s.logger.Debug("oscmd: run", slog.String("command", command))

	cmd := s.command(ctx, command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("oscmd: run %q: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Attached returns a Runner whose Run connects the command to the given
// streams, for interactive programs such as terminal editors. Output is
// unchanged.
func (s *Shell) Attached(stdin io.Reader, stdout, stderr io.Writer) Runner {
	return &attached{Shell: s, stdin: stdin, stdout: stdout, stderr: stderr}
}

type attached struct {
	*Shell
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (a *attached) Run(ctx context.Context, command string) error {
	a.logger.Debug("oscmd: run attached", slog.String("command", command))

	cmd := a.command(ctx, command)
	cmd.Stdin = a.stdin
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("oscmd: run %q: %w", command, err)
	}
	return nil
}

// Unavailable is the Runner for operating systems without a supported shell.
// Every call fails with apperr.ErrUnsupportedOS.
var Unavailable Runner = unavailable{}

type unavailable struct{}

func (unavailable) Output(context.Context, string) (string, error) {
	return "", fmt.Errorf("oscmd: %w", apperr.ErrUnsupportedOS)
}

func (unavailable) Run(context.Context, string) error {
	return fmt.Errorf("oscmd: %w", apperr.ErrUnsupportedOS)
}
