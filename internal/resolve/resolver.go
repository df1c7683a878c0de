// Package resolve turns relative note references into target paths joined
// against one of the notebook's anchor directories, creating missing
// directories on demand.
package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/links"
	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
)

// Anchor directory selectors for Policy.RelativeTo.
const (
	RelativeToRoot    = "root"
	RelativeToFirst   = "first"
	RelativeToCurrent = "current"
)

// Policy decides which anchor a relative reference is joined against and
// whether missing directories are created. Any RelativeTo value other than
// root or current behaves like first.
type Policy struct {
	RelativeTo        string
	CreateDirs        bool
	ImplicitExtension string
}

// Anchors are the base directories a relative reference may resolve against.
type Anchors struct {
	Root    string
	Initial string
	// Current returns the directory of the active document. It is called on
	// every resolution because the active document changes between calls.
	Current func() string
}

// Existence is the part of exists.Checker the resolver needs.
type Existence interface {
	Exists(ctx context.Context, path string, kind exists.Kind) bool
}

// Target is a resolved reference.
type Target struct {
	// Path is the resolved path, not shell-escaped.
	Path string
	// Absolute is set when the reference bypassed anchor joining.
	Absolute bool
	// CreatedDir is the directory a creation command was issued for.
	CreatedDir string
}

// Resolver resolves references for one immutable session context.
type Resolver struct {
	profile osprofile.Profile
	checker Existence
	runner  oscmd.Runner
	policy  Policy
	anchors Anchors
	home    string
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHome sets the directory substituted for a leading "~".
func WithHome(home string) Option {
	return func(r *Resolver) { r.home = home }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates a Resolver.
func New(profile osprofile.Profile, checker Existence, runner oscmd.Runner, policy Policy, anchors Anchors, opts ...Option) *Resolver {
	r := &Resolver{
		profile: profile,
		checker: checker,
		runner:  runner,
		policy:  policy,
		anchors: anchors,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AnchorDir returns the anchor directory selected by the policy. current
// falls back to first, and first falls back to root, when unknown.
func (r *Resolver) AnchorDir() string {
	switch r.policy.RelativeTo {
	case RelativeToRoot:
		return r.anchors.Root
	case RelativeToCurrent:
		if r.anchors.Current != nil {
			if dir := r.anchors.Current(); dir != "" {
				return dir
			}
		}
	}
	if r.anchors.Initial != "" {
		return r.anchors.Initial
	}
	return r.anchors.Root
}

// Filename resolves a bare note reference for navigation inside the notebook.
// When the reference names a directory that is missing and the policy allows
// it, the directory is created before returning. Creation is best effort.
func (r *Resolver) Filename(ctx context.Context, ref string) Target {
	ref = r.withImplicitExtension(ref)
	anchor := r.AnchorDir()

	dir, file, ok := r.profile.Split(ref)
	if !ok {
		return Target{Path: r.profile.Join(anchor, ref)}
	}

	targetDir := r.profile.Join(anchor, dir)
	t := Target{Path: r.profile.Join(targetDir, file)}
	if r.policy.CreateDirs && r.ensureDir(ctx, targetDir) {
		t.CreatedDir = targetDir
	}
	return t
}

// External resolves a "file:" reference meant for an external application.
// Absolute and home-relative paths are returned verbatim apart from "~"
// substitution. Directories are never created on this path.
func (r *Resolver) External(ctx context.Context, ref string) Target {
	path := links.StripFilePrefix(ref)
	if r.profile.IsAbs(path) {
		return Target{Path: r.profile.ExpandHome(path, r.home), Absolute: true}
	}

	anchor := r.AnchorDir()
	dir, file, ok := r.profile.Split(path)
	if !ok {
		return Target{Path: r.profile.Join(anchor, path)}
	}
	return Target{Path: r.profile.Join(anchor, dir, file)}
}

// ensureDir issues the creation command when dir is missing and reports
// whether it did. The command's result is not verified.
func (r *Resolver) ensureDir(ctx context.Context, dir string) bool {
	if r.checker.Exists(ctx, dir, exists.Dir) {
		return false
	}
	cmd, err := r.profile.MkdirCommand(r.profile.ShellEscape(dir))
	if err != nil {
		r.logger.Warn("resolve: mkdir unavailable", slog.String("dir", dir), slog.String("error", err.Error()))
		return false
	}
	if err := r.runner.Run(ctx, cmd); err != nil {
		r.logger.Debug("resolve: mkdir failed", slog.String("dir", dir), slog.String("error", err.Error()))
	}
	return true
}

func (r *Resolver) withImplicitExtension(ref string) string {
	ext := strings.TrimPrefix(r.policy.ImplicitExtension, ".")
	if ext == "" {
		return ref
	}
	_, file, _ := r.profile.Split(ref)
	if file == "" || strings.Contains(file, ".") {
		return ref
	}
	return ref + "." + ext
}
