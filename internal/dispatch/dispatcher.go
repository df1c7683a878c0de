// Package dispatch classifies a reference, resolves it and routes it to the
// matching handler: in-notebook navigation, an external application, a
// heading jump or a citation lookup.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/escape"
	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/links"
	"github.com/starford/notelink/internal/notice"
	"github.com/starford/notelink/internal/resolve"
)

// DefaultMaxCitationDepth bounds citation re-dispatch.
const DefaultMaxCitationDepth = 2

// Navigator opens a document inside the notebook, remembering the current one.
type Navigator interface {
	NavigateTo(ctx context.Context, path string) error
	// Visit makes path the active document without showing it.
	Visit(path string) error
	// ShowLine shows the active document at line; 0 means the top.
	ShowLine(ctx context.Context, line int) error
}

// HeadingSearcher moves to a heading of the current document.
type HeadingSearcher interface {
	JumpToHeading(ctx context.Context, anchorRef string) error
}

// CitationLookup maps a pattern-escaped citation key to a substitute reference.
type CitationLookup interface {
	ResolveCitation(ctx context.Context, key string) (string, bool)
}

// Opener launches external targets.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// Resolver computes targets for Filename and File references.
type Resolver interface {
	Filename(ctx context.Context, ref string) resolve.Target
	External(ctx context.Context, ref string) resolve.Target
}

// Action is what the dispatcher ended up doing.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionOpen     Action = "open"
	ActionHeading  Action = "heading"
	ActionNone     Action = "none"
)

// Outcome describes one dispatch.
type Outcome struct {
	Ref        string     `json:"ref"`
	Kind       links.Kind `json:"kind"`
	Target     string     `json:"target,omitempty"`
	Heading    string     `json:"heading,omitempty"`
	Action     Action     `json:"action"`
	CreatedDir string     `json:"created_dir,omitempty"`
	Notice     string     `json:"notice,omitempty"`
	// Via lists the citation references that led to Ref.
	Via []string `json:"via,omitempty"`
}

// Deps are the collaborators of a Dispatcher. Headings and Citations may be
// nil.
type Deps struct {
	Resolver  Resolver
	Opener    Opener
	Navigator Navigator
	Headings  HeadingSearcher
	Citations CitationLookup
	Notifier  notice.Notifier
	Logger    *slog.Logger
	// MaxCitationDepth defaults to DefaultMaxCitationDepth when zero.
	MaxCitationDepth int
}

// Dispatcher routes references. It never returns errors: failures end in a
// notice or a silent stop.
type Dispatcher struct {
	Deps
}

// New creates a Dispatcher.
func New(deps Deps) *Dispatcher {
	if deps.Notifier == nil {
		deps.Notifier = notice.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxCitationDepth <= 0 {
		deps.MaxCitationDepth = DefaultMaxCitationDepth
	}
	return &Dispatcher{Deps: deps}
}

// Follow handles one reference.
func (d *Dispatcher) Follow(ctx context.Context, ref string) Outcome {
	return d.follow(ctx, ref, nil)
}

func (d *Dispatcher) follow(ctx context.Context, ref string, via []string) Outcome {
	out := Outcome{Ref: ref, Kind: links.Classify(ref), Action: ActionNone, Via: via}
	d.Logger.Debug("dispatch: follow", slog.String("ref", ref), slog.String("kind", string(out.Kind)))

	switch out.Kind {
	case links.Filename:
		d.navigate(ctx, ref, &out)
	case links.URL:
		out.Target = ref
		d.open(ctx, &out)
	case links.File:
		out.Target = d.Resolver.External(ctx, ref).Path
		d.open(ctx, &out)
	case links.Anchor:
		d.jump(ctx, ref, &out)
	case links.Citation:
		return d.cite(ctx, ref, out)
	}
	return out
}

func (d *Dispatcher) navigate(ctx context.Context, ref string, out *Outcome) {
	path, heading := links.SplitHeading(ref)
	target := d.Resolver.Filename(ctx, path)
	out.Target = target.Path
	out.CreatedDir = target.CreatedDir

	if heading == "" {
		if err := d.Navigator.NavigateTo(ctx, target.Path); err != nil {
			d.navigateFailed(out, err)
			return
		}
		out.Action = ActionNavigate
		return
	}

	// The document is shown once: at the heading when the jump succeeds,
	// otherwise at the top.
	if err := d.Navigator.Visit(target.Path); err != nil {
		d.navigateFailed(out, err)
		return
	}
	out.Action = ActionNavigate
	h := Outcome{Ref: out.Ref}
	d.jump(ctx, heading, &h)
	out.Heading = heading
	out.Notice = h.Notice
	if h.Action == ActionHeading {
		return
	}
	if err := d.Navigator.ShowLine(ctx, 0); err != nil {
		d.navigateFailed(out, err)
	}
}

func (d *Dispatcher) navigateFailed(out *Outcome, err error) {
	out.Action = ActionNone
	d.Logger.Error("dispatch: navigate failed", slog.String("target", out.Target), slog.String("error", err.Error()))
	d.notify(out, fmt.Sprintf("could not open %s: %v", out.Target, err))
}

func (d *Dispatcher) open(ctx context.Context, out *Outcome) {
	err := d.Opener.Open(ctx, out.Target)
	switch {
	case err == nil:
		out.Action = ActionOpen
	case errors.Is(err, apperr.ErrTargetNotFound):
		d.notify(out, NotFoundNotice(out.Target))
	case errors.Is(err, apperr.ErrUnsupportedOS):
		d.notify(out, exists.UnsupportedNotice("opening external targets"))
	default:
		d.Logger.Error("dispatch: open failed", slog.String("target", out.Target), slog.String("error", err.Error()))
		d.notify(out, fmt.Sprintf("could not open %s", out.Target))
	}
}

func (d *Dispatcher) jump(ctx context.Context, anchorRef string, out *Outcome) {
	out.Heading = anchorRef
	if d.Headings == nil {
		d.notify(out, "heading search is not available")
		return
	}
	err := d.Headings.JumpToHeading(ctx, anchorRef)
	switch {
	case err == nil:
		out.Action = ActionHeading
	case errors.Is(err, apperr.ErrTargetNotFound):
		d.notify(out, NotFoundNotice("heading "+anchorRef))
	default:
		d.Logger.Error("dispatch: heading jump failed", slog.String("anchor", anchorRef), slog.String("error", err.Error()))
		d.notify(out, fmt.Sprintf("could not jump to %s: %v", anchorRef, err))
	}
}

func (d *Dispatcher) cite(ctx context.Context, ref string, out Outcome) Outcome {
	if len(out.Via) >= d.MaxCitationDepth {
		d.Logger.Warn("dispatch: citation chain stopped",
			slog.String("ref", ref),
			slog.Int("depth", len(out.Via)),
			slog.String("error", apperr.ErrCitationDepth.Error()))
		return out
	}
	if d.Citations == nil {
		return out
	}

	key := CitationKey(ref)
	substitute, ok := d.Citations.ResolveCitation(ctx, key)
	if !ok || substitute == "" {
		d.Logger.Debug("dispatch: citation stopped",
			slog.String("key", key),
			slog.String("error", apperr.ErrCitationUnresolved.Error()))
		return out
	}

	via := append(append([]string(nil), out.Via...), ref)
	return d.follow(ctx, substitute, via)
}

func (d *Dispatcher) notify(out *Outcome, msg string) {
	out.Notice = msg
	d.Logger.Info("dispatch: notice", slog.String("ref", out.Ref), slog.String("notice", msg))
	d.Notifier.Notify(msg)
}

// CitationKey strips the "@" of a citation reference and escapes the key for
// use in a lookup pattern.
func CitationKey(ref string) string {
	return escape.Pattern(strings.TrimPrefix(ref, "@"))
}

// NotFoundNotice is the message shown for a missing target.
func NotFoundNotice(target string) string {
	return target + " does not exist"
}
