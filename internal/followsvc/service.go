// Package followsvc coordinates reference dispatch, navigation history and
// link listing for the CLI, REST and MCP front-ends.
package followsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/dispatch"
	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/heading"
	"github.com/starford/notelink/internal/history"
	"github.com/starford/notelink/internal/links"
	"github.com/starford/notelink/internal/models"
	"github.com/starford/notelink/internal/navigator"
	"github.com/starford/notelink/internal/notice"
	"github.com/starford/notelink/internal/opener"
	"github.com/starford/notelink/internal/oscmd"
	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/parser"
	"github.com/starford/notelink/internal/resolve"
	"github.com/starford/notelink/internal/storage"
)

// Navigation event kinds passed to EventSink.PublishNavigation.
const (
	EventNavigated = "navigated"
	EventBack      = "back"
)

// Result is the outcome of one follow together with every notice raised
// while producing it.
type Result struct {
	dispatch.Outcome
	Notices []string `json:"notices,omitempty"`
}

// EventSink receives follow results and active-document changes.
type EventSink interface {
	PublishFollow(data interface{})
	PublishNavigation(kind, path string)
}

// Settings carry the resolution options taken from configuration.
type Settings struct {
	Policy           resolve.Policy
	MaxCitationDepth int
	// Home replaces a leading "~" in absolute file references.
	Home string
}

// Deps are the collaborators of a Service. Citations and Events may be nil.
type Deps struct {
	Profile   osprofile.Profile
	Runner    oscmd.Runner
	History   *history.DB
	Navigator *navigator.Navigator
	Store     storage.Provider
	Citations dispatch.CitationLookup
	Notifier  notice.Notifier
	Events    EventSink
	Logger    *slog.Logger
}

// Service serialises dispatches: front-ends may call it concurrently, but
// only one reference is followed at a time because every follow reads and
// moves the shared active document.
type Service struct {
	mu       sync.Mutex
	settings Settings
	deps     Deps
	headings *heading.Searcher
}

// New creates a Service.
func New(settings Settings, deps Deps) *Service {
	if deps.Notifier == nil {
		deps.Notifier = notice.Discard
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if settings.Home == "" {
		settings.Home, _ = os.UserHomeDir()
	}
	return &Service{
		settings: settings,
		deps:     deps,
		headings: heading.New(deps.Navigator, nil, deps.Logger),
	}
}

// Classify returns the kind of ref.
func (s *Service) Classify(ref string) links.Kind {
	return links.Classify(ref)
}

// Follow dispatches ref. A non-empty from is made the active document first,
// as if the reference had been followed from inside it. The returned error
// only reports infrastructure failures; unresolvable references end in a
// notice.
func (s *Service) Follow(ctx context.Context, ref, from string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from != "" {
		if err := s.deps.Navigator.SetActive(from); err != nil {
			return Result{}, fmt.Errorf("followsvc: follow: %w", err)
		}
	}

	rec := &notice.Recorder{}
	tee := notice.Func(func(msg string) {
		rec.Notify(msg)
		s.deps.Notifier.Notify(msg)
	})

	d := s.dispatcher(tee)
	res := Result{Outcome: d.Follow(ctx, ref), Notices: rec.Messages()}

	s.deps.Logger.Info("followsvc: followed",
		slog.String("ref", ref),
		slog.String("kind", string(res.Kind)),
		slog.String("action", string(res.Action)),
		slog.String("target", res.Target))

	if s.deps.Events != nil {
		s.deps.Events.PublishFollow(res)
		if res.Action == dispatch.ActionNavigate {
			s.deps.Events.PublishNavigation(EventNavigated, res.Target)
		}
	}
	return res, nil
}

// Back reopens the previous document. An empty history yields
// apperr.ErrEmptyHistory.
func (s *Service) Back(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.deps.Navigator.Back(ctx)
	if err != nil {
		return path, err
	}
	if s.deps.Events != nil {
		s.deps.Events.PublishNavigation(EventBack, path)
	}
	return path, nil
}

// Active returns the active document.
func (s *Service) Active() string {
	return s.deps.Navigator.Active()
}

// History returns up to limit history entries, most recent first.
func (s *Service) History(limit int) ([]models.HistoryEntry, error) {
	return s.deps.History.List(limit)
}

// ClearHistory empties the history stack.
func (s *Service) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.History.Clear()
}

// Links lists every link of note with the target it would resolve to if
// followed from that note. Nothing is created or opened.
func (s *Service) Links(ctx context.Context, note string) ([]models.LinkReport, error) {
	data, err := s.deps.Store.Read(note)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("followsvc: parse %s: %w", note, err)
	}

	abs := note
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.deps.Store.Root(), filepath.FromSlash(note))
	}
	noteDir := s.deps.Profile.Dir(abs)
	initial := s.deps.Navigator.InitialDir()
	if initial == "" {
		initial = noteDir
	}

	policy := s.settings.Policy
	policy.CreateDirs = false
	checker := exists.NewChecker(s.deps.Profile, s.deps.Runner, notice.Discard, s.deps.Logger)
	r := s.resolver(checker, policy, initial, func() string { return noteDir })

	reports := make([]models.LinkReport, 0, len(res.Links))
	for _, l := range res.Links {
		kind := links.Classify(l.Target)
		rep := models.LinkReport{Note: note, Line: l.Line, Text: l.Text, Ref: l.Target, Kind: string(kind)}
		switch kind {
		case links.Filename:
			path, _ := links.SplitHeading(l.Target)
			rep.Target = r.Filename(ctx, path).Path
		case links.File:
			rep.Target = r.External(ctx, l.Target).Path
		case links.URL:
			rep.Target = l.Target
		case links.Citation:
			if s.deps.Citations != nil {
				rep.Target, _ = s.deps.Citations.ResolveCitation(ctx, dispatch.CitationKey(l.Target))
			}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

func (s *Service) resolver(checker *exists.Checker, policy resolve.Policy, initial string, current func() string) *resolve.Resolver {
	anchors := resolve.Anchors{Root: s.deps.Store.Root(), Initial: initial, Current: current}
	return resolve.New(s.deps.Profile, checker, s.deps.Runner, policy, anchors,
		resolve.WithHome(s.settings.Home), resolve.WithLogger(s.deps.Logger))
}

// dispatcher builds a Dispatcher for one follow. Anchors are captured per
// call because the initial directory is only known once a document is active.
func (s *Service) dispatcher(n notice.Notifier) *dispatch.Dispatcher {
	nav := s.deps.Navigator
	checker := exists.NewChecker(s.deps.Profile, s.deps.Runner, n, s.deps.Logger)
	return dispatch.New(dispatch.Deps{
		Resolver:         s.resolver(checker, s.settings.Policy, nav.InitialDir(), nav.CurrentDir),
		Opener:           opener.New(s.deps.Profile, checker, s.deps.Runner, s.deps.Logger),
		Navigator:        nav,
		Headings:         s.headings,
		Citations:        s.deps.Citations,
		Notifier:         n,
		Logger:           s.deps.Logger,
		MaxCitationDepth: s.settings.MaxCitationDepth,
	})
}
