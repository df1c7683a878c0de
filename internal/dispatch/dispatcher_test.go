package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/links"
	"github.com/starford/notelink/internal/notice"
	"github.com/starford/notelink/internal/opener"
	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/resolve"
	"github.com/starford/notelink/internal/testutil"
)

type fakeNavigator struct {
	paths []string
	// shows records one entry per launch: the line, 0 for the top.
	shows []int
	err   error
}

func (f *fakeNavigator) NavigateTo(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return f.err
	}
	f.shows = append(f.shows, 0)
	return nil
}

func (f *fakeNavigator) Visit(path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func (f *fakeNavigator) ShowLine(_ context.Context, line int) error {
	f.shows = append(f.shows, line)
	return f.err
}

type fakeHeadings struct {
	anchors []string
	err     error
	// nav, when set, is shown at line like the real searcher does.
	nav  *fakeNavigator
	line int
}

func (f *fakeHeadings) JumpToHeading(ctx context.Context, anchorRef string) error {
	f.anchors = append(f.anchors, anchorRef)
	if f.err != nil {
		return f.err
	}
	if f.nav != nil {
		return f.nav.ShowLine(ctx, f.line)
	}
	return nil
}

type fakeCitations struct {
	entries map[string]string
	keys    []string
}

func (f *fakeCitations) ResolveCitation(_ context.Context, key string) (string, bool) {
	f.keys = append(f.keys, key)
	v, ok := f.entries[key]
	return v, ok
}

type countingResolver struct {
	Resolver
	calls int
}

func (c *countingResolver) Filename(ctx context.Context, ref string) resolve.Target {
	c.calls++
	return c.Resolver.Filename(ctx, ref)
}

func (c *countingResolver) External(ctx context.Context, ref string) resolve.Target {
	c.calls++
	return c.Resolver.External(ctx, ref)
}

type env struct {
	runner    *testutil.FakeRunner
	nav       *fakeNavigator
	headings  *fakeHeadings
	citations *fakeCitations
	resolver  *countingResolver
	notices   *notice.Recorder
	logs      *bytes.Buffer
	d         *Dispatcher
}

func newEnv(t *testing.T, policy resolve.Policy) *env {
	t.Helper()
	p, err := osprofile.Named(osprofile.NamePosix)
	if err != nil {
		t.Fatal(err)
	}
	e := &env{
		runner:    testutil.NewFakeRunner(),
		nav:       &fakeNavigator{},
		headings:  &fakeHeadings{},
		citations: &fakeCitations{entries: map[string]string{}},
		notices:   &notice.Recorder{},
		logs:      &bytes.Buffer{},
	}
	checker := exists.NewChecker(p, e.runner, e.notices, nil)
	res := resolve.New(p, checker, e.runner, policy,
		resolve.Anchors{Root: "/nb", Initial: "/nb/first"},
		resolve.WithHome("/home/me"))
	e.resolver = &countingResolver{Resolver: res}
	e.d = New(Deps{
		Resolver:  e.resolver,
		Opener:    opener.New(p, checker, e.runner, nil),
		Navigator: e.nav,
		Headings:  e.headings,
		Citations: e.citations,
		Notifier:  e.notices,
		Logger:    slog.New(slog.NewTextHandler(e.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	return e
}

func TestScenarioA_RootCreatesDirThenNavigates(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot, CreateDirs: true})

	out := e.d.Follow(context.Background(), "projects/todo.md")
	if out.Kind != links.Filename || out.Action != ActionNavigate {
		t.Fatalf("outcome = %+v", out)
	}
	runs := e.runner.Runs()
	if len(runs) != 1 || runs[0] != "mkdir -p /nb/projects" {
		t.Errorf("runs = %v", runs)
	}
	if len(e.nav.paths) != 1 || e.nav.paths[0] != "/nb/projects/todo.md" {
		t.Errorf("navigated = %v", e.nav.paths)
	}
	if out.CreatedDir != "/nb/projects" {
		t.Errorf("created = %q", out.CreatedDir)
	}
}

func TestScenarioB_URLGoesStraightToOpener(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToCurrent})

	out := e.d.Follow(context.Background(), "https://example.com")
	if out.Kind != links.URL || out.Action != ActionOpen {
		t.Fatalf("outcome = %+v", out)
	}
	if e.resolver.calls != 0 {
		t.Errorf("resolver invoked %d times for a URL", e.resolver.calls)
	}
	runs := e.runner.Runs()
	if len(runs) != 1 || runs[0] != "xdg-open https://example.com" {
		t.Errorf("runs = %v", runs)
	}
}

func TestScenarioC_AnchorGoesToHeadingSearch(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot, CreateDirs: true})

	out := e.d.Follow(context.Background(), "#Background")
	if out.Kind != links.Anchor || out.Action != ActionHeading {
		t.Fatalf("outcome = %+v", out)
	}
	if len(e.headings.anchors) != 1 || e.headings.anchors[0] != "#Background" {
		t.Errorf("anchors = %v", e.headings.anchors)
	}
	if e.resolver.calls != 0 {
		t.Error("resolver must not run for anchors")
	}
}

func TestScenarioD_CitationRedispatchesToFile(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})
	e.citations.entries["smith2020"] = "file:~/papers/smith2020.pdf"
	e.runner.Respond("test -f /home/me/papers/smith2020.pdf", "true")

	out := e.d.Follow(context.Background(), "@smith2020")
	if out.Kind != links.File || out.Action != ActionOpen {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Target != "/home/me/papers/smith2020.pdf" {
		t.Errorf("target = %q", out.Target)
	}
	if len(out.Via) != 1 || out.Via[0] != "@smith2020" {
		t.Errorf("via = %v", out.Via)
	}
	runs := e.runner.Runs()
	if len(runs) != 1 || runs[0] != "xdg-open /home/me/papers/smith2020.pdf" {
		t.Errorf("runs = %v", runs)
	}
}

func TestScenarioE_MissingTargetSingleNotice(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})

	out := e.d.Follow(context.Background(), "file:/nope/missing.pdf")
	if out.Action != ActionNone {
		t.Errorf("action = %q", out.Action)
	}
	msgs := e.notices.Messages()
	if len(msgs) != 1 || msgs[0] != "/nope/missing.pdf does not exist" {
		t.Errorf("notices = %v", msgs)
	}
	if len(e.runner.Runs()) != 0 {
		t.Errorf("nothing should be opened: %v", e.runner.Runs())
	}
}

func TestCitation_EscapesKey(t *testing.T) {
	e := newEnv(t, resolve.Policy{})
	e.d.Follow(context.Background(), "@doe-2019.a")
	if len(e.citations.keys) != 1 || e.citations.keys[0] != `doe\-2019\.a` {
		t.Errorf("keys = %v", e.citations.keys)
	}
}

func TestCitation_UnresolvedIsSilent(t *testing.T) {
	e := newEnv(t, resolve.Policy{})
	out := e.d.Follow(context.Background(), "@unknown")
	if out.Kind != links.Citation || out.Action != ActionNone || out.Notice != "" {
		t.Errorf("outcome = %+v", out)
	}
	if len(e.notices.Messages()) != 0 {
		t.Errorf("notices = %v", e.notices.Messages())
	}
	if !strings.Contains(e.logs.String(), "citation unresolved") {
		t.Errorf("unresolved citation not logged: %s", e.logs.String())
	}
}

func TestCitation_LoopTerminates(t *testing.T) {
	e := newEnv(t, resolve.Policy{})
	e.citations.entries["a"] = "@b"
	e.citations.entries["b"] = "@a"

	out := e.d.Follow(context.Background(), "@a")
	if out.Kind != links.Citation || out.Action != ActionNone {
		t.Errorf("outcome = %+v", out)
	}
	if len(e.citations.keys) != DefaultMaxCitationDepth {
		t.Errorf("lookups = %v, want %d", e.citations.keys, DefaultMaxCitationDepth)
	}
}

func TestFilename_WithHeadingSuffix(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})

	out := e.d.Follow(context.Background(), "plan.md#Goals")
	if out.Action != ActionNavigate || out.Heading != "#Goals" {
		t.Fatalf("outcome = %+v", out)
	}
	if e.nav.paths[0] != "/nb/plan.md" {
		t.Errorf("navigated = %v", e.nav.paths)
	}
	if len(e.headings.anchors) != 1 || e.headings.anchors[0] != "#Goals" {
		t.Errorf("anchors = %v", e.headings.anchors)
	}
}

func TestAnchor_MissingHeadingNotice(t *testing.T) {
	e := newEnv(t, resolve.Policy{})
	e.headings.err = apperr.ErrTargetNotFound

	out := e.d.Follow(context.Background(), "#Nowhere")
	if out.Action != ActionNone || out.Notice != "heading #Nowhere does not exist" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestNavigateFailureBecomesNotice(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})
	e.nav.err = errors.New("editor missing")

	out := e.d.Follow(context.Background(), "a.md")
	if out.Action != ActionNone || out.Notice == "" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestFilename_WithHeadingSuffixShowsOnce(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})
	e.headings.nav = e.nav
	e.headings.line = 12

	out := e.d.Follow(context.Background(), "notes/plan.md#Goals")
	if out.Action != ActionNavigate || out.Notice != "" {
		t.Fatalf("outcome = %+v", out)
	}
	if len(e.nav.shows) != 1 || e.nav.shows[0] != 12 {
		t.Errorf("shows = %v, want a single launch at line 12", e.nav.shows)
	}
}

func TestFilename_MissingHeadingShowsTop(t *testing.T) {
	e := newEnv(t, resolve.Policy{RelativeTo: resolve.RelativeToRoot})
	e.headings.err = apperr.ErrTargetNotFound

	out := e.d.Follow(context.Background(), "plan.md#Nowhere")
	if out.Action != ActionNavigate || out.Notice != "heading #Nowhere does not exist" {
		t.Fatalf("outcome = %+v", out)
	}
	if len(e.nav.shows) != 1 || e.nav.shows[0] != 0 {
		t.Errorf("shows = %v, want a single launch at the top", e.nav.shows)
	}
}
