package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/starford/notelink/internal/exists"
	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/testutil"
)

func newResolver(t *testing.T, profileName string, runner *testutil.FakeRunner, policy Policy, anchors Anchors) *Resolver {
	t.Helper()
	p, err := osprofile.Named(profileName)
	if err != nil {
		t.Fatal(err)
	}
	checker := exists.NewChecker(p, runner, nil, nil)
	return New(p, checker, runner, policy, anchors, WithHome("/home/me"))
}

func TestFilename_RootCreatesMissingDir(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: "/nb", Initial: "/first"})

	got := r.Filename(context.Background(), "projects/todo.md")
	if got.Path != "/nb/projects/todo.md" {
		t.Errorf("path = %q", got.Path)
	}
	if got.CreatedDir != "/nb/projects" {
		t.Errorf("created = %q", got.CreatedDir)
	}
	runs := runner.Runs()
	if len(runs) != 1 || runs[0] != "mkdir -p /nb/projects" {
		t.Errorf("runs = %v", runs)
	}
	if outs := runner.Outputs(); len(outs) != 1 {
		t.Errorf("expected exactly one existence check, got %v", outs)
	}
}

func TestFilename_ExistingDirNotCreated(t *testing.T) {
	runner := testutil.NewFakeRunner().Respond("test -d /nb/projects", "true")
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: "/nb"})

	got := r.Filename(context.Background(), "projects/todo.md")
	if got.CreatedDir != "" || len(runner.Runs()) != 0 {
		t.Errorf("existing directory must not be recreated: %+v %v", got, runner.Runs())
	}
}

func TestFilename_CreateDisabledNeverCreates(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: false},
		Anchors{Root: "/nb"})

	r.Filename(context.Background(), "a/b/c.md")
	if len(runner.Runs()) != 0 || len(runner.Outputs()) != 0 {
		t.Errorf("no shell calls expected, got runs=%v outputs=%v", runner.Runs(), runner.Outputs())
	}
}

func TestFilename_NoDirComponent(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToFirst, CreateDirs: true},
		Anchors{Root: "/nb", Initial: "/nb/journal"})

	got := r.Filename(context.Background(), "today.md")
	if got.Path != "/nb/journal/today.md" {
		t.Errorf("path = %q", got.Path)
	}
	if len(runner.Runs()) != 0 {
		t.Errorf("no directory creation expected without a directory component")
	}
}

func TestFilename_EscapesCreatedDir(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: "/nb"})

	r.Filename(context.Background(), "Tom's (old) $stuff/a.md")
	runs := runner.Runs()
	want := `mkdir -p /nb/Tom\'s\ \(old\)\ \$stuff`
	if len(runs) != 1 || runs[0] != want {
		t.Errorf("runs = %v, want %q", runs, want)
	}
}

func TestAnchorDir_Policies(t *testing.T) {
	current := "/nb/a"
	anchors := Anchors{Root: "/nb", Initial: "/nb/first", Current: func() string { return current }}
	runner := testutil.NewFakeRunner()

	cases := map[string]string{
		RelativeToRoot:    "/nb",
		RelativeToFirst:   "/nb/first",
		RelativeToCurrent: "/nb/a",
		"bogus":           "/nb/first",
		"":                "/nb/first",
	}
	for policy, want := range cases {
		r := newResolver(t, osprofile.NamePosix, runner, Policy{RelativeTo: policy}, anchors)
		if got := r.AnchorDir(); got != want {
			t.Errorf("policy %q: anchor = %q, want %q", policy, got, want)
		}
	}
}

func TestAnchorDir_CurrentRequeried(t *testing.T) {
	current := "/nb/a"
	r := newResolver(t, osprofile.NamePosix, testutil.NewFakeRunner(),
		Policy{RelativeTo: RelativeToCurrent},
		Anchors{Root: "/nb", Current: func() string { return current }})

	if got := r.Filename(context.Background(), "x.md").Path; got != "/nb/a/x.md" {
		t.Errorf("first = %q", got)
	}
	current = "/nb/b"
	if got := r.Filename(context.Background(), "x.md").Path; got != "/nb/b/x.md" {
		t.Errorf("after switch = %q", got)
	}
	current = ""
	if got := r.Filename(context.Background(), "x.md").Path; got != "/nb/x.md" {
		t.Errorf("fallback = %q", got)
	}
}

func TestFilename_ImplicitExtension(t *testing.T) {
	r := newResolver(t, osprofile.NamePosix, testutil.NewFakeRunner(),
		Policy{RelativeTo: RelativeToRoot, ImplicitExtension: ".md"},
		Anchors{Root: "/nb"})

	if got := r.Filename(context.Background(), "ideas/later").Path; got != "/nb/ideas/later.md" {
		t.Errorf("path = %q", got)
	}
	if got := r.Filename(context.Background(), "ideas/sketch.png").Path; got != "/nb/ideas/sketch.png" {
		t.Errorf("path with extension = %q", got)
	}
}

func TestExternal_AbsoluteBypassesAnchors(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: "/nb"})

	got := r.External(context.Background(), "file:/abs/path")
	if got.Path != "/abs/path" || !got.Absolute {
		t.Errorf("absolute = %+v", got)
	}
	got = r.External(context.Background(), "file:~/papers/smith2020.pdf")
	if got.Path != "/home/me/papers/smith2020.pdf" {
		t.Errorf("home = %+v", got)
	}
	if len(runner.Runs())+len(runner.Outputs()) != 0 {
		t.Error("absolute external refs must not touch the shell")
	}
}

func TestExternal_RelativeJoinsAnchorWithoutCreating(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NamePosix, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: "/nb"})

	if got := r.External(context.Background(), "file:assets/fig.png").Path; got != "/nb/assets/fig.png" {
		t.Errorf("path = %q", got)
	}
	if got := r.External(context.Background(), "file:fig.png").Path; got != "/nb/fig.png" {
		t.Errorf("path = %q", got)
	}
	if len(runner.Runs()) != 0 {
		t.Error("external refs never create directories")
	}
}

func TestWindows_SeparatorsAndMkdir(t *testing.T) {
	runner := testutil.NewFakeRunner()
	r := newResolver(t, osprofile.NameWindows, runner,
		Policy{RelativeTo: RelativeToRoot, CreateDirs: true},
		Anchors{Root: `C:\nb`})

	got := r.Filename(context.Background(), `My Projects\todo.md`)
	if got.Path != `C:\nb\My Projects\todo.md` {
		t.Errorf("path = %q", got.Path)
	}
	runs := runner.Runs()
	if len(runs) != 1 || runs[0] != `mkdir C:\nb\My^ Projects` {
		t.Errorf("runs = %v", runs)
	}
	if outs := runner.Outputs(); len(outs) != 1 || !strings.HasPrefix(outs[0], "IF exist") {
		t.Errorf("outputs = %v", outs)
	}

	abs := r.External(context.Background(), `file:D:\papers\a.pdf`)
	if abs.Path != `D:\papers\a.pdf` || !abs.Absolute {
		t.Errorf("windows absolute = %+v", abs)
	}
}
