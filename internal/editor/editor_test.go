package editor

import (
	"context"
	"testing"

	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/testutil"
)

func posix() osprofile.Profile {
	p, _ := osprofile.Named(osprofile.NamePosix)
	return p
}

func TestOpen_ExpandsTemplate(t *testing.T) {
	runner := testutil.NewFakeRunner()
	e := New(posix(), runner, "vim {path}", "vim +{line} {path}")

	if err := e.Open(context.Background(), "/nb/my notes.md", 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := e.Open(context.Background(), "/nb/a.md", 12); err != nil {
		t.Fatalf("Open: %v", err)
	}
	runs := runner.Runs()
	if len(runs) != 2 || runs[0] != `vim /nb/my\ notes.md` || runs[1] != "vim +12 /nb/a.md" {
		t.Errorf("runs = %v", runs)
	}
}

func TestOpen_AppendsPathWhenMissing(t *testing.T) {
	e := New(posix(), testutil.NewFakeRunner(), "code --reuse-window", "")
	cmd, err := e.Command("/nb/a.md", 3)
	if err != nil || cmd != "code --reuse-window /nb/a.md" {
		t.Errorf("cmd = %q, %v", cmd, err)
	}
}

func TestOpen_DisabledIsNoop(t *testing.T) {
	runner := testutil.NewFakeRunner()
	e := New(posix(), runner, "", "")
	if err := e.Open(context.Background(), "/nb/a.md", 1); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(runner.Runs()) != 0 {
		t.Errorf("runs = %v", runner.Runs())
	}
}

func TestCommand_RejectsMissingProgram(t *testing.T) {
	e := New(posix(), testutil.NewFakeRunner(), " {path}", "")
	if _, err := e.Command("/nb/a.md", 0); err == nil {
		t.Error("expected error when the program is missing (unset $EDITOR)")
	}
}
