package internal

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_WiresComponents(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "notebook")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	bib := filepath.Join(dir, "refs.yaml")
	if err := os.WriteFile(bib, []byte("- id: smith2020\n  URL: https://example.org\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.Notebook.Root = root
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Bibliography.Path = bib
	cfg.OS.Profile = "unsupported"
	cfg.Editor = EditorConfig{}

	var logs bytes.Buffer
	c, err := Open(WithConfig(cfg), WithLogger(newLogger(&logs, slog.LevelDebug)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if c.Bibliography == nil || c.Bibliography.Len() != 1 {
		t.Fatalf("bibliography not loaded")
	}
	if got := c.Service.Classify("@smith2020"); got != "citation" {
		t.Errorf("classify = %q", got)
	}
	if !strings.Contains(logs.String(), `"os_profile":"unsupported"`) {
		t.Errorf("missing wiring log: %s", logs.String())
	}
}

func TestOpen_RequiresConfig(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestOpen_BadBibliography(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Notebook.Root = dir
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Bibliography.Path = filepath.Join(dir, "missing.yaml")
	if _, err := Open(WithConfig(cfg)); err == nil {
		t.Fatal("expected error for a missing bibliography")
	}
}

func TestOpen_TerminalEditor(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Notebook.Root = dir
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.OS.Profile = "posix"

	var logs bytes.Buffer
	c, err := Open(WithConfig(cfg), WithLogger(newLogger(&logs, slog.LevelDebug)), WithTerminal())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if !strings.Contains(logs.String(), `"terminal":true`) {
		t.Errorf("terminal editor not wired: %s", logs.String())
	}
}
