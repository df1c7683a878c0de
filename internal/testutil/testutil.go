// Package testutil provides shared test helpers: a recording command runner,
// temporary history databases and notebooks.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/starford/notelink/internal/history"
)

// FakeRunner records every command instead of invoking a shell.
// Output answers with the scripted response whose key is the longest
// substring of the command, or "false" when none matches.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string]string
	OutputErr error
	RunErr    error
	outputs   []string
	runs      []string
}

// NewFakeRunner creates a FakeRunner with no scripted responses.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: map[string]string{}}
}

// Respond scripts the output for commands containing substr.
func (f *FakeRunner) Respond(substr, output string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[substr] = output
	return f
}

// Output records command and returns the scripted response.
func (f *FakeRunner) Output(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs = append(f.outputs, command)
	if f.OutputErr != nil {
		return "", f.OutputErr
	}
	best := ""
	out := "false"
	for substr, resp := range f.Responses {
		if strings.Contains(command, substr) && len(substr) > len(best) {
			best, out = substr, resp
		}
	}
	return out, nil
}

// Run records command.
func (f *FakeRunner) Run(_ context.Context, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, command)
	return f.RunErr
}

// Outputs returns every command passed to Output.
func (f *FakeRunner) Outputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outputs...)
}

// Runs returns every command passed to Run.
func (f *FakeRunner) Runs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.runs...)
}

// TestHistory creates a temporary SQLite history database that is
// automatically cleaned up.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notelink-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotebook creates a temporary notebook containing files (path relative
// to the root mapped to content) and returns its root.
func TestNotebook(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}
