package history

import (
	"errors"
	"os"
	"testing"

	"github.com/starford/notelink/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notelink-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM history`).Scan(&count); err != nil {
		t.Fatalf("history table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM session`).Scan(&count); err != nil {
		t.Fatalf("session table missing: %v", err)
	}
}

func TestPushPopLIFO(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"/nb/a.md", "/nb/b.md", "/nb/c.md"} {
		if err := db.Push(p); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	for _, want := range []string{"/nb/c.md", "/nb/b.md", "/nb/a.md"} {
		got, err := db.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Errorf("Pop = %q, want %q", got, want)
		}
	}
	if _, err := db.Pop(); !errors.Is(err, apperr.ErrEmptyHistory) {
		t.Errorf("Pop on empty = %v, want ErrEmptyHistory", err)
	}
}

func TestListAndLen(t *testing.T) {
	db := testDB(t)
	_ = db.Push("/nb/a.md")
	_ = db.Push("/nb/b.md")

	n, err := db.Len()
	if err != nil || n != 2 {
		t.Fatalf("Len = %d, %v", n, err)
	}
	entries, err := db.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "/nb/b.md" {
		t.Errorf("entries = %+v", entries)
	}
	entries, _ = db.List(1)
	if len(entries) != 1 {
		t.Errorf("limit ignored: %+v", entries)
	}
}

func TestClear(t *testing.T) {
	db := testDB(t)
	_ = db.Push("/nb/a.md")
	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := db.Len(); n != 0 {
		t.Errorf("Len after clear = %d", n)
	}
}

func TestSessionValues(t *testing.T) {
	db := testDB(t)
	v, err := db.Get(KeyActive)
	if err != nil || v != "" {
		t.Fatalf("Get unset = %q, %v", v, err)
	}
	_ = db.Set(KeyActive, "/nb/a.md")
	_ = db.Set(KeyActive, "/nb/b.md")
	if v, _ := db.Get(KeyActive); v != "/nb/b.md" {
		t.Errorf("Get = %q", v)
	}
}
