// Package models defines the value types shared across front-ends.
package models

import "time"

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	AbsPath   string    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkReport describes one link of a note and where it would lead.
type LinkReport struct {
	Note   string `json:"note"`
	Line   int    `json:"line"`
	Text   string `json:"text,omitempty"`
	Ref    string `json:"ref"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
}

// HistoryEntry is one document on the navigation history stack.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
