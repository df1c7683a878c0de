// Package storage defines read access to the notebook's Markdown files.
package storage

import "github.com/starford/notelink/internal/models"

// Provider is the interface for notebook file access.
type Provider interface {
	// Root returns the absolute notebook root.
	Root() string
	// List returns metadata for every .md file under dir (relative to the root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path. path is relative to the
	// root or absolute inside it.
	Read(path string) ([]byte, error)
}
