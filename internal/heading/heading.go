// Package heading jumps to a heading of the active document.
package heading

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/parser"
)

// Document exposes the active document and moves the view to a line of it.
type Document interface {
	Active() string
	ShowLine(ctx context.Context, line int) error
}

// ReadFunc loads a document's content.
type ReadFunc func(path string) ([]byte, error)

// Searcher looks up anchors among the headings of the active document.
type Searcher struct {
	doc    Document
	read   ReadFunc
	logger *slog.Logger
}

// New creates a Searcher. A nil read falls back to os.ReadFile.
func New(doc Document, read ReadFunc, logger *slog.Logger) *Searcher {
	if read == nil {
		read = os.ReadFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{doc: doc, read: read, logger: logger}
}

// Find returns the first heading of the active document matching anchorRef.
// The anchor matches either the heading's slug or, case-insensitively, its
// text.
func (s *Searcher) Find(anchorRef string) (parser.Heading, error) {
	active := s.doc.Active()
	if active == "" {
		return parser.Heading{}, fmt.Errorf("heading: no active document")
	}
	data, err := s.read(active)
	if err != nil {
		return parser.Heading{}, fmt.Errorf("heading: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return parser.Heading{}, fmt.Errorf("heading: parse %s: %w", active, err)
	}

	anchor := strings.TrimPrefix(anchorRef, "#")
	slug := parser.Slug(anchor)
	for _, h := range res.Headings {
		if h.Slug == slug || strings.EqualFold(h.Text, anchor) {
			return h, nil
		}
	}
	return parser.Heading{}, fmt.Errorf("heading %q in %s: %w", anchorRef, active, apperr.ErrTargetNotFound)
}

// JumpToHeading moves to the heading matching anchorRef.
func (s *Searcher) JumpToHeading(ctx context.Context, anchorRef string) error {
	h, err := s.Find(anchorRef)
	if err != nil {
		return err
	}
	s.logger.Debug("heading: jump", slog.String("anchor", anchorRef), slog.Int("line", h.Line))
	return s.doc.ShowLine(ctx, h.Line)
}
