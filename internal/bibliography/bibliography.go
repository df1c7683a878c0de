// Package bibliography resolves citation keys against a CSL-YAML or
// CSL-JSON bibliography file.
package bibliography

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/notelink/internal/escape"
	"github.com/starford/notelink/internal/links"
)

// DOIPrefix turns a bare DOI into a resolvable URL.
const DOIPrefix = "https://doi.org/"

// Entry holds the reference-bearing fields of a CSL item.
type Entry struct {
	ID           string
	File         string
	URL          string
	DOI          string
	HowPublished string
}

// Reference returns the substitute reference for the entry, or "" when it
// has none. Fields are tried in order: file, URL, DOI, howpublished.
func (e Entry) Reference() string {
	switch {
	case e.File != "":
		return links.FilePrefix + e.File
	case e.URL != "":
		return e.URL
	case e.DOI != "":
		if links.LooksLikeURL(e.DOI) {
			return e.DOI
		}
		return DOIPrefix + strings.TrimPrefix(e.DOI, "doi:")
	case e.HowPublished != "" && links.LooksLikeURL(e.HowPublished):
		return e.HowPublished
	}
	return ""
}

// Bibliography is an in-memory set of entries that can be reloaded from its
// source file. It is safe for concurrent use.
type Bibliography struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries []Entry
}

// Open loads the bibliography at path.
func Open(path string, logger *slog.Logger) (*Bibliography, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bibliography{path: path, logger: logger}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Path returns the source file.
func (b *Bibliography) Path() string {
	return b.path
}

// Reload re-reads the source file. On failure the previous entries are kept.
func (b *Bibliography) Reload() error {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("bibliography: read %s: %w", b.path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return fmt.Errorf("bibliography: %s: %w", b.path, err)
	}
	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	b.logger.Debug("bibliography: loaded", slog.String("path", b.path), slog.Int("entries", len(entries)))
	return nil
}

// Len returns the number of loaded entries.
func (b *Bibliography) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Lookup returns the first entry whose id equals key. key is a
// pattern-escaped citation key; its escapes are removed and the rest is
// matched literally.
func (b *Bibliography) Lookup(key string) (Entry, bool) {
	id := escape.Unpattern(key)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// ResolveCitation returns the substitute reference for key.
func (b *Bibliography) ResolveCitation(_ context.Context, key string) (string, bool) {
	e, ok := b.Lookup(key)
	if !ok {
		return "", false
	}
	ref := e.Reference()
	return ref, ref != ""
}

// Parse decodes CSL items. It accepts a top-level list (CSL-JSON or
// CSL-YAML) or a mapping with a "references" list.
func Parse(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var items []map[string]interface{}
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&items); err != nil {
			return nil, fmt.Errorf("parse items: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			References []map[string]interface{} `yaml:"references"`
		}
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("parse references: %w", err)
		}
		items = wrapped.References
	default:
		return nil, fmt.Errorf("parse: unexpected document shape")
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		e := Entry{
			ID:           field(item, "id"),
			File:         field(item, "file"),
			URL:          field(item, "URL"),
			DOI:          field(item, "DOI"),
			HowPublished: field(item, "howpublished"),
		}
		if e.ID == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// field returns the string value of name, matching keys case-insensitively.
func field(item map[string]interface{}, name string) string {
	v, ok := item[name]
	if !ok {
		for k, kv := range item {
			if strings.EqualFold(k, name) {
				v, ok = kv, true
				break
			}
		}
	}
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}
