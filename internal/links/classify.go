// Package links classifies link targets found in notes.
package links

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

// Kind is the category of a reference.
type Kind string

const (
	File     Kind = "file"
	URL      Kind = "url"
	Citation Kind = "citation"
	Anchor   Kind = "anchor"
	Filename Kind = "filename"
)

// FilePrefix marks a reference to be opened with an external application.
const FilePrefix = "file:"

var urlRe = xurls.Strict()

// LooksLikeURL reports whether s starts with a URL carrying a scheme.
func LooksLikeURL(s string) bool {
	loc := urlRe.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}

// Classify maps a reference to exactly one Kind. Rules are checked in a fixed
// order and the first match wins.
func Classify(ref string) Kind {
	switch {
	case strings.HasPrefix(ref, FilePrefix):
		return File
	case LooksLikeURL(ref):
		return URL
	case strings.HasPrefix(ref, "@"):
		return Citation
	case strings.HasPrefix(ref, "#"):
		return Anchor
	default:
		return Filename
	}
}

// SplitHeading separates a trailing "#heading" from a Filename reference.
// The returned heading keeps its "#" prefix and is empty when absent.
func SplitHeading(ref string) (path, heading string) {
	i := strings.Index(ref, "#")
	if i <= 0 || i == len(ref)-1 {
		return ref, ""
	}
	return ref[:i], ref[i:]
}

// StripFilePrefix removes the "file:" marker.
func StripFilePrefix(ref string) string {
	return strings.TrimPrefix(ref, FilePrefix)
}
