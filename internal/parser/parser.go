// Package parser extracts frontmatter, headings and link targets from Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]]*)\]\((?:<([^>]+)>|([^)\s]+))(?:\s+"[^"]*")?\)`)
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
)

// Link styles.
const (
	StyleMarkdown = "markdown"
	StyleWiki     = "wiki"
)

// Link is one link target found in the body.
type Link struct {
	Target string `json:"target"`
	Text   string `json:"text,omitempty"`
	Style  string `json:"style"`
	Line   int    `json:"line"`
}

// Heading is an ATX heading with its anchor slug.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
	Line  int    `json:"line"`
}

// Result holds the output of parsing a Markdown file. Line numbers are
// 1-based and count from the start of the file, frontmatter included.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Headings    []Heading
	Links       []Link
}

// Parse extracts frontmatter, body, headings and links from raw Markdown bytes.
// Fenced code blocks are skipped.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	firstLine := 1 + strings.Count(string(data[:len(data)-len(body)]), "\n")

	res := &Result{Frontmatter: fm, Body: body}
	inFence := false
	for i, line := range strings.Split(body, "\n") {
		lineNo := firstLine + i
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if h, ok := parseHeading(trimmed); ok {
			h.Line = lineNo
			res.Headings = append(res.Headings, h)
		}
		res.Links = append(res.Links, extractLinks(line, lineNo)...)
	}
	res.Title = deriveTitle(fm, res.Headings)
	return res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	// Body starts on the line after the closing delimiter.
	if i := bytes.IndexByte(afterDelim, '\n'); i >= 0 {
		afterDelim = afterDelim[i+1:]
	} else {
		afterDelim = nil
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: body only, no error.
		return nil, string(data)
	}

	return fm, string(afterDelim)
}

func parseHeading(line string) (Heading, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil || m[2] == "" {
		return Heading{}, false
	}
	return Heading{Level: len(m[1]), Text: m[2], Slug: Slug(m[2])}, true
}

// extractLinks returns the wiki and Markdown link targets on one line, in
// order of appearance. Images are skipped.
func extractLinks(line string, lineNo int) []Link {
	var out []Link
	for _, m := range wikilinkRe.FindAllStringSubmatch(line, -1) {
		// [[Target|Alias]] → Target.
		target, alias, _ := strings.Cut(m[1], "|")
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		out = append(out, Link{Target: target, Text: strings.TrimSpace(alias), Style: StyleWiki, Line: lineNo})
	}
	for _, loc := range mdLinkRe.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > 0 && line[loc[0]-1] == '!' {
			continue
		}
		// Skip the inner brackets of a wikilink such as [[a]](b).
		if loc[0] > 0 && line[loc[0]-1] == '[' {
			continue
		}
		text := line[loc[2]:loc[3]]
		var target string
		if loc[4] >= 0 {
			target = line[loc[4]:loc[5]]
		} else {
			target = line[loc[6]:loc[7]]
		}
		out = append(out, Link{Target: target, Text: text, Style: StyleMarkdown, Line: lineNo})
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, headings []Heading) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, h := range headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

// Slug converts heading text to its anchor form: lower case, spaces to
// hyphens, punctuation other than '-' and '_' dropped.
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}
