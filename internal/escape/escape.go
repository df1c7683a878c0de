// Package escape produces shell-safe and pattern-safe variants of strings.
package escape

import "strings"

const (
	// The first seven are the characters references commonly carry; the rest
	// would otherwise split, substitute or glob a POSIX command line.
	posixSpecials   = " '&()$#;|<>`\"\\*?[]{}~!"
	windowsSpecials = " &"
	patternSpecials = `-.'"`
)

// Posix prefixes every POSIX shell special character with a backslash.
func Posix(s string) string {
	return prefix(s, posixSpecials, '\\')
}

// Windows prefixes every cmd.exe special character with a caret.
func Windows(s string) string {
	return prefix(s, windowsSpecials, '^')
}

// Pattern escapes characters that would otherwise be interpreted by a
// regexp, so the result matches s literally for the characters citation
// keys commonly contain.
func Pattern(s string) string {
	return prefix(s, patternSpecials, '\\')
}

// Unpattern reverses Pattern.
func Unpattern(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(patternSpecials, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func prefix(s, specials string, marker byte) string {
	if !strings.ContainsAny(s, specials) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(specials, c) >= 0 {
			b.WriteByte(marker)
		}
		b.WriteByte(c)
	}
	return b.String()
}
