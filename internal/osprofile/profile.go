// Package osprofile selects the operating-system specific primitives used to
// resolve and open references: path separator, shell escaping and the shell
// commands for existence tests, directory creation and opening targets.
package osprofile

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/escape"
)

// Kind is the family an operating system belongs to.
type Kind int

const (
	Unsupported Kind = iota
	Posix
	Windows
)

func (k Kind) String() string {
	switch k {
	case Posix:
		return "posix"
	case Windows:
		return "windows"
	default:
		return "unsupported"
	}
}

// Profile names accepted by Named.
const (
	NameAuto        = "auto"
	NamePosix       = "posix"
	NameDarwin      = "darwin"
	NameWindows     = "windows"
	NameUnsupported = "unsupported"
)

// Names lists every value Named accepts.
var Names = []string{NameAuto, NamePosix, NameDarwin, NameWindows, NameUnsupported}

var windowsAbsRe = regexp.MustCompile(`^[A-Za-z]:\\`)

// Profile is the capability set for one operating system. It is selected once
// at startup and never mutated.
type Profile struct {
	Name      string
	Kind      Kind
	Separator string
	// Shell is the argv prefix a command string is appended to.
	Shell []string
	// Launcher opens a file, directory or URL with its default application.
	Launcher string
}

var (
	posixProfile = Profile{
		Name:      NamePosix,
		Kind:      Posix,
		Separator: "/",
		Shell:     []string{"sh", "-c"},
		Launcher:  "xdg-open",
	}
	darwinProfile = Profile{
		Name:      NameDarwin,
		Kind:      Posix,
		Separator: "/",
		Shell:     []string{"sh", "-c"},
		Launcher:  "open",
	}
	windowsProfile = Profile{
		Name:      NameWindows,
		Kind:      Windows,
		Separator: `\`,
		Shell:     []string{"cmd", "/C"},
		Launcher:  `start ""`,
	}
	unsupportedProfile = Profile{
		Name:      NameUnsupported,
		Kind:      Unsupported,
		Separator: "/",
	}
)

// ForGOOS returns the profile for a runtime.GOOS value.
func ForGOOS(goos string) Profile {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos":
		return posixProfile
	case "darwin":
		return darwinProfile
	case "windows":
		return windowsProfile
	default:
		return unsupportedProfile
	}
}

// Detect returns the profile of the running operating system.
func Detect() Profile {
	return ForGOOS(runtime.GOOS)
}

// Named returns the profile for a configuration value. "auto" and the empty
// string detect the running operating system.
func Named(name string) (Profile, error) {
	switch strings.ToLower(name) {
	case "", NameAuto:
		return Detect(), nil
	case NamePosix, "linux":
		return posixProfile, nil
	case NameDarwin, "macos":
		return darwinProfile, nil
	case NameWindows:
		return windowsProfile, nil
	case NameUnsupported:
		return unsupportedProfile, nil
	}
	return Profile{}, fmt.Errorf("osprofile: unknown profile %q", name)
}

// Supported reports whether shell-backed capabilities exist for the profile.
func (p Profile) Supported() bool {
	return p.Kind != Unsupported
}

// ShellEscape makes s safe to splice into a command for this profile's shell.
func (p Profile) ShellEscape(s string) string {
	if p.Kind == Windows {
		return escape.Windows(s)
	}
	return escape.Posix(s)
}

// IsAbs reports whether path is absolute for this profile. On POSIX a
// home-relative "~/" path counts as absolute.
func (p Profile) IsAbs(path string) bool {
	if p.Kind == Windows {
		return windowsAbsRe.MatchString(path)
	}
	return strings.HasPrefix(path, "/") || strings.HasPrefix(path, "~/")
}

// ExpandHome replaces a leading "~" with home.
func (p Profile) ExpandHome(path, home string) string {
	if home == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	rest := path[1:]
	if rest != "" && !strings.HasPrefix(rest, p.Separator) {
		// "~user" forms are left alone.
		return path
	}
	return strings.TrimSuffix(home, p.Separator) + rest
}

// Split cuts ref at its last separator. ok is false when ref has no
// directory component.
func (p Profile) Split(ref string) (dir, file string, ok bool) {
	i := strings.LastIndex(ref, p.Separator)
	if i < 0 {
		return "", ref, false
	}
	return ref[:i], ref[i+len(p.Separator):], true
}

// Dir returns the directory part of path, or path itself if it has none.
func (p Profile) Dir(path string) string {
	dir, _, ok := p.Split(path)
	if !ok {
		return path
	}
	if dir == "" {
		return p.Separator
	}
	return dir
}

// Join concatenates elements with the separator, dropping empty elements
// and doubled separators at the seams.
func (p Profile) Join(elem ...string) string {
	out := ""
	for _, e := range elem {
		switch {
		case e == "":
		case out == "":
			out = e
		default:
			out = strings.TrimSuffix(out, p.Separator) + p.Separator + strings.TrimPrefix(e, p.Separator)
		}
	}
	return out
}

// ExistsCommand builds a command printing "true" or "false" on a single line.
// path must already be shell-escaped.
func (p Profile) ExistsCommand(path string, dir bool) (string, error) {
	switch p.Kind {
	case Posix:
		flag := "-f"
		if dir {
			flag = "-d"
		}
		return fmt.Sprintf("test %s %s && echo true || echo false", flag, path), nil
	case Windows:
		if dir {
			path += `\*`
		}
		return fmt.Sprintf("IF exist %s ( echo true ) ELSE ( echo false )", path), nil
	}
	return "", apperr.ErrUnsupportedOS
}

// MkdirCommand builds the directory-creation command. The POSIX form creates
// missing parents; the Windows form relies on whatever the native mkdir does.
// path must already be shell-escaped.
func (p Profile) MkdirCommand(path string) (string, error) {
	switch p.Kind {
	case Posix:
		return "mkdir -p " + path, nil
	case Windows:
		return "mkdir " + path, nil
	}
	return "", apperr.ErrUnsupportedOS
}

// OpenCommand builds the command handing target to the default application.
// target must already be shell-escaped.
func (p Profile) OpenCommand(target string) (string, error) {
	if !p.Supported() || p.Launcher == "" {
		return "", apperr.ErrUnsupportedOS
	}
	return p.Launcher + " " + target, nil
}
