package internal

import (
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notelink/internal/dispatch"
	"github.com/starford/notelink/internal/osprofile"
	"github.com/starford/notelink/internal/resolve"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App          ApplicationConfig  `yaml:"app"`
	Notebook     NotebookConfig     `yaml:"notebook"`
	Links        LinksConfig        `yaml:"links"`
	OS           OSConfig           `yaml:"os"`
	Editor       EditorConfig       `yaml:"editor"`
	Bibliography BibliographyConfig `yaml:"bibliography"`
	History      HistoryConfig      `yaml:"history"`
	Auth         AuthConfig         `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notebook.Validate(); err != nil {
		return err
	}
	if err := c.Links.Validate(); err != nil {
		return err
	}
	if err := c.OS.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotebookConfig holds the anchor directories.
//
// Initial pins the directory "first" references resolve against; when
// empty it is the directory of the first document made active.
type NotebookConfig struct {
	Root    string `yaml:"root"`
	Initial string `yaml:"initial"`
}

// Validate validates the notebook configuration.
func (c *NotebookConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// LinksConfig controls how references are resolved.
//
// RelativeTo is not checked against the known values: anything
// other than "root" or "current" resolves like "first".
type LinksConfig struct {
	RelativeTo        string `yaml:"relative_to"`
	CreateDirs        bool   `yaml:"create_dirs"`
	ImplicitExtension string `yaml:"implicit_extension"`
	MaxCitationDepth  int    `yaml:"max_citation_depth"`
}

// Validate validates the links configuration.
func (c *LinksConfig) Validate() error {
	if c.MaxCitationDepth == 0 {
		c.MaxCitationDepth = dispatch.DefaultMaxCitationDepth
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxCitationDepth, validation.Min(1)),
	)
}

// Policy returns the resolution policy.
func (c *LinksConfig) Policy() resolve.Policy {
	return resolve.Policy{
		RelativeTo:        c.RelativeTo,
		CreateDirs:        c.CreateDirs,
		ImplicitExtension: c.ImplicitExtension,
	}
}

// OSConfig selects the operating-system profile.
type OSConfig struct {
	Profile string `yaml:"profile"`
}

// Validate validates the OS configuration.
func (c *OSConfig) Validate() error {
	if c.Profile == "" {
		c.Profile = osprofile.NameAuto
	}
	names := make([]interface{}, len(osprofile.Names))
	for i, n := range osprofile.Names {
		names[i] = n
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Profile, validation.In(names...)),
	)
}

// EditorConfig holds the editor command templates. {path} and {line} are
// substituted; an empty Command only records navigation.
type EditorConfig struct {
	Command     string `yaml:"command"`
	LineCommand string `yaml:"line_command"`
}

// BibliographyConfig points at the CSL bibliography used for citations.
type BibliographyConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// HistoryConfig holds the navigation history database location.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	cfg := &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notebook: NotebookConfig{
			Root: "./notebook",
		},
		Links: LinksConfig{
			RelativeTo:        resolve.RelativeToFirst,
			CreateDirs:        true,
			ImplicitExtension: "md",
			MaxCitationDepth:  dispatch.DefaultMaxCitationDepth,
		},
		OS: OSConfig{
			Profile: osprofile.NameAuto,
		},
		Bibliography: BibliographyConfig{
			Watch: true,
		},
		History: HistoryConfig{
			Path: "./notelink.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
	if ed := os.Getenv("EDITOR"); ed != "" {
		cfg.Editor = EditorConfig{Command: ed + " {path}", LineCommand: ed + " +{line} {path}"}
	}
	return cfg
}
