package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/nibi/internal/ingot"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" json:"app" toml:"app"`
	Project ProjectConfig     `yaml:"project" json:"project" toml:"project"`
	SQLite  SQLiteConfig      `yaml:"sqlite" json:"sqlite" toml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth" json:"auth" toml:"auth"`
	Parse   ParseConfig       `yaml:"parse" json:"parse" toml:"parse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Project.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Parse.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" json:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" json:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" json:"port" toml:"port"`
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

// ProjectConfig locates the site content. Relative paths below Root are
// resolved against it.
type ProjectConfig struct {
	Root       string `yaml:"root" json:"root" toml:"root"`
	IngotsDir  string `yaml:"ingots_dir" json:"ingots_dir" toml:"ingots_dir"`
	Categories string `yaml:"categories" json:"categories" toml:"categories"`
	Tags       string `yaml:"tags" json:"tags" toml:"tags"`
	SiteTitle  string `yaml:"site_title" json:"site_title" toml:"site_title"`
}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.IngotsDir, validation.Required),
	)
}

// Resolve joins p onto Root unless p is empty or absolute.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// IngotsPath returns the directory holding ingot files.
func (c *ProjectConfig) IngotsPath() string { return c.Resolve(c.IngotsDir) }

// CategoriesPath returns the category file, or "" when none is configured.
func (c *ProjectConfig) CategoriesPath() string { return c.Resolve(c.Categories) }

// TagsPath returns the tag file, or "" when none is configured.
func (c *ProjectConfig) TagsPath() string { return c.Resolve(c.Tags) }

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" json:"mode" toml:"mode"`
	Token string `yaml:"token" json:"token" toml:"token"`
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

// ParseConfig controls how ingot files are parsed and indexed.
type ParseConfig struct {
	// Strict rejects files with any field that cannot be read.
	Strict bool `yaml:"strict" json:"strict" toml:"strict"`
	// BackMatterGuard keeps a trailing block without key/value pairs as body
	// instead of dropping it as back matter.
	BackMatterGuard bool `yaml:"back_matter_guard" json:"back_matter_guard" toml:"back_matter_guard"`
	// Workers bounds parallel parsing during sync.
	Workers int `yaml:"workers" json:"workers" toml:"workers"`
	// UnsafeHTML passes raw HTML in bodies through the renderer.
	UnsafeHTML bool `yaml:"unsafe_html" json:"unsafe_html" toml:"unsafe_html"`
	// HardWraps renders single newlines in bodies as line breaks.
	HardWraps bool `yaml:"hard_wraps" json:"hard_wraps" toml:"hard_wraps"`
}

// Validate validates the parse configuration.
func (c *ParseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

// ParseOptions returns the ingot parse options this configuration implies.
func (c *ParseConfig) ParseOptions() []ingot.Option {
	return []ingot.Option{
		ingot.WithStrict(c.Strict),
		ingot.WithBackMatterGuard(c.BackMatterGuard),
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Project: ProjectConfig{
			Root:       ".",
			IngotsDir:  "ingots",
			Categories: "categories.yaml",
			Tags:       "tags.yaml",
			SiteTitle:  "nibi",
		},
		SQLite: SQLiteConfig{
			Path: "./nibi.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Parse: ParseConfig{
			Workers: runtime.GOMAXPROCS(0),
		},
	}
}
