// Package config loads eeformula settings from a TOML file, environment
// variables and built-in defaults, in increasing order of precedence below
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EEFORMULA_"

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080" or "127.0.0.1:9000".
	Addr string `toml:"addr"`

	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ReadTimeout       Duration `toml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout"`

	// ShutdownTimeout bounds the graceful drain on SIGINT/SIGTERM.
	ShutdownTimeout Duration `toml:"shutdown_timeout"`

	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`

	// CORSOrigins are allowed in addition to localhost dev servers.
	CORSOrigins []string `toml:"cors_origins,omitempty"`

	// RateLimit is the number of requests one client IP may make per
	// RateWindow. Zero disables limiting.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow Duration `toml:"rate_window"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

// OutputConfig configures CLI output.
type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `toml:"format"`
	// Color is auto, always or never.
	Color string `toml:"color"`
}

// Duration is a time.Duration that reads and writes TOML strings ("15s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d Duration) String() string {
	return d.Duration.String()
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{5 * time.Second},
			ReadTimeout:       Duration{15 * time.Second},
			WriteTimeout:      Duration{15 * time.Second},
			IdleTimeout:       Duration{60 * time.Second},
			ShutdownTimeout:   Duration{10 * time.Second},
			MaxBodyBytes:      1 << 20,
			RateLimit:         600,
			RateWindow:        Duration{time.Minute},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/eeformula/config.toml, falling back to
// ~/.config/eeformula/config.toml. It returns "" when neither can be
// determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "eeformula", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "eeformula", "config.toml")
}

// Load returns the defaults overlaid with the file at path and then the
// environment. An explicit path must exist; with path == "" the default
// path is used if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := loadFile(path, cfg)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults, without consulting the
// environment. Keys present in data win, including explicit zeros such as
// rate_limit = 0.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the file at path over cfg. Only keys present in the
// file are overwritten.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays EEFORMULA_* variables read through lookup:
//
//	EEFORMULA_ADDR, EEFORMULA_LOG_LEVEL, EEFORMULA_LOG_FORMAT,
//	EEFORMULA_FORMAT, EEFORMULA_COLOR, EEFORMULA_RATE_LIMIT,
//	EEFORMULA_CORS_ORIGINS (comma separated)
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ADDR", &cfg.Server.Addr)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("FORMAT", &cfg.Output.Format)
	str("COLOR", &cfg.Output.Color)

	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.Server.RateLimit = n
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	return nil
}

// Validate checks enumerated settings and limits.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if !oneOf(c.Log.Format, "text", "json") {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	if !oneOf(c.Output.Format, ValidFormats...) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output.Format, ValidFormats)
	}
	if !oneOf(c.Output.Color, "auto", "always", "never") {
		return fmt.Errorf("invalid color mode %q: must be auto, always or never", c.Output.Color)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
		return fmt.Errorf("rate_window must be positive when rate_limit is set")
	}
	return nil
}

// ValidFormats are the CLI output formats.
var ValidFormats = []string{"text", "json", "yaml"}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// NewLogger builds the slog.Logger described by c. verbose forces debug
// level.
func (c LogConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level, err := ParseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
