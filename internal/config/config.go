package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyPath = errors.New("config path is empty")
	ErrNilConfig = errors.New("config is nil")
)

// ICSConfig describes one ICS feed whose occurrences become campaign events.
type ICSConfig struct {
	URL  string `yaml:"url" json:"url"`
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	// MediaType is used when a VEVENT carries no CATEGORIES.
	MediaType string `yaml:"media_type" json:"media_type"`
	// Color is used when a VEVENT carries no COLOR.
	Color string `yaml:"color" json:"color"`
}

// HTTPSourceConfig points at a campaign backend serving
// GET {base_url}/events?year=Y&month=M.
type HTTPSourceConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	Token          string `yaml:"token,omitempty" json:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// SourcesConfig selects which event sources feed the calendar. All enabled
// sources are merged.
type SourcesConfig struct {
	// Canned enables the built-in demo campaigns.
	Canned bool `yaml:"canned" json:"canned"`
	// CannedLatencyMillis simulates a slow backend for the canned source.
	CannedLatencyMillis int `yaml:"canned_latency_ms" json:"canned_latency_ms"`
	// File is a YAML/JSON file of events keyed by "YYYY-MM".
	File string            `yaml:"file,omitempty" json:"file,omitempty"`
	HTTP *HTTPSourceConfig `yaml:"http,omitempty" json:"http,omitempty"`
	ICS  []ICSConfig       `yaml:"ics" json:"ics"`
	// ICSCacheDir stores ETag/Last-Modified metadata and bodies per feed.
	ICSCacheDir string `yaml:"ics_cache_dir" json:"ics_cache_dir"`
}

// LayoutConfig holds the week row geometry in pixels.
type LayoutConfig struct {
	MinWeekHeight int `yaml:"min_week_height" json:"min_week_height"`
	BaseHeight    int `yaml:"base_height" json:"base_height"`
	RowHeight     int `yaml:"row_height" json:"row_height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone that decides what "today" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a cron schedule (e.g. "*/15 * * * *") for warming the
	// current month's layout.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheTTLSeconds bounds how long a computed month layout is served
	// from memory.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	Layout LayoutConfig `yaml:"layout" json:"layout"`

	// Icons overrides the media-type icon table. "*" sets the fallback icon,
	// an empty value removes a built-in entry.
	Icons map[string]string `yaml:"icons,omitempty" json:"icons,omitempty"`

	Sources SourcesConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Sources: SourcesConfig{Canned: true},
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Paris"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 30
	}
	if c.Layout.MinWeekHeight <= 0 {
		c.Layout.MinWeekHeight = 140
	}
	if c.Layout.BaseHeight <= 0 {
		c.Layout.BaseHeight = 80
	}
	if c.Layout.RowHeight <= 0 {
		c.Layout.RowHeight = 36
	}
	if c.Sources.ICS == nil {
		c.Sources.ICS = []ICSConfig{}
	}
	if c.Sources.ICSCacheDir == "" {
		c.Sources.ICSCacheDir = "./var/ics-cache"
	}
	if c.Sources.HTTP != nil && c.Sources.HTTP.TimeoutSeconds <= 0 {
		c.Sources.HTTP.TimeoutSeconds = 15
	}
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Location resolves Timezone, falling back to time.Local when it is unknown.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("config: load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 permissions and returned.
//   - Otherwise the YAML is decoded and defaults are filled in.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// The defaults are still usable; let the caller decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return ErrNilConfig
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mediacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
