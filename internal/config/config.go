package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeedConfig describes a single upstream free/busy feed.
type FeedConfig struct {
	// URL is the feed endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for routing and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// OwnerTimezone is the IANA zone the reporting window is anchored to
	// (e.g. "America/New_York"). An invalid value degrades to UTC with a
	// warning at startup rather than refusing to run.
	OwnerTimezone string `yaml:"owner_timezone" json:"owner_timezone"`

	// DefaultTZFallback controls whether floating feed times without a
	// TZID are interpreted in OwnerTimezone. When false they are read as
	// UTC.
	DefaultTZFallback bool `yaml:"default_tz_fallback" json:"default_tz_fallback"`

	// Weeks is the default reporting window length in whole weeks.
	// Clamped to [1, 104].
	Weeks int `yaml:"weeks" json:"weeks"`

	// MaxBodyBytes caps the decoded size of an upstream feed. Responses
	// beyond the cap are rejected before parsing.
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// background feed refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheTTLSeconds bounds how long a fetched feed body may serve API
	// requests before a refetch is forced.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// Feeds is the list of upstream feed sources.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen       = "127.0.0.1:8080"
	defaultWeeks        = 4
	maxWeeks            = 104
	defaultMaxBodyBytes = 1536 * 1024 // ~1.5MB, matches the upstream byte budget
	defaultRefreshCron  = "*/15 * * * *"
	defaultCacheTTL     = 900
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            defaultListen,
		OwnerTimezone:     "UTC",
		DefaultTZFallback: true,
		Weeks:             defaultWeeks,
		MaxBodyBytes:      defaultMaxBodyBytes,
		RefreshCron:       defaultRefreshCron,
		CacheTTLSeconds:   defaultCacheTTL,
		Feeds:             []FeedConfig{},
		BasicAuth:         nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.OwnerTimezone == "" {
		c.OwnerTimezone = "UTC"
	}
	if c.Weeks <= 0 {
		c.Weeks = defaultWeeks
	}
	if c.Weeks > maxWeeks {
		c.Weeks = maxWeeks
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = defaultCacheTTL
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Feed returns the feed with the given ID, or false if none matches.
func (c *Config) Feed(id string) (FeedConfig, bool) {
	for _, f := range c.Feeds {
		if f.ID == id {
			return f, true
		}
	}
	return FeedConfig{}, false
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".busyfeed-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
