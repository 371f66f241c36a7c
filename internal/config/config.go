// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	TMDB    TMDBConfig    `toml:"tmdb"`
	Search  SearchConfig  `toml:"search"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig points at the Netzkino search API.
type CatalogConfig struct {
	URL     string        `toml:"url"`
	Device  string        `toml:"device"`
	Timeout time.Duration `toml:"timeout"`
}

// TMDBConfig configures metadata lookups.
type TMDBConfig struct {
	URL               string        `toml:"url"`
	APIKey            string        `toml:"api_key"`
	Language          string        `toml:"language"`
	ImageURL          string        `toml:"image_url"`
	PosterSize        string        `toml:"poster_size"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
	Concurrency       int           `toml:"concurrency"`
	CacheTTL          time.Duration `toml:"cache_ttl"`
	Timeout           time.Duration `toml:"timeout"`
}

type SearchConfig struct {
	Debounce time.Duration `toml:"debounce"`
}

// StorageConfig selects the watchlist backend. Path is a directory for the
// file driver and a database file for sqlite.
type StorageConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Load reads, parses and validates the configuration file.
// Problems are reported together as an *Error.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation and missing variable checks.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults(&md)
	return &cfg, missing, nil
}

// applyDefaults fills unset fields. Keys where zero is meaningful are only
// defaulted when md shows they were absent from the file; md may be nil.
func (c *Config) applyDefaults(md *toml.MetaData) {
	unset := func(key ...string) bool {
		return md == nil || !md.IsDefined(key...)
	}

	if c.Catalog.URL == "" {
		c.Catalog.URL = "https://api.netzkino.de.simplecache.net"
	}
	if c.Catalog.Device == "" {
		c.Catalog.Device = "devtest"
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 10 * time.Second
	}

	if c.TMDB.URL == "" {
		c.TMDB.URL = "https://api.themoviedb.org"
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = "de"
	}
	if c.TMDB.ImageURL == "" {
		c.TMDB.ImageURL = "https://image.tmdb.org/t/p"
	}
	if c.TMDB.PosterSize == "" {
		c.TMDB.PosterSize = "w500"
	}
	if c.TMDB.RequestsPerSecond == 0 && unset("tmdb", "requests_per_second") {
		c.TMDB.RequestsPerSecond = 40
	}
	if c.TMDB.Burst == 0 {
		c.TMDB.Burst = 20
	}
	if c.TMDB.Concurrency == 0 {
		c.TMDB.Concurrency = 8
	}
	if c.TMDB.CacheTTL == 0 && unset("tmdb", "cache_ttl") {
		c.TMDB.CacheTTL = time.Hour
	}
	if c.TMDB.Timeout == 0 {
		c.TMDB.Timeout = 10 * time.Second
	}

	if c.Search.Debounce == 0 {
		c.Search.Debounce = 300 * time.Millisecond
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case DriverSQLite:
			c.Storage.Path = filepath.Join(DefaultDataDir(), "reelscout.db")
		case DriverFile:
			c.Storage.Path = DefaultDataDir()
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unset variables without a default are left in place and returned in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]
		hasDefault := strings.Contains(match, ":-")

		if value, ok := os.LookupEnv(name); ok && (value != "" || !hasDefault) {
			return value
		}
		if hasDefault {
			return groups[2]
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return out, missing
}
