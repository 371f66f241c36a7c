package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validDrivers = map[string]bool{
	DriverFile: true, DriverSQLite: true, DriverMemory: true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.TMDB.APIKey == "" {
		errs = append(errs, "tmdb.api_key: required")
	}
	if err := checkURL(c.TMDB.URL); err != "" {
		errs = append(errs, "tmdb.url: "+err)
	}
	if err := checkURL(c.Catalog.URL); err != "" {
		errs = append(errs, "catalog.url: "+err)
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.requests_per_second: must not be negative, got %v", c.TMDB.RequestsPerSecond))
	}
	if c.TMDB.Burst < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.burst: must be positive, got %d", c.TMDB.Burst))
	}
	if c.TMDB.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("tmdb.concurrency: must be positive, got %d", c.TMDB.Concurrency))
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, "catalog.timeout: must not be negative")
	}
	if c.TMDB.Timeout < 0 {
		errs = append(errs, "tmdb.timeout: must not be negative")
	}
	if c.Search.Debounce < 0 {
		errs = append(errs, "search.debounce: must not be negative")
	}

	if !validDrivers[c.Storage.Driver] {
		errs = append(errs, fmt.Sprintf("storage.driver: must be one of file, sqlite, memory; got %q", c.Storage.Driver))
	} else if c.Storage.Driver != DriverMemory && c.Storage.Path == "" {
		errs = append(errs, fmt.Sprintf("storage.path: required for the %s driver", c.Storage.Driver))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}

func checkURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return err.Error()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("must be an http(s) URL, got %q", raw)
	}
	return ""
}
