package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", parsed.Scheme)
	}
	if c.API.ReturnLimit > c.API.FetchLimit {
		return fmt.Errorf("api.return_limit (%d) must not exceed api.fetch_limit (%d)",
			c.API.ReturnLimit, c.API.FetchLimit)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("cache.backend must be \"file\" or \"sqlite\", got %q", c.Cache.Backend)
	}
	if c.Cache.MaxStaleSeconds < c.Cache.TTLSeconds {
		return fmt.Errorf("cache.max_stale_seconds (%d) must be at least cache.ttl_seconds (%d)",
			c.Cache.MaxStaleSeconds, c.Cache.TTLSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "text", "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}
	return nil
}
