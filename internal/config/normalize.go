package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeAPI()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeDisplay()
	return c.normalizeLogging()
}

func (c *Config) normalizeAPI() {
	if env := strings.TrimSpace(os.Getenv("TASKNOTES_API_BASE")); env != "" {
		c.API.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv("TASKNOTES_TOKEN")); env != "" {
		c.API.Token = env
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBase
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.API.FetchLimit <= 0 {
		c.API.FetchLimit = defaultFetchLimit
	}
	if c.API.ReturnLimit <= 0 {
		c.API.ReturnLimit = defaultReturnLimit
	}
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
	if c.Cache.MaxStaleSeconds <= 0 {
		c.Cache.MaxStaleSeconds = defaultCacheMaxStaleSeconds
	}
	if c.Cache.RerunDelayMS <= 0 {
		c.Cache.RerunDelayMS = defaultRerunDelayMS
	}
	if c.Cache.RefreshBackoffSeconds <= 0 {
		c.Cache.RefreshBackoffSeconds = defaultRefreshBackoffSeconds
	}
	if c.Cache.SessionTTLMS <= 0 {
		c.Cache.SessionTTLMS = defaultSessionTTLMS
	}
	if c.Cache.DetailTTLMS <= 0 {
		c.Cache.DetailTTLMS = defaultDetailTTLMS
	}
	if c.Cache.PomodoroTTLMS <= 0 {
		c.Cache.PomodoroTTLMS = defaultPomodoroTTLMS
	}
	if c.Cache.PomodoroMaxStaleMS <= 0 {
		c.Cache.PomodoroMaxStaleMS = defaultPomodoroMaxStaleMS
	}
	return nil
}

func (c *Config) normalizeDisplay() {
	cleaned := make([]string, 0, len(c.Display.SubtitleFields))
	for _, field := range c.Display.SubtitleFields {
		if f := strings.ToLower(strings.TrimSpace(field)); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) == 0 {
		cleaned = Default().Display.SubtitleFields
	}
	c.Display.SubtitleFields = cleaned
}

func (c *Config) normalizeLogging() error {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
