package config

const (
	defaultAPIBase        = "http://localhost:8080/api"
	defaultTimeoutSeconds = 10
	defaultFetchLimit     = 400
	defaultReturnLimit    = 40

	defaultCacheBackend          = "file"
	defaultCacheDir              = "~/.cache/taskdeck"
	defaultCacheTTLSeconds       = 30
	defaultCacheMaxStaleSeconds  = 300
	defaultRerunDelayMS          = 500
	defaultRefreshBackoffSeconds = 10
	defaultSessionTTLMS          = 1000
	defaultDetailTTLMS           = 2000
	defaultPomodoroTTLMS         = 1000
	defaultPomodoroMaxStaleMS    = 3000

	defaultLogFormat = "text"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBase,
			TimeoutSeconds: defaultTimeoutSeconds,
			FetchLimit:     defaultFetchLimit,
			ReturnLimit:    defaultReturnLimit,
		},
		Cache: Cache{
			Backend:               defaultCacheBackend,
			Dir:                   defaultCacheDir,
			TTLSeconds:            defaultCacheTTLSeconds,
			MaxStaleSeconds:       defaultCacheMaxStaleSeconds,
			RerunDelayMS:          defaultRerunDelayMS,
			RefreshBackoffSeconds: defaultRefreshBackoffSeconds,
			SessionTTLMS:          defaultSessionTTLMS,
			DetailTTLMS:           defaultDetailTTLMS,
			PomodoroTTLMS:         defaultPomodoroTTLMS,
			PomodoroMaxStaleMS:    defaultPomodoroMaxStaleMS,
		},
		Display: Display{
			SubtitleFields: []string{"due", "scheduled", "projects"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
