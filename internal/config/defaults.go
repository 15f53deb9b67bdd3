package config

const (
	defaultBackendBaseURL = "http://127.0.0.1:8000"
	defaultTimeoutSeconds = 15

	defaultStaleSeconds     = 30
	defaultPollSeconds      = 3
	defaultDetailTTLMinutes = 60
	defaultListTTLMinutes   = 30
	defaultSweepMinutes     = 5

	defaultPrefsDBPath = "~/.local/share/slidespeaker/prefs.db"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Cache: Cache{
			StaleSeconds:     defaultStaleSeconds,
			PollSeconds:      defaultPollSeconds,
			DetailTTLMinutes: defaultDetailTTLMinutes,
			ListTTLMinutes:   defaultListTTLMinutes,
			SweepMinutes:     defaultSweepMinutes,
		},
		Prefs: Prefs{
			DBPath: defaultPrefsDBPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
