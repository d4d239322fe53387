package config

const (
	defaultConfigPath             = "~/.config/movieorg/config.toml"
	defaultBackendURL             = "http://127.0.0.1:5001"
	defaultBackendTimeoutSeconds  = 120
	defaultDataDir                = "~/.local/share/movieorg"
	defaultLogDir                 = "~/.local/share/movieorg/logs"
	defaultSuggestionErrorSeconds = 3
	defaultSummarySeconds         = 5
	defaultNtfyTimeoutSeconds     = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Backend: Backend{
			URL:            defaultBackendURL,
			TimeoutSeconds: defaultBackendTimeoutSeconds,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		UI: UI{
			SuggestionErrorSeconds: defaultSuggestionErrorSeconds,
			SummarySeconds:         defaultSummarySeconds,
			Color:                  true,
			Progress:               true,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
