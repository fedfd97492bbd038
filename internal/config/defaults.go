package config

const (
	defaultLogFormat   = "console"
	defaultLogLevel    = "warn"
	defaultCachePath   = "~/.cache/desktidy/digests.db"
	defaultStateDir    = "~/.local/state/desktidy"
	defaultDebounceMS  = 1500
	minimumDebounceMS  = 100
	defaultConfigPath  = "~/.config/desktidy/config.toml"
	projectConfigFile  = "desktidy.toml"
	envLogLevel        = "DESKTIDY_LOG_LEVEL"
	envWorkers         = "DESKTIDY_WORKERS"
	defaultCacheEnable = false
	defaultHidden      = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Scan: Scan{
			IncludeHidden: defaultHidden,
		},
		Dedupe: Dedupe{
			CacheEnabled: defaultCacheEnable,
			CachePath:    defaultCachePath,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Watch: Watch{
			DebounceMS: defaultDebounceMS,
		},
	}
}
