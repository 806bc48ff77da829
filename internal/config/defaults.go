package config

const (
	defaultCollisionStyle = CollisionPrefix
	defaultCollisionLimit = 1024
	defaultHistoryEnabled = true
	defaultHistoryPath    = "~/.local/share/batchren/history.db"
	defaultLockDir        = "~/.local/share/batchren/locks"
	defaultLogFormat      = "console"
	defaultLogLevel       = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Rename: Rename{
			Collision:      defaultCollisionStyle,
			CollisionLimit: defaultCollisionLimit,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
			Path:    defaultHistoryPath,
			LockDir: defaultLockDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
