package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeRename()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeRename() {
	c.Rename.Collision = strings.ToLower(strings.TrimSpace(c.Rename.Collision))
	if c.Rename.Collision == "" {
		c.Rename.Collision = defaultCollisionStyle
	}
	if c.Rename.CollisionLimit == 0 {
		c.Rename.CollisionLimit = defaultCollisionLimit
	}
}

func (c *Config) normalizeHistory() error {
	if value, ok := os.LookupEnv("BATCHREN_HISTORY_PATH"); ok && strings.TrimSpace(value) != "" {
		c.History.Path = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if strings.TrimSpace(c.History.LockDir) == "" {
		c.History.LockDir = defaultLockDir
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	if c.History.LockDir, err = expandPath(c.History.LockDir); err != nil {
		return fmt.Errorf("history.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("BATCHREN_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
