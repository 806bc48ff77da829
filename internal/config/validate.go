package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRename(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRename() error {
	switch c.Rename.Collision {
	case CollisionPrefix, CollisionCounter:
	default:
		return fmt.Errorf("rename.collision must be %q or %q, got %q", CollisionPrefix, CollisionCounter, c.Rename.Collision)
	}
	if c.Rename.CollisionLimit <= 0 {
		return errors.New("rename.collision_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
