package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"batchren/internal/batch"
	"batchren/internal/config"
	"batchren/internal/history"
	"batchren/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string
	noHistoryFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string, noHistoryFlag *bool) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
		noHistoryFlag: noHistoryFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.noHistoryFlag != nil && *c.noHistoryFlag {
			cfg.History.Enabled = false
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the logger once, writing to w. Flags override the
// config file.
func (c *commandContext) ensureLogger(w io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		opts := logging.Options{Level: "warn", Format: "console", Writer: w}
		if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
			opts.Level = cfg.Logging.Level
			opts.Format = cfg.Logging.Format
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			opts.Level = *c.logLevelFlag
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			opts.Format = *c.logFormatFlag
		}
		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// openHistory returns the run journal, or nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// withRunner builds a batch runner for cmd and closes the journal afterwards.
// Unless requireHistory is set, a journal that cannot be opened is logged and
// the batch runs without it.
func (c *commandContext) withRunner(cmd *cobra.Command, requireHistory bool, fn func(*batch.Runner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := c.openHistory()
	if err != nil {
		if requireHistory {
			return err
		}
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path and history.lock_dir in the config file"),
			logging.String(logging.FieldImpact, "this batch is not recorded and cannot be undone"),
		)
		unjournaled := *cfg
		unjournaled.History.Enabled = false
		cfg = &unjournaled
	}
	if store != nil {
		defer store.Close()
	}
	return fn(batch.NewRunner(cfg, store, logger))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
