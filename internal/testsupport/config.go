package testsupport

import (
	"path/filepath"
	"testing"

	"batchren/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose history database and lock directory live
// in a per-test temp directory. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.History.LockDir = filepath.Join(base, "state", "locks")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return builder.cfg
}

// WithoutHistory disables the run journal.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithCollision selects the collision style and limit.
func WithCollision(style string, limit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rename.Collision = style
		b.cfg.Rename.CollisionLimit = limit
	}
}

// WithRenameDefaults overrides the extension, overwrite and mkdir defaults.
func WithRenameDefaults(extension, overwrite, mkdir bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rename.Extension = extension
		b.cfg.Rename.Overwrite = overwrite
		b.cfg.Rename.Mkdir = mkdir
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.History.Path))
}
