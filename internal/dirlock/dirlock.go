// Package dirlock keeps two batches from running in the same working directory
// at once. Lock files live in a state directory, never in the directory being
// renamed.
package dirlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another batch holds the directory.
var ErrLocked = errors.New("another batch is running in this directory")

// Lock is a held directory lock.
type Lock struct {
	dir  string
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for workDir inside lockDir.
func PathFor(lockDir, workDir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(workDir)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for workDir without blocking.
func Acquire(lockDir, workDir string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := PathFor(lockDir, workDir)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", workDir, ErrLocked)
	}
	return &Lock{dir: workDir, path: path, lock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the directory. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock for %s: %w", l.dir, err)
	}
	return nil
}
