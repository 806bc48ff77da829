package dirlock_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"batchren/internal/dirlock"
)

func TestAcquireIsExclusivePerDirectory(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")
	work := t.TempDir()

	first, err := dirlock.Acquire(lockDir, work)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := dirlock.Acquire(lockDir, work); !errors.Is(err, dirlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	other, err := dirlock.Acquire(lockDir, t.TempDir())
	if err != nil {
		t.Fatalf("other directory should lock independently: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	again, err := dirlock.Acquire(lockDir, work)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	defer again.Release()
}

func TestLockFileStaysOutOfWorkDir(t *testing.T) {
	lockDir := filepath.Join(t.TempDir(), "locks")
	work := t.TempDir()
	path := dirlock.PathFor(lockDir, work)
	if !strings.HasPrefix(path, lockDir) {
		t.Fatalf("lock path %s outside %s", path, lockDir)
	}
	if dirlock.PathFor(lockDir, work+string(filepath.Separator)) != path {
		t.Fatal("trailing separator should not change the lock path")
	}
}
