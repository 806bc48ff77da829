// Package fsys roots an afero filesystem at the batch working directory.
//
// Paths handed to an FS are relative to its root unless absolute, which is how
// batchren honours --dir without changing the process working directory. On
// the operating system filesystem, Move refuses to clobber a destination that
// appeared after the caller checked for it, and falls back to copy-and-delete
// when source and destination live on different devices.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is a filesystem rooted at a working directory.
type FS struct {
	fs     afero.Fs
	root   string
	native bool
}

// OS returns the operating system filesystem rooted at root, which must be an
// existing directory.
func OS(root string) (*FS, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory %s is not a directory", abs)
	}
	return &FS{fs: afero.NewOsFs(), root: abs, native: true}, nil
}

// Memory returns an empty in-memory filesystem whose root directory exists.
func Memory(root string) *FS {
	mem := afero.NewMemMapFs()
	root = filepath.Clean(root)
	_ = mem.MkdirAll(root, 0o755)
	return &FS{fs: mem, root: root}
}

// New roots an arbitrary afero filesystem. Renames go through afero.
func New(base afero.Fs, root string) *FS {
	return &FS{fs: base, root: filepath.Clean(root)}
}

// Root returns the working directory every relative path is resolved against.
func (f *FS) Root() string {
	return f.root
}

// Afero exposes the underlying filesystem for walking and reading.
func (f *FS) Afero() afero.Fs {
	return f.fs
}

// Resolve maps p onto the filesystem: absolute paths pass through cleaned,
// relative ones are joined to the root.
func (f *FS) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(f.root, p)
}

// Exists reports whether an entry (including a dangling symlink) is present at p.
func (f *FS) Exists(p string) (bool, error) {
	target := f.Resolve(p)
	var err error
	if lstater, ok := f.fs.(afero.Lstater); ok {
		_, _, err = lstater.LstatIfPossible(target)
	} else {
		_, err = f.fs.Stat(target)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// MkdirAll creates dir and any missing parents.
func (f *FS) MkdirAll(dir string) error {
	return f.fs.MkdirAll(f.Resolve(dir), 0o755)
}

// Move renames from to to. When replace is false an existing destination is
// an error rather than being overwritten.
func (f *FS) Move(from, to string, replace bool) error {
	src, dst := f.Resolve(from), f.Resolve(to)
	if f.native {
		return moveNative(src, dst, replace)
	}
	if !replace {
		exists, err := f.Exists(dst)
		if err != nil {
			return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
		}
		if exists {
			return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
		}
	}
	return f.fs.Rename(src, dst)
}
