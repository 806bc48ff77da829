package fsys

import (
	"fmt"
	"io/fs"
	"os"

	"batchren/internal/fileutil"
)

func moveNative(src, dst string, replace bool) error {
	var err error
	if replace {
		err = os.Rename(src, dst)
	} else {
		err = renameNoReplace(src, dst)
	}
	if err == nil || !isCrossDevice(err) {
		return err
	}
	return moveAcrossDevices(src, dst, replace, err)
}

// renameChecked is the portable no-replace rename: a check followed by a
// plain rename, so it can still race with other processes.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	}
	return os.Rename(src, dst)
}

func moveAcrossDevices(src, dst string, replace bool, renameErr error) error {
	info, err := os.Lstat(src)
	if err != nil {
		return renameErr
	}
	if !info.Mode().IsRegular() {
		return renameErr
	}
	if !replace {
		if _, err := os.Lstat(dst); err == nil {
			return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
		}
	}
	if err := fileutil.CopyFileVerified(src, dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied to %s but could not remove source: %w", dst, err)
	}
	return nil
}
