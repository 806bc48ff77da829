//go:build !linux

package fsys

import (
	"errors"
	"syscall"
)

func renameNoReplace(src, dst string) error {
	return renameChecked(src, dst)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
