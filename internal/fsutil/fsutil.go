// Package fsutil holds small filesystem helpers shared by the store
// package: cross-device-safe renames, existence checks, and recursive
// permission changes. Adapted from golang-dep's fs.go, which solves the
// same "stage somewhere, then atomically swap into place" problem for its
// manifest/lock/vendor writes.
package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
	"github.com/termie/go-shutil"
)

// IsDir reports whether path exists and is a directory.
func IsDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat %q", path)
	}
	return fi.IsDir(), nil
}

// Exists reports whether path exists at all (any type).
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat %q", path)
	}
	return true, nil
}

// RenameWithFallback attempts os.Rename, falling back to a recursive copy
// plus remove when src and dest are on different devices (EXDEV) or,
// on Windows, when renaming a directory outright is disallowed.
func RenameWithFallback(src, dest string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, "lstat %q", src)
	}

	if runtime.GOOS == "windows" && fi.IsDir() {
		if err := shutil.CopyTree(src, dest, nil); err != nil {
			return errors.Wrapf(err, "copy %q to %q", src, dest)
		}
		return os.RemoveAll(src)
	}

	err = os.Rename(src, dest)
	if err == nil {
		return nil
	}

	linkErr, ok := err.(*os.LinkError)
	if !ok || linkErr.Err != syscall.EXDEV {
		return errors.Wrapf(err, "rename %q to %q", src, dest)
	}

	if fi.IsDir() {
		if err := shutil.CopyTree(src, dest, nil); err != nil {
			return errors.Wrapf(err, "copy %q to %q across devices", src, dest)
		}
	} else if err := shutil.CopyFile(src, dest, false); err != nil {
		return errors.Wrapf(err, "copy %q to %q across devices", src, dest)
	}
	return os.RemoveAll(src)
}

// SetReadOnlyTree recursively marks every file read-only (0444, or 0555 for
// a file with any executable bit) and every directory
// read-and-traverse-only (0555), matching the permissions a
// store publishes an entry with once it is write-once (spec §6).
func SetReadOnlyTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.IsDir() {
			return os.Chmod(path, 0o555)
		}
		mode := os.FileMode(0o444)
		if info.Mode()&0o111 != 0 {
			mode = 0o555
		}
		return os.Chmod(path, mode)
	})
}

// SetWritableTree is the inverse of SetReadOnlyTree, used to make a
// published entry removable again.
func SetWritableTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.IsDir() {
			return os.Chmod(path, 0o755)
		}
		mode := os.FileMode(0o644)
		if info.Mode()&0o111 != 0 {
			mode = 0o755
		}
		return os.Chmod(path, mode)
	})
}
