package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/zeroinstall-go/zeroinstall/errs"
)

// Optimise hardlink-deduplicates identical files across every entry in the
// store (spec §4.C), under the store's exclusive lock (spec §5). It groups
// files by (size, content hash) and relinks every duplicate after the
// first onto one inode, returning the bytes reclaimed.
func (s *LocalStore) Optimise() (int64, error) {
	if err := s.lock.Lock(); err != nil {
		return 0, errors.Wrapf(errs.ErrIO, "acquiring store lock: %v", err)
	}
	defer s.lock.Unlock()

	groups := make(map[string][]string)

	err := godirwalk.Walk(s.root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == s.root {
				return nil
			}
			if de.IsDir() || de.IsSymlink() {
				return nil
			}
			fi, err := os.Lstat(path)
			if err != nil {
				return nil
			}

			key, err := contentKey(path, fi.Size())
			if err != nil {
				return err
			}
			groups[key] = append(groups[key], path)
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return 0, errors.Wrapf(errs.ErrIO, "walking store for optimise: %v", err)
	}

	var saved int64
	for _, paths := range groups {
		if len(paths) < 2 {
			continue
		}
		canonical := paths[0]
		fi, err := os.Stat(canonical)
		if err != nil {
			continue
		}
		for _, dup := range paths[1:] {
			if sameInode(canonical, dup) {
				continue
			}
			if err := relink(canonical, dup); err != nil {
				continue
			}
			saved += fi.Size()
		}
	}
	return saved, nil
}

// contentKey hashes a file's full content, prefixed with its size so two
// different-length files never collide even on a partial hash match.
func contentKey(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(errs.ErrIO, "open %q: %v", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(errs.ErrIO, "hash %q: %v", path, err)
	}
	return strconv.FormatInt(size, 10) + ":" + hex.EncodeToString(h.Sum(nil)), nil
}

// relink replaces dup with a hardlink to canonical. Published entry
// directories are read-and-traverse-only (0555), so the parent directory's
// write bit is restored for the duration of the swap and locked back down
// afterward regardless of outcome.
func relink(canonical, dup string) error {
	dir := filepath.Dir(dup)
	dirInfo, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		return err
	}
	defer os.Chmod(dir, dirInfo.Mode())

	tmp := dup + ".optlink"
	if err := os.Link(canonical, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dup); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func sameInode(a, b string) bool {
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(fa, fb)
}
