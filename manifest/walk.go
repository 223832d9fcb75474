package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

// node is one file-system entry discovered while walking a directory for
// manifesting purposes.
type node struct {
	relPath string // slash-separated, relative to the directory root
	name    string // basename
	mode    os.FileMode
	size    int64
	modTime time.Time
	target  string // symlink referent, only set when mode&os.ModeSymlink != 0
}

// listChildren returns the immediate children of dir, sorted by name, using
// github.com/karrick/godirwalk's fast directory-entry reader instead of
// filepath.Walk/os.ReadDir (matching the teacher's own choice of godirwalk
// for bulk directory traversal in prune.go/prune_vendor.go).
func listChildren(dir string) ([]node, error) {
	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read directory %q", dir)
	}
	sort.Sort(dirents)

	nodes := make([]node, 0, len(dirents))
	for _, de := range dirents {
		full := filepath.Join(dir, de.Name())
		fi, err := os.Lstat(full)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot lstat %q", full)
		}

		n := node{
			relPath: filepath.ToSlash(de.Name()),
			name:    de.Name(),
			mode:    fi.Mode(),
			size:    fi.Size(),
		}

		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(full)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot readlink %q", full)
			}
			n.target = filepath.ToSlash(target)
		} else if !fi.IsDir() {
			// Round to whole seconds per spec §4.B so the manifest is stable
			// across filesystems with differing mtime resolution.
			n.modTime = fi.ModTime().Truncate(time.Second)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
