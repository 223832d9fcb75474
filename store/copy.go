package store

import "github.com/termie/go-shutil"

// copyTreeImpl stages source into dest via termie/go-shutil's CopyTree,
// which (like Python's shutil.copytree it's modeled on) creates dest
// itself, so callers must ensure dest does not already exist.
func copyTreeImpl(src, dest string) error {
	return shutil.CopyTree(src, dest, nil)
}
