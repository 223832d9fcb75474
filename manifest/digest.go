package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

// lineKind is the first column of a manifest line, following the historical
// Zero Install manifest format: F (file), X (executable file), S (symlink),
// D (directory).
type lineKind byte

const (
	kindFile       lineKind = 'F'
	kindExecutable lineKind = 'X'
	kindSymlink    lineKind = 'S'
	kindDirectory  lineKind = 'D'
)

// Digest computes the manifest digest of the directory at path using algo,
// returning it as an opencontainers/go-digest Digest ("algo:hex"). The
// go-digest type is reused here purely as a typed (algorithm, hex) pair
// container — it is not used for OCI-specific semantics — matching how the
// distribution/distribution and warpgate repos in this retrieval pack use it
// as a generic content-address value object.
func Digest(path string, algo Algorithm) (digest.Digest, error) {
	if !algo.Valid() {
		return "", errors.Wrapf(ErrUnknownAlgorithm, "%q", string(algo))
	}

	fi, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "cannot stat")
	}
	if !fi.IsDir() {
		return "", errors.Errorf("cannot manifest non-directory: %q", path)
	}

	var sum []byte
	if algo.recursive() {
		sum, err = digestRecursive(path, algo)
	} else {
		var text string
		text, err = Manifest(path, algo)
		if err == nil {
			h, herr := algo.newHash()
			if herr != nil {
				return "", herr
			}
			h.Write([]byte(text))
			sum = h.Sum(nil)
		}
	}
	if err != nil {
		return "", err
	}

	return digest.NewDigestFromBytes(digestAlgorithmFor(algo), sum), nil
}

// digestAlgorithmFor maps our Algorithm onto the digest.Algorithm whose
// underlying hash function matches, purely so we can reuse go-digest's
// "algo:hex" formatting; it does not imply OCI digest-algorithm semantics.
func digestAlgorithmFor(a Algorithm) digest.Algorithm {
	switch a {
	case SHA1New:
		return digest.SHA1
	default:
		return digest.SHA256
	}
}

// Manifest renders the canonical textual manifest of the directory at path
// under algo, per spec §4.B: one line per file/symlink/directory entry,
// sorted by path, recording type, executable bit, size, whole-second mtime,
// content hash, and name.
//
// Manifest is only meaningful for non-recursive algorithms; sha256new digests
// a tree by composing per-directory digests instead (see digestRecursive),
// so it has no single flat manifest text.
func Manifest(root string, algo Algorithm) (string, error) {
	if algo.recursive() {
		return "", errors.Errorf("%s has no flat manifest text; use Digest", algo)
	}

	var entries []entry
	if err := collect(root, "", algo, &entries); err != nil {
		return "", err
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ReplaceAll(entries[i].key, "/", "\x00") < strings.ReplaceAll(entries[j].key, "/", "\x00")
	})

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.line)
	}
	return b.String(), nil
}

// entry is one manifest line paired with the path used to order it.
type entry struct {
	key  string // slash-separated relative path, for sorting only
	line string // the rendered manifest line, newline-terminated
}

// collect recursively appends one entry per descendant of
// filepath.Join(root, relDir) into *entries. Entries are keyed by their
// relative path, and Manifest orders the keys with '/' ranked below every
// other byte, so a directory's entire subtree sorts contiguously
// immediately after the directory's own line.
func collect(root, relDir string, algo Algorithm, entries *[]entry) error {
	children, err := listChildren(filepath.Join(root, relDir))
	if err != nil {
		return err
	}

	for _, n := range children {
		rel := n.relPath
		if relDir != "" {
			rel = relDir + "/" + n.relPath
		}

		switch {
		case n.mode&os.ModeSymlink != 0:
			h, herr := algo.newHash()
			if herr != nil {
				return herr
			}
			io.WriteString(h, n.target)
			line := fmt.Sprintf("%c %s %d %s\n", kindSymlink, hex.EncodeToString(h.Sum(nil)), len(n.target), n.name)
			*entries = append(*entries, entry{key: rel, line: line})
		case n.mode.IsDir():
			line := fmt.Sprintf("%c %s\n", kindDirectory, n.name)
			*entries = append(*entries, entry{key: rel, line: line})
			if err := collect(root, rel, algo, entries); err != nil {
				return err
			}
		default:
			sum, err := hashFile(filepath.Join(root, rel), algo)
			if err != nil {
				return err
			}
			kind := kindFile
			if n.mode&0o111 != 0 {
				kind = kindExecutable
			}
			line := fmt.Sprintf("%c %s %d %d %s\n", kind, sum, n.modTime.Unix(), n.size, n.name)
			*entries = append(*entries, entry{key: rel, line: line})
		}
	}
	return nil
}

// digestRecursive computes a sha256new-style digest: the directory's own
// hash is derived from the hashes of its immediate children, each of which
// is itself a content hash (files/symlinks) or a recursively-computed
// directory digest. This mirrors git's tree-object approach and lets a
// store verify or rehash a subtree without rewalking siblings that did not
// change.
func digestRecursive(dir string, algo Algorithm) ([]byte, error) {
	children, err := listChildren(dir)
	if err != nil {
		return nil, err
	}

	type line struct {
		key  string
		text string
	}
	lines := make([]line, 0, len(children))

	for _, n := range children {
		full := filepath.Join(dir, n.relPath)
		switch {
		case n.mode&os.ModeSymlink != 0:
			h, herr := algo.newHash()
			if herr != nil {
				return nil, herr
			}
			io.WriteString(h, n.target)
			lines = append(lines, line{
				key:  n.relPath,
				text: fmt.Sprintf("%c %s %d %s\n", kindSymlink, hex.EncodeToString(h.Sum(nil)), len(n.target), n.name),
			})
		case n.mode.IsDir():
			sub, err := digestRecursive(full, algo)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line{
				key:  n.relPath,
				text: fmt.Sprintf("%c %s %s\n", kindDirectory, hex.EncodeToString(sub), n.name),
			})
		default:
			sum, err := hashFile(full, algo)
			if err != nil {
				return nil, err
			}
			kind := kindFile
			if n.mode&0o111 != 0 {
				kind = kindExecutable
			}
			lines = append(lines, line{
				key:  n.relPath,
				text: fmt.Sprintf("%c %s %d %d %s\n", kind, sum, n.modTime.Unix(), n.size, n.name),
			})
		}
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].key < lines[j].key })

	h, err := algo.newHash()
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		io.WriteString(h, l.text)
	}
	return h.Sum(nil), nil
}

func hashFile(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot open %q", path)
	}
	defer f.Close()

	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "cannot read %q", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
