// Package store implements the content-addressed implementation cache
// (spec §4.C): atomic add of directories and archives, integrity
// verification, hardlink-deduplicating optimisation, and composition of
// multiple stores into a search path. The add protocol (stage to a temp
// dir on the same filesystem, verify, rename-to-final, tolerate a losing
// race) is adapted from golang-dep's SafeWriter in txn_writer.go, which
// solves the same "stage, verify, atomically publish" problem for
// manifest/lock/vendor writes.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/theckman/go-flock"

	"github.com/zeroinstall-go/zeroinstall/errs"
	"github.com/zeroinstall-go/zeroinstall/internal/fsutil"
	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/observer"
)

// Store is the content-addressed cache surface consumed by the solver and
// by the executor (out of scope here) to resolve a ManifestDigest to a
// directory on disk.
type Store interface {
	Contains(digest manifest.ManifestDigest) bool
	GetPath(digest manifest.ManifestDigest) (string, error)
	ListAll() ([]manifest.ManifestDigest, error)
	AddDirectory(source string, expected manifest.ManifestDigest, obs observer.Observer) error
	AddArchives(archives []ArchiveSource, expected manifest.ManifestDigest, obs observer.Observer) error
	Remove(digest manifest.ManifestDigest) error
	Optimise() (int64, error)
	Verify(digest manifest.ManifestDigest, obs observer.Observer) error
}

// LocalStore is a single cache directory on local disk.
type LocalStore struct {
	root string
	lock *flock.Flock
}

// NewLocalStore opens (creating if absent) a store rooted at path.
func NewLocalStore(path string) (*LocalStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrapf(errs.ErrIO, "create store root %q: %v", path, err)
	}
	return &LocalStore{
		root: path,
		lock: flock.NewFlock(filepath.Join(path, ".lock")),
	}, nil
}

// Root returns the store's directory on disk.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Contains(digest manifest.ManifestDigest) bool {
	_, err := s.GetPath(digest)
	return err == nil
}

// GetPath returns the first entry directory matching any (algorithm, hex)
// pair in digest, preferring algorithms in manifest.KnownAlgorithms order.
func (s *LocalStore) GetPath(digest manifest.ManifestDigest) (string, error) {
	for _, algo := range manifest.KnownAlgorithms {
		hex, ok := digest[algo]
		if !ok {
			continue
		}
		p := filepath.Join(s.root, entryName(algo, hex))
		if is, err := fsutil.IsDir(p); err != nil {
			return "", errors.Wrap(errs.ErrIO, err.Error())
		} else if is {
			return p, nil
		}
	}
	return "", errors.Wrapf(errs.ErrImplementationNotFound, "%s", digest)
}

// ListAll returns one ManifestDigest per entry directory in the store root.
// Each has exactly one (algorithm, hex) pair, since that is all the
// directory name itself records; Store callers that need the full set for
// an implementation combine this with the feed's declared digest.
func (s *LocalStore) ListAll() ([]manifest.ManifestDigest, error) {
	ents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrIO, "read store root: %v", err)
	}

	var out []manifest.ManifestDigest
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		algo, hex, err := manifest.ParseDigestID(e.Name())
		if err != nil {
			continue // tmp-*, .lock, stray entries
		}
		out = append(out, manifest.ManifestDigest{algo: hex})
	}
	sort.Slice(out, func(i, j int) bool {
		ni, _ := out[i].DirName()
		nj, _ := out[j].DirName()
		return ni < nj
	})
	return out, nil
}

func entryName(algo manifest.Algorithm, hex string) string {
	return fmt.Sprintf("%s=%s", algo, hex)
}

// AddDirectory stages a copy of source and publishes it under expected's
// name, per the add protocol in spec §4.C.
func (s *LocalStore) AddDirectory(source string, expected manifest.ManifestDigest, obs observer.Observer) error {
	if obs == nil {
		obs = observer.NopObserver
	}
	tmp, err := s.stage(func(dest string) error {
		return copyTree(source, dest)
	})
	if err != nil {
		return err
	}
	return s.finalizeAdd(tmp, expected, obs)
}

// AddArchives stages a temp dir by extracting archives in order, then
// publishes it the same way AddDirectory does.
func (s *LocalStore) AddArchives(archives []ArchiveSource, expected manifest.ManifestDigest, obs observer.Observer) error {
	if obs == nil {
		obs = observer.NopObserver
	}
	tmp, err := s.stage(func(dest string) error {
		return extractArchives(archives, dest)
	})
	if err != nil {
		return err
	}
	return s.finalizeAdd(tmp, expected, obs)
}

// stage allocates a temp directory inside the store root (so the
// subsequent rename is on one filesystem) and runs populate to fill it,
// cleaning up on any failure.
func (s *LocalStore) stage(populate func(dest string) error) (string, error) {
	tmp, err := os.MkdirTemp(s.root, fmt.Sprintf("tmp-%s-*", uuid.NewString()))
	if err != nil {
		return "", errors.Wrapf(errs.ErrIO, "create staging dir: %v", err)
	}
	if err := populate(tmp); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}
	return tmp, nil
}

// finalizeAdd implements spec §4.C steps 3-6: compute the manifest under
// expected's algorithm, compare, rename into place (tolerating a losing
// race against a concurrent writer), and lock down permissions.
func (s *LocalStore) finalizeAdd(tmp string, expected manifest.ManifestDigest, obs observer.Observer) error {
	algo, wantHex, ok := expected.Best()
	if !ok {
		os.RemoveAll(tmp)
		return errors.New("empty expected digest")
	}

	got, err := manifest.Digest(tmp, algo)
	if err != nil {
		os.RemoveAll(tmp)
		return errors.Wrapf(errs.ErrIO, "computing manifest: %v", err)
	}
	if got.Encoded() != wantHex {
		os.RemoveAll(tmp)
		return errors.Wrapf(errs.ErrDigestMismatch, "expected %s=%s, got %s", algo, wantHex, got.Encoded())
	}

	final := filepath.Join(s.root, entryName(algo, wantHex))
	if exists, _ := fsutil.Exists(final); exists {
		// Another writer already published the same digest; the add is
		// idempotent, so discard ours and report success.
		os.RemoveAll(tmp)
		obs.Infof("store: %s already present, discarding redundant copy", entryName(algo, wantHex))
		return nil
	}

	if err := fsutil.RenameWithFallback(tmp, final); err != nil {
		if exists, _ := fsutil.Exists(final); exists {
			os.RemoveAll(tmp)
			return nil
		}
		os.RemoveAll(tmp)
		return errors.Wrapf(errs.ErrIO, "publishing entry: %v", err)
	}

	if err := fsutil.SetReadOnlyTree(final); err != nil {
		return errors.Wrapf(errs.ErrUnauthorizedAccess, "locking down %q: %v", final, err)
	}
	obs.Infof("store: added %s", entryName(algo, wantHex))
	return nil
}

// Remove deletes the entry identified by digest, holding the store's
// exclusive advisory lock for the duration (spec §5).
func (s *LocalStore) Remove(digest manifest.ManifestDigest) error {
	if err := s.lock.Lock(); err != nil {
		return errors.Wrapf(errs.ErrIO, "acquiring store lock: %v", err)
	}
	defer s.lock.Unlock()

	path, err := s.GetPath(digest)
	if err != nil {
		return err
	}
	if err := fsutil.SetWritableTree(path); err != nil {
		return errors.Wrapf(errs.ErrUnauthorizedAccess, "%v", err)
	}
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(errs.ErrIO, "removing %q: %v", path, err)
	}
	return nil
}

// Verify re-manifests the entry for digest under every algorithm digest
// declares and confirms each still matches.
func (s *LocalStore) Verify(digest manifest.ManifestDigest, obs observer.Observer) error {
	if obs == nil {
		obs = observer.NopObserver
	}
	path, err := s.GetPath(digest)
	if err != nil {
		return err
	}
	for algo, wantHex := range digest {
		got, err := manifest.Digest(path, algo)
		if err != nil {
			return errors.Wrapf(errs.ErrIO, "re-manifesting %q: %v", path, err)
		}
		if got.Encoded() != wantHex {
			return errors.Wrapf(errs.ErrDigestMismatch, "%q: expected %s=%s, recomputed %s", path, algo, wantHex, got.Encoded())
		}
	}
	obs.Infof("store: verified %q", path)
	return nil
}

func copyTree(src, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrapf(errs.ErrIO, "clearing staging dir: %v", err)
	}
	if err := copyTreeImpl(src, dest); err != nil {
		return errors.Wrapf(errs.ErrIO, "copying %q: %v", src, err)
	}
	return nil
}
