package store

import (
	"github.com/pkg/errors"

	"github.com/zeroinstall-go/zeroinstall/errs"
	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/observer"
)

// CompositeStore is an ordered list of sub-stores, matching spec §4.C:
// Contains/GetPath scan in order, AddDirectory/AddArchives write to the
// first writable sub-store, ListAll unions every sub-store, and Remove
// removes from every sub-store that has the entry.
type CompositeStore struct {
	Stores []Store
}

// NewCompositeStore builds a composite over stores, first (highest
// priority) to last.
func NewCompositeStore(stores ...Store) *CompositeStore {
	return &CompositeStore{Stores: stores}
}

func (c *CompositeStore) Contains(digest manifest.ManifestDigest) bool {
	for _, s := range c.Stores {
		if s.Contains(digest) {
			return true
		}
	}
	return false
}

func (c *CompositeStore) GetPath(digest manifest.ManifestDigest) (string, error) {
	for _, s := range c.Stores {
		if p, err := s.GetPath(digest); err == nil {
			return p, nil
		}
	}
	return "", errors.Wrapf(errs.ErrImplementationNotFound, "%s", digest)
}

func (c *CompositeStore) ListAll() ([]manifest.ManifestDigest, error) {
	seen := make(map[string]bool)
	var out []manifest.ManifestDigest
	for _, s := range c.Stores {
		entries, err := s.ListAll()
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name, err := e.DirName()
			if err != nil || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, e)
		}
	}
	return out, nil
}

// AddDirectory writes to the first sub-store whose add succeeds, stopping
// at the first that is not read-only/unauthorized. Per spec §4.C, a
// composite writes to the first *writable* sub-store; we detect
// writability by attempting the add and treating UnauthorizedAccess as
// "try the next store".
func (c *CompositeStore) AddDirectory(source string, expected manifest.ManifestDigest, obs observer.Observer) error {
	var lastErr error
	for _, s := range c.Stores {
		err := s.AddDirectory(source, expected, obs)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errs.IsUnauthorizedAccess(err) {
			return err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no sub-stores configured")
	}
	return lastErr
}

func (c *CompositeStore) AddArchives(archives []ArchiveSource, expected manifest.ManifestDigest, obs observer.Observer) error {
	var lastErr error
	for _, s := range c.Stores {
		err := s.AddArchives(archives, expected, obs)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errs.IsUnauthorizedAccess(err) {
			return err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no sub-stores configured")
	}
	return lastErr
}

func (c *CompositeStore) Remove(digest manifest.ManifestDigest) error {
	var removedAny bool
	for _, s := range c.Stores {
		if !s.Contains(digest) {
			continue
		}
		if err := s.Remove(digest); err != nil {
			return err
		}
		removedAny = true
	}
	if !removedAny {
		return errors.Wrapf(errs.ErrImplementationNotFound, "%s", digest)
	}
	return nil
}

func (c *CompositeStore) Optimise() (int64, error) {
	var total int64
	for _, s := range c.Stores {
		n, err := s.Optimise()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *CompositeStore) Verify(digest manifest.ManifestDigest, obs observer.Observer) error {
	path, err := c.GetPath(digest)
	if err != nil {
		return err
	}
	for _, s := range c.Stores {
		if p, err := s.GetPath(digest); err == nil && p == path {
			return s.Verify(digest, obs)
		}
	}
	return errors.Wrapf(errs.ErrImplementationNotFound, "%s", digest)
}
