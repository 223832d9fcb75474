// Package manifest computes and verifies the canonical directory-tree
// fingerprint that backs a Zero Install ManifestDigest (spec §4.B). A
// directory is walked into a deterministic, sorted textual manifest; the
// digest is the hash of that manifest under the algorithm's hash function.
package manifest

import (
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"github.com/pkg/errors"
)

// Algorithm identifies one of the supported manifest digest algorithms.
// Spec §3: "Algorithms include sha1new, sha256, sha256new."
type Algorithm string

const (
	SHA1New    Algorithm = "sha1new"
	SHA256     Algorithm = "sha256"
	SHA256New  Algorithm = "sha256new"
)

// ErrUnknownAlgorithm is returned by operations given an unrecognized
// Algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown manifest digest algorithm")

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA1New:
		return sha1.New(), nil
	case SHA256, SHA256New:
		return sha256.New(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", string(a))
	}
}

// recursive reports whether the algorithm digests a directory by hashing the
// hashes of its immediate children's manifests (sha256new), rather than by
// flattening the whole tree into one manifest (sha1new, sha256). Both
// strategies satisfy the spec's roundtrip invariant; sha256new additionally
// lets an unchanged subtree's digest be reused without rewalking it.
func (a Algorithm) recursive() bool {
	return a == SHA256New
}

// Valid reports whether a is one of the recognized algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case SHA1New, SHA256, SHA256New:
		return true
	default:
		return false
	}
}

// KnownAlgorithms lists every supported algorithm, most preferred first —
// used when choosing which algorithm to compute for a new store entry and
// when iterating a ManifestDigest for partial-equality checks.
var KnownAlgorithms = []Algorithm{SHA256New, SHA256, SHA1New}
