package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

// ManifestDigest is a set of algorithm-tagged digests for one directory tree
// (spec §3). A StoreEntry's directory name is one "algo=hex" pair drawn from
// its owner's ManifestDigest; two ManifestDigests are PartiallyEqual when
// they share any (algorithm, hex) pair, which is what lets a store entry
// computed under sha256new satisfy a lookup requested under sha1new so long
// as both were computed for the same content.
type ManifestDigest map[Algorithm]string

// ErrMalformedDigestID is returned by ParseDigestID when given a string that
// is not of the form "algo=hex" or "algo:hex".
var ErrMalformedDigestID = errors.New("malformed digest id")

// ComputeAll walks the directory at path once per known algorithm and
// returns the resulting ManifestDigest. Computing every algorithm up front
// lets a store entry satisfy lookups keyed by whichever algorithm the
// requester prefers, at the cost of the extra walks. store.AddDirectory does
// not call it: it computes only the algorithm its expected digest prefers.
func ComputeAll(path string) (ManifestDigest, error) {
	md := make(ManifestDigest, len(KnownAlgorithms))
	for _, algo := range KnownAlgorithms {
		d, err := Digest(path, algo)
		if err != nil {
			return nil, errors.Wrapf(err, "computing %s", algo)
		}
		md[algo] = d.Encoded()
	}
	return md, nil
}

// PartiallyEqual reports whether md and other share at least one
// (algorithm, hex) pair, per spec §3.
func (md ManifestDigest) PartiallyEqual(other ManifestDigest) bool {
	for algo, hex := range md {
		if other[algo] == hex {
			return true
		}
	}
	return false
}

// Best returns the (algorithm, hex) pair for the most preferred algorithm
// present in md, per KnownAlgorithms order. The empty string/false result
// occurs only for an empty ManifestDigest.
func (md ManifestDigest) Best() (Algorithm, string, bool) {
	for _, algo := range KnownAlgorithms {
		if hex, ok := md[algo]; ok {
			return algo, hex, true
		}
	}
	return "", "", false
}

// DirName returns the canonical store directory name ("algo=hex") for the
// most preferred algorithm in md, matching spec §3's StoreEntry naming rule.
func (md ManifestDigest) DirName() (string, error) {
	algo, hex, ok := md.Best()
	if !ok {
		return "", errors.New("empty manifest digest")
	}
	return fmt.Sprintf("%s=%s", algo, hex), nil
}

// String renders md deterministically for logging, listing every known
// "algo=hex" pair sorted alphabetically.
func (md ManifestDigest) String() string {
	var parts []string
	for _, algo := range KnownAlgorithms {
		if hex, ok := md[algo]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", algo, hex))
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// ParseDigestID parses a store entry directory name of the form "algo=hex"
// (the historical Zero Install form) or "algo:hex" (the OCI-style form
// produced by Digest's go-digest return value) into its algorithm and hex
// value.
func ParseDigestID(id string) (Algorithm, string, error) {
	sep := strings.IndexAny(id, "=:")
	if sep < 0 {
		return "", "", errors.Wrapf(ErrMalformedDigestID, "%q", id)
	}
	algo := Algorithm(id[:sep])
	if !algo.Valid() {
		return "", "", errors.Wrapf(ErrUnknownAlgorithm, "%q", id)
	}
	hex := id[sep+1:]
	if hex == "" {
		return "", "", errors.Wrapf(ErrMalformedDigestID, "%q", id)
	}
	return algo, hex, nil
}

// ParseFullDigest parses a "algo:hex" string into a go-digest Digest,
// validating that algo is recognized.
func ParseFullDigest(s string) (digest.Digest, error) {
	algo, hex, err := ParseDigestID(strings.Replace(s, "=", ":", 1))
	if err != nil {
		return "", err
	}
	d := digest.NewDigestFromEncoded(digestAlgorithmFor(algo), hex)
	return d, d.Validate()
}
