package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/observer"
)

func makeSourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bin", "run"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestAddDirectoryRoundtrip(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}

	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatalf("AddDirectory: %v", err)
	}

	if !s.Contains(digest) {
		t.Fatal("expected store to contain the added digest")
	}

	path, err := s.GetPath(digest)
	if err != nil {
		t.Fatalf("GetPath: %v", err)
	}

	algo, _, _ := digest.Best()
	got, err := manifest.Digest(path, algo)
	if err != nil {
		t.Fatal(err)
	}
	if got.Encoded() != digest[algo] {
		t.Errorf("stored entry's manifest does not reproduce the expected digest")
	}

	if err := s.Verify(digest, observer.NopObserver); err != nil {
		t.Errorf("Verify on an untampered entry failed: %v", err)
	}
}

func TestAddDirectoryIdempotent(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatalf("second add should be a no-op, got error: %v", err)
	}
}

func TestAddDirectoryDigestMismatch(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	src := makeSourceTree(t)

	bogus := manifest.ManifestDigest{manifest.SHA256New: "0000000000000000000000000000000000000000000000000000000000000000"}
	err = s.AddDirectory(src, bogus, observer.NopObserver)
	if err == nil {
		t.Fatal("expected digest mismatch error")
	}

	entries, err := os.ReadDir(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if _, _, perr := manifest.ParseDigestID(e.Name()); perr == nil {
			t.Errorf("expected no published entry after mismatch, found %q", e.Name())
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatal(err)
	}

	path, err := s.GetPath(digest)
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(path, "a.txt")
	if err := os.Chmod(target, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Verify(digest, observer.NopObserver); err == nil {
		t.Error("expected Verify to detect tampering")
	}
}

func TestListAll(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected one ListAll entry for the single published directory, got %d", len(all))
	}
}

func TestRemove(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(digest); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Contains(digest) {
		t.Error("expected entry to be gone after Remove")
	}
	if err := s.Remove(digest); err == nil {
		t.Error("expected Remove of an absent entry to fail with ImplementationNotFound")
	}
}

func TestCompositeStoreAddsToFirst(t *testing.T) {
	rootA, rootB := t.TempDir(), t.TempDir()
	sa, err := NewLocalStore(rootA)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := NewLocalStore(rootB)
	if err != nil {
		t.Fatal(err)
	}
	composite := NewCompositeStore(sa, sb)

	src := makeSourceTree(t)
	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := composite.AddDirectory(src, digest, observer.NopObserver); err != nil {
		t.Fatal(err)
	}
	if !sa.Contains(digest) {
		t.Error("expected composite to write to the first sub-store")
	}
	if sb.Contains(digest) {
		t.Error("did not expect the second sub-store to receive the entry")
	}
	if !composite.Contains(digest) {
		t.Error("composite.Contains should see entries in any sub-store")
	}
}

func TestOptimiseDeduplicatesIdenticalFiles(t *testing.T) {
	storeRoot := t.TempDir()
	s, err := NewLocalStore(storeRoot)
	if err != nil {
		t.Fatal(err)
	}

	mk := func(content string) string {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "shared.txt"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return dir
	}

	src1 := mk("identical payload")
	d1, err := manifest.ComputeAll(src1)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddDirectory(src1, d1, observer.NopObserver); err != nil {
		t.Fatal(err)
	}

	src2 := t.TempDir()
	if err := os.WriteFile(filepath.Join(src2, "shared.txt"), []byte("identical payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src2, "extra.txt"), []byte("unique"), 0o644); err != nil {
		t.Fatal(err)
	}
	d2, err := manifest.ComputeAll(src2)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddDirectory(src2, d2, observer.NopObserver); err != nil {
		t.Fatal(err)
	}

	saved, err := s.Optimise()
	if err != nil {
		t.Fatalf("Optimise: %v", err)
	}
	if saved <= 0 {
		t.Error("expected Optimise to report reclaimed bytes for the duplicated file")
	}
}
