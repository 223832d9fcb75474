package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeroinstall-go/zeroinstall/manifest"
)

func makeSourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runCLI(t *testing.T, root string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errBuf bytes.Buffer
	argv := append([]string{"0store-go", args[0], "-root", root}, args[1:]...)
	code = run(argv, &out, &errBuf)
	return out.String(), errBuf.String(), code
}

func TestStoreAddContainsGetListRemove(t *testing.T) {
	root := t.TempDir()
	src := makeSourceTree(t)

	digest, err := manifest.ComputeAll(src)
	if err != nil {
		t.Fatal(err)
	}
	digestID, err := digest.DirName()
	if err != nil {
		t.Fatal(err)
	}

	if _, stderr, code := runCLI(t, root, "add", digestID, src); code != 0 {
		t.Fatalf("add failed: %s", stderr)
	}

	if out, _, code := runCLI(t, root, "contains", digestID); code != 0 || strings.TrimSpace(out) != "yes" {
		t.Fatalf("contains: code=%d out=%q", code, out)
	}

	if out, stderr, code := runCLI(t, root, "get", digestID); code != 0 || strings.TrimSpace(out) == "" {
		t.Fatalf("get: code=%d out=%q stderr=%q", code, out, stderr)
	}

	if out, _, code := runCLI(t, root, "list"); code != 0 || !strings.Contains(out, digestID) {
		t.Fatalf("list: code=%d out=%q", code, out)
	}

	if out, stderr, code := runCLI(t, root, "verify", digestID); code != 0 {
		t.Fatalf("verify: code=%d out=%q stderr=%q", code, out, stderr)
	}

	if _, stderr, code := runCLI(t, root, "remove", digestID); code != 0 {
		t.Fatalf("remove failed: %s", stderr)
	}

	if out, _, code := runCLI(t, root, "contains", digestID); code == 0 || strings.TrimSpace(out) != "no" {
		t.Fatalf("expected removed entry to read back as absent, got code=%d out=%q", code, out)
	}
}

func TestStoreOptimiseReportsReclaimedBytes(t *testing.T) {
	root := t.TempDir()
	src1 := makeSourceTree(t)
	src2 := makeSourceTree(t)

	d1, err := manifest.ComputeAll(src1)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := manifest.ComputeAll(src2)
	if err != nil {
		t.Fatal(err)
	}
	id1, _ := d1.DirName()
	id2, _ := d2.DirName()

	if _, stderr, code := runCLI(t, root, "add", id1, src1); code != 0 {
		t.Fatalf("add 1: %s", stderr)
	}
	if _, stderr, code := runCLI(t, root, "add", id2, src2); code != 0 {
		t.Fatalf("add 2: %s", stderr)
	}

	out, stderr, code := runCLI(t, root, "optimise")
	if code != 0 {
		t.Fatalf("optimise: %s", stderr)
	}
	if !strings.Contains(out, "reclaimed") {
		t.Fatalf("expected a reclaimed-bytes report, got %q", out)
	}
}

func TestStoreUnknownCommand(t *testing.T) {
	root := t.TempDir()
	if _, stderr, code := runCLI(t, root, "bogus"); code == 0 || !strings.Contains(stderr, "no such command") {
		t.Fatalf("expected unknown-command failure, got code=%d stderr=%q", code, stderr)
	}
}
