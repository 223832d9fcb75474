package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleFeed = `<?xml version="1.0"?>
<interface uri="app">
  <implementation id="app1" version="1.0" arch="Linux-x86_64">
    <manifest-digest sha256new="app1digest"/>
    <archive href="http://example.com/app1.tar.gz"/>
  </implementation>
</interface>`

func writeFeed(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.xml")
	if err := os.WriteFile(path, []byte(sampleFeed), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSolveEmitsSelectionsXML(t *testing.T) {
	feedPath := writeFeed(t)
	storeRoot := t.TempDir()

	var out, errBuf bytes.Buffer
	code := run([]string{"-store", storeRoot, "-os", "Linux", "-cpu", "x86_64", feedPath}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("run failed: %s", errBuf.String())
	}
	if !strings.Contains(out.String(), `id="app1"`) {
		t.Fatalf("expected selections XML to name app1, got %q", out.String())
	}
}

func TestSolveUnsatisfiedReportsError(t *testing.T) {
	feedPath := writeFeed(t)
	storeRoot := t.TempDir()

	var out, errBuf bytes.Buffer
	code := run([]string{"-store", storeRoot, "-os", "Windows", "-cpu", "x86_64", feedPath}, &out, &errBuf)
	if code == 0 {
		t.Fatalf("expected a nonzero exit for an unsatisfiable requirement, stdout=%q", out.String())
	}
	if errBuf.String() == "" {
		t.Fatal("expected an error message on stderr")
	}
}

func TestSolveRejectsMissingArgument(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := run(nil, &out, &errBuf)
	if code == 0 {
		t.Fatal("expected a nonzero exit with no feed path given")
	}
}
