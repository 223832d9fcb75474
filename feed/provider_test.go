package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalProviderReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.xml")
	if err := os.WriteFile(path, []byte(sampleFeed), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewLocalProvider(dir)
	f, err := p.Get(context.Background(), "hello.xml")
	if err != nil {
		t.Fatal(err)
	}
	if f.Interface != "http://example.com/hello.xml" {
		t.Errorf("unexpected interface id %q", f.Interface)
	}

	f2, err := p.Get(context.Background(), "hello.xml")
	if err != nil {
		t.Fatal(err)
	}
	if f2 != f {
		t.Error("expected the second Get to return the cached *Feed instance")
	}
}

func TestLocalProviderMissingFile(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	if _, err := p.Get(context.Background(), "nope.xml"); err == nil {
		t.Fatal("expected an error for a nonexistent feed file")
	}
}

func TestLocalProviderRejectsNetworkFeedID(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	if _, err := p.Get(context.Background(), "http://example.com/remote.xml"); err == nil {
		t.Fatal("expected LocalProvider to reject a network feed id")
	}
}

func TestLocalProviderEmptyFeedID(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	if _, err := p.Get(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty feed id")
	}
}
