package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/zeroinstall-go/zeroinstall/errs"
)

// Provider is the capability the candidate enumerator consumes to resolve
// an interface/feed identifier into a parsed Feed (spec §6). feedID is
// either an absolute URL or an absolute local path; everything about
// fetching, caching, and signature verification is the provider's concern,
// not this package's. ctx carries the caller's cancellation; LocalProvider
// checks it since even a local read can be asked to abort.
type Provider interface {
	Get(ctx context.Context, feedID string) (*Feed, error)
}

// LocalProvider serves feeds from local XML files, keyed by feed ID being
// either a direct filesystem path or found by joining it under Root.
// It is meant for tests and for a CLI front end operating on feeds already
// on disk; a production FeedProvider additionally performs network
// retrieval and signature checking (out of scope here per spec §1).
type LocalProvider struct {
	Root string

	mu    sync.RWMutex
	cache map[string]*Feed
}

// NewLocalProvider returns a provider rooted at root (may be empty if every
// feedID passed to Get is already an absolute path).
func NewLocalProvider(root string) *LocalProvider {
	return &LocalProvider{Root: root, cache: make(map[string]*Feed)}
}

func (p *LocalProvider) Get(ctx context.Context, feedID string) (*Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if feedID == "" {
		return nil, errors.Wrap(errs.ErrInvalidInterfaceID, "empty feed id")
	}

	p.mu.RLock()
	if f, ok := p.cache[feedID]; ok {
		p.mu.RUnlock()
		return f, nil
	}
	p.mu.RUnlock()

	path := feedID
	if !filepath.IsAbs(path) && !strings.Contains(path, "://") {
		path = filepath.Join(p.Root, path)
	}
	if strings.Contains(path, "://") {
		return nil, errors.Wrapf(errs.ErrFeedUnavailable, "%q is a network feed; LocalProvider only serves local files", feedID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errs.ErrFeedUnavailable, "%q not found locally", feedID)
		}
		return nil, errors.Wrapf(errs.ErrIO, "reading feed %q: %v", feedID, err)
	}

	f, err := Parse(feedID, data)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrIO, "parsing feed %q: %v", feedID, err)
	}

	p.mu.Lock()
	p.cache[feedID] = f
	p.mu.Unlock()
	return f, nil
}

// Put registers an already-parsed feed directly, bypassing disk — useful
// for tests that build a Feed in-memory.
func (p *LocalProvider) Put(feedID string, f *Feed) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[feedID] = f
}
