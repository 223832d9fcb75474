package model

import (
	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/version"
)

// Binding describes how the executor should expose an implementation's path
// to a running process (environment variable, executable-in-path, etc).
// Its data shape is carried through untouched; interpreting it is the
// executor's job, out of scope here (spec §9 glossary: Binding).
type Binding struct {
	Kind string
	Data map[string]string
}

// RetrievalMethod is one way to obtain an implementation that is not
// already local: an archive to download and extract, or a recipe (ordered
// list) of steps. Only the shape needed to drive Store.AddArchives is kept.
type RetrievalMethod struct {
	// ArchiveURL/Extract/StartOffset describe a single archive retrieval
	// step: where to fetch it, what sub-path within it to use as the root,
	// and a byte offset to skip (for self-extracting archives).
	ArchiveURL   string
	MIMEType     string
	Extract      string
	StartOffset  int64
	Size         int64
}

// Runner names the interface (and command) used to execute an
// implementation that is not itself a native executable, e.g. a Python
// script naming a "python" runner.
type Runner struct {
	InterfaceID string
	Versions    version.Range
	Command     string
	Arguments   []string
}

// Command is one named entry point of an implementation: a relative path
// to execute, optionally via a Runner, with its own dependencies.
type Command struct {
	Name         string
	Path         string
	Runner       *Runner
	Dependencies []Dependency
}

// Implementation is a concrete, addressable build of an interface (spec
// §3). Its identity is the tuple (InterfaceID, ID, Version, Digest).
type Implementation struct {
	InterfaceID string
	ID          string
	Version     version.Version
	Digest      manifest.ManifestDigest

	Architecture Architecture
	Languages    []string
	MainPath     string
	Commands     map[string]*Command
	Dependencies []Dependency
	Restrictions []Restriction
	Bindings     []Binding
	Stability    Stability

	// LocalPath, when non-empty, means this implementation is already
	// present on disk at a fixed location (not store-managed) and has no
	// retrieval methods.
	LocalPath string
	// RetrievalMethods is empty when LocalPath is set.
	RetrievalMethods []RetrievalMethod

	// FromFeed is the feed ID this implementation was declared in,
	// threaded into SelectionCandidate and the final Selections document.
	FromFeed string
}

// IsLocal reports whether the implementation is available without going
// through the store.
func (impl Implementation) IsLocal() bool {
	return impl.LocalPath != ""
}

// HasRetrievalMethod reports whether the implementation could be fetched if
// not already cached.
func (impl Implementation) HasRetrievalMethod() bool {
	return len(impl.RetrievalMethods) > 0
}

// Command looks up a named command, falling back to "run" when name is
// empty, matching 0install's default command convention.
func (impl Implementation) Command(name string) (*Command, bool) {
	if name == "" {
		name = "run"
	}
	c, ok := impl.Commands[name]
	return c, ok
}
