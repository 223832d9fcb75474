// Package selections models a finalized solve result (spec §4.G): one
// chosen implementation per interface, the command chain invoked to run
// it, and a canonical XML serialization for external consumers. The shape
// mirrors golang/dep's own Lock (lock.go): a small raw/wire struct pair
// plus From/To conversion, except rendered as 0install's native XML rather
// than dep's JSON, since the selections document is itself part of the
// external 0install wire format.
package selections

import (
	"encoding/xml"
	"reflect"

	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/model"
	"github.com/zeroinstall-go/zeroinstall/version"
)

// ImplementationSelection is one interface's chosen implementation, carrying
// everything a launcher needs without re-consulting the feed (spec §4.G).
type ImplementationSelection struct {
	InterfaceID  string
	ID           string
	Version      version.Version
	Digest       manifest.ManifestDigest
	Architecture model.Architecture
	LocalPath    string
	FromFeed     string
	Bindings     []model.Binding
	Dependencies []model.Dependency
	Commands     map[string]*model.Command
}

// Selections is the solver's output: the root interface/command requested,
// the command chain actually invoked (root, then each runner in turn), and
// every interface's chosen implementation, keyed by interface ID.
type Selections struct {
	InterfaceID string
	CommandName string

	// Commands is the root-to-leaf chain of interface IDs a launcher walks
	// to build the process invocation: Commands[0] is InterfaceID, each
	// subsequent entry is the previous command's runner.
	Commands []string

	Implementations map[string]ImplementationSelection

	// Order is the sequence interfaces were appended in during solving:
	// root first, then depth-first through dependencies and runners (spec
	// §5 "Ordering guarantees"). Two Selections with the same
	// Implementations but different Order are not Equal, since the
	// solver's determinism property covers this order too.
	Order []string
}

// Get returns the selection for interfaceID, if any.
func (s Selections) Get(interfaceID string) (ImplementationSelection, bool) {
	impl, ok := s.Implementations[interfaceID]
	return impl, ok
}

// Equal reports whether s and other are structurally identical (spec §4.G:
// "equality of two Selections is structural").
func (s Selections) Equal(other Selections) bool {
	return reflect.DeepEqual(s, other)
}

// --- canonical XML rendering ---

type selectionsXML struct {
	XMLName xml.Name          `xml:"selections"`
	Interface string          `xml:"interface,attr"`
	Command   string          `xml:"command,attr,omitempty"`
	Selection []selectionXML  `xml:"selection"`
}

type selectionXML struct {
	Interface    string          `xml:"interface,attr"`
	ID           string          `xml:"id,attr"`
	Version      string          `xml:"version,attr,omitempty"`
	ArchOS       string          `xml:"os,attr,omitempty"`
	ArchCPU      string          `xml:"machine,attr,omitempty"`
	LocalPath    string          `xml:"local-path,attr,omitempty"`
	FromFeed     string          `xml:"from-feed,attr,omitempty"`
	ManifestSHA1 string          `xml:"sha1new,attr,omitempty"`
	ManifestSHA256 string        `xml:"sha256,attr,omitempty"`
	ManifestSHA256New string     `xml:"sha256new,attr,omitempty"`
	Dependency   []dependencyXML `xml:"requires,omitempty"`
}

type dependencyXML struct {
	Interface string `xml:"interface,attr"`
	Versions  string `xml:"version,attr,omitempty"`
	Command   string `xml:"command,attr,omitempty"`
}

// MarshalXML renders s in document order (spec §5's ordering guarantee
// applies to this render too): root first, then Order's remaining entries.
func (s Selections) MarshalXML() ([]byte, error) {
	doc := selectionsXML{
		Interface: s.InterfaceID,
		Command:   s.CommandName,
	}
	for _, id := range s.Order {
		impl, ok := s.Implementations[id]
		if !ok {
			continue
		}
		sx := selectionXML{
			Interface:      impl.InterfaceID,
			ID:             impl.ID,
			LocalPath:      impl.LocalPath,
			FromFeed:       impl.FromFeed,
			ArchOS:         string(impl.Architecture.OS),
			ArchCPU:        string(impl.Architecture.CPU),
			ManifestSHA1:   impl.Digest[manifest.SHA1New],
			ManifestSHA256: impl.Digest[manifest.SHA256],
			ManifestSHA256New: impl.Digest[manifest.SHA256New],
		}
		if !impl.Version.IsZero() {
			sx.Version = impl.Version.String()
		}
		for _, dep := range impl.Dependencies {
			sx.Dependency = append(sx.Dependency, dependencyXML{
				Interface: dep.InterfaceID,
				Versions:  dep.Versions.String(),
				Command:   dep.Command,
			})
		}
		doc.Selection = append(doc.Selection, sx)
	}
	return xml.MarshalIndent(doc, "", "  ")
}
