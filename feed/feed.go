// Package feed models a loaded feed document (an XML tree of nested
// <group>/<implementation> elements) and flattens it into the
// model.Implementation values the solver and candidate enumerator consume
// (spec §4.E, §9 "deep inheritance... replaced with tagged variants").
package feed

import (
	"encoding/xml"

	"github.com/zeroinstall-go/zeroinstall/manifest"
)

// Feed is one parsed feed document: the ID it was retrieved under, the
// interface it provides implementations for, and its root group of
// elements, before Simplify folds groups into their leaves.
type Feed struct {
	ID         string
	Interface  string
	RootGroup  Group
}

// attrsXML are the attributes a <group> or <implementation> element may
// carry and that are inherited by descendants unless overridden (spec
// §4.E step 2). License is parsed but neither inherited nor carried into
// model.Implementation.
type attrsXML struct {
	Arch      string `xml:"arch,attr,omitempty"`
	Stability string `xml:"stability,attr,omitempty"`
	License   string `xml:"license,attr,omitempty"`
	Langs     string `xml:"langs,attr,omitempty"`

	Requires []dependencyXML `xml:"requires"`
	Runner   *runnerXML      `xml:"runner"`
}

type dependencyXML struct {
	Interface  string `xml:"interface,attr"`
	NotBefore  string `xml:"version,attr,omitempty"`
	Before     string `xml:"before,attr,omitempty"`
	Importance string `xml:"importance,attr,omitempty"`
	Command    string `xml:"command,attr,omitempty"`
}

type runnerXML struct {
	Interface string `xml:"interface,attr"`
	Command   string `xml:"command,attr,omitempty"`
	Arg       []string `xml:"arg"`
}

type commandXML struct {
	Name   string          `xml:"name,attr"`
	Path   string          `xml:"path,attr"`
	Runner *runnerXML      `xml:"runner"`
	Requires []dependencyXML `xml:"requires"`
}

type manifestDigestXML struct {
	SHA1New   string `xml:"sha1new,attr,omitempty"`
	SHA256    string `xml:"sha256,attr,omitempty"`
	SHA256New string `xml:"sha256new,attr,omitempty"`
}

// implementationXML is a leaf <implementation> element.
type implementationXML struct {
	attrsXML
	ID             string            `xml:"id,attr"`
	Version        string            `xml:"version,attr"`
	MainPath       string            `xml:"main,attr,omitempty"`
	LocalPath      string            `xml:"local-path,attr,omitempty"`
	ManifestDigest manifestDigestXML `xml:"manifest-digest"`
	Commands       []commandXML      `xml:"command"`
	Archives       []archiveXML      `xml:"archive"`
}

type archiveXML struct {
	Href        string `xml:"href,attr"`
	Type        string `xml:"type,attr,omitempty"`
	StartOffset int64  `xml:"start-offset,attr,omitempty"`
	Size        int64  `xml:"size,attr,omitempty"`
	Extract     string `xml:"extract,attr,omitempty"`
}

// groupXML is a <group> element: it carries inheritable attrsXML plus
// nested groups and implementations in document order.
type groupXML struct {
	attrsXML
	Groups          []groupXML          `xml:"group"`
	Implementations []implementationXML `xml:"implementation"`
}

// interfaceXML is the document root.
type interfaceXML struct {
	XMLName xml.Name `xml:"interface"`
	URI     string   `xml:"uri,attr,omitempty"`
	groupXML
}

// Group is the decoded form of groupXML kept around after parsing, used
// as the root of the tree Simplify walks.
type Group = groupXML

// Parse decodes a feed document. feedID is the identifier the feed was
// retrieved under (an absolute URL or local path), used as Implementation's
// FromFeed.
func Parse(feedID string, data []byte) (*Feed, error) {
	var doc interfaceXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	iface := doc.URI
	if iface == "" {
		iface = feedID
	}
	return &Feed{ID: feedID, Interface: iface, RootGroup: doc.groupXML}, nil
}

// digestFromXML converts the XML manifest-digest attributes into a
// manifest.ManifestDigest, skipping algorithms the element did not set.
func digestFromXML(d manifestDigestXML) manifest.ManifestDigest {
	md := make(manifest.ManifestDigest)
	if d.SHA1New != "" {
		md[manifest.SHA1New] = d.SHA1New
	}
	if d.SHA256 != "" {
		md[manifest.SHA256] = d.SHA256
	}
	if d.SHA256New != "" {
		md[manifest.SHA256New] = d.SHA256New
	}
	return md
}
