package model

import (
	"testing"

	"github.com/zeroinstall-go/zeroinstall/version"
)

func implAt(v string, arch Architecture, stability Stability) Implementation {
	return Implementation{
		InterfaceID:      "http://example.com/app.xml",
		ID:               "sha256new=" + v,
		Version:          version.MustParse(v),
		Architecture:     arch,
		Stability:        stability,
		RetrievalMethods: []RetrievalMethod{{ArchiveURL: "http://example.com/" + v + ".tar.gz"}},
	}
}

func TestSelectionCandidateArchitectureFilter(t *testing.T) {
	ctx := SuitabilityContext{
		Architecture:   Architecture{OS: Linux, CPU: X86_64},
		StabilityFloor: Stable,
		Network:        NetworkFull,
	}
	lowArch := implAt("1.0", Architecture{OS: Windows, CPU: X86_64}, Stable)
	c := NewSelectionCandidate(lowArch, "feed", 0, ctx)
	if c.IsSuitable() {
		t.Error("expected Windows implementation to be unsuitable on a Linux host")
	}
}

func TestSelectionCandidateStabilityFloor(t *testing.T) {
	ctx := SuitabilityContext{
		Architecture:   AnyArchitecture,
		StabilityFloor: Stable,
		Network:        NetworkFull,
	}
	testing1 := implAt("1.0", AnyArchitecture, Testing)
	c := NewSelectionCandidate(testing1, "feed", 0, ctx)
	if c.IsSuitable() {
		t.Error("expected a Testing-rated implementation to fail a Stable floor")
	}

	ctxHelp := ctx
	ctxHelp.StabilityFloor = Testing
	c2 := NewSelectionCandidate(testing1, "feed", 0, ctxHelp)
	if !c2.IsSuitable() {
		t.Error("expected a Testing-rated implementation to pass once the floor is lowered")
	}
}

func TestSelectionCandidateOffline(t *testing.T) {
	ctx := SuitabilityContext{
		Architecture:   AnyArchitecture,
		StabilityFloor: Stable,
		Network:        NetworkOffline,
	}
	uncached := implAt("1.0", AnyArchitecture, Stable)
	c := NewSelectionCandidate(uncached, "feed", 0, ctx)
	if c.IsSuitable() {
		t.Error("expected an uncached, offline-unreachable implementation to be unsuitable")
	}
}

func TestSelectionCandidateOrdering(t *testing.T) {
	ctx := SuitabilityContext{Architecture: AnyArchitecture, StabilityFloor: Stable, Network: NetworkFull}
	v1 := NewSelectionCandidate(implAt("1.0", AnyArchitecture, Stable), "feed", 0, ctx)
	v2 := NewSelectionCandidate(implAt("2.0", AnyArchitecture, Stable), "feed", 0, ctx)

	if !v2.Less(v1) {
		t.Error("expected the higher version to be preferred")
	}
	if v1.Less(v2) {
		t.Error("lower version must not be preferred over higher")
	}
}
