package model

import "testing"

func TestOSCompatibility(t *testing.T) {
	cases := []struct {
		candidate, host OS
		want            bool
	}{
		{Linux, Linux, true},
		{POSIX, Linux, true},
		{POSIX, Windows, false},
		{Linux, POSIX, false},
		{AnyOS, Windows, true},
		{Windows, AnyOS, true},
		{Windows, Linux, false},
	}
	for _, c := range cases {
		if got := osCompatible(c.candidate, c.host); got != c.want {
			t.Errorf("osCompatible(%s, %s) = %v, want %v", c.candidate, c.host, got, c.want)
		}
	}
}

func TestCPUCompatibility(t *testing.T) {
	cases := []struct {
		candidate, host CPU
		want            bool
	}{
		{I386, X86_64, true},
		{X86_64, I386, false},
		{I686, X86_64, true},
		{PPC, PPC64, true},
		{PPC64, PPC, false},
		{Src, I386, true},
		{AnyCPU, PPC, true},
		{I386, PPC, false},
	}
	for _, c := range cases {
		if got := cpuCompatible(c.candidate, c.host); got != c.want {
			t.Errorf("cpuCompatible(%s, %s) = %v, want %v", c.candidate, c.host, got, c.want)
		}
	}
}

func TestArchitectureCompatibleWith(t *testing.T) {
	a := Architecture{OS: Linux, CPU: I386}
	host := Architecture{OS: Linux, CPU: X86_64}
	if !a.CompatibleWith(host) {
		t.Error("expected i386/Linux implementation to run on x86_64/Linux host")
	}

	b := Architecture{OS: Linux, CPU: X86_64}
	if b.CompatibleWith(Architecture{OS: Linux, CPU: I386}) {
		t.Error("did not expect x86_64 implementation to run on i386 host")
	}
}
