// Package model holds the shared data types that flow between candidate
// enumeration, the solver, and the selections document: requirements,
// restrictions, architectures, implementations, and user preferences.
package model

// OS identifies an operating system family an implementation targets, or
// the wildcard/generic values Any and POSIX.
type OS string

const (
	Windows OS = "Windows"
	Linux   OS = "Linux"
	MacOSX  OS = "MacOSX"
	Solaris OS = "Solaris"
	POSIX   OS = "POSIX"
	AnyOS   OS = "*"
)

// CPU identifies a processor architecture an implementation targets, or the
// wildcard values Any and Src (source, runs on anything with a toolchain).
type CPU string

const (
	I386   CPU = "i386"
	I486   CPU = "i486"
	I586   CPU = "i586"
	I686   CPU = "i686"
	X86_64 CPU = "x86_64"
	PPC    CPU = "ppc"
	PPC64  CPU = "ppc64"
	Src    CPU = "src"
	AnyCPU CPU = "*"
)

// Architecture is a (os, cpu) pair, either declared by an implementation or
// required by a host.
type Architecture struct {
	OS  OS
	CPU CPU
}

// posixFamily lists the OS values considered members of the generic POSIX
// family: an implementation declaring POSIX is compatible with any of them.
var posixFamily = map[OS]bool{
	Linux:   true,
	MacOSX:  true,
	Solaris: true,
	POSIX:   true,
}

// x86Family and ppcFamily are ordered weakest-to-strongest; a candidate
// compiled for an earlier (narrower) member runs unmodified on a host
// declaring a later (wider) member, e.g. i386 code runs on an x86_64 host.
var x86Family = []CPU{I386, I486, I586, I686, X86_64}
var ppcFamily = []CPU{PPC, PPC64}

func indexOf(family []CPU, c CPU) int {
	for i, f := range family {
		if f == c {
			return i
		}
	}
	return -1
}

// CompatibleWith reports whether an implementation declaring arch a can run
// on a host whose requirement is host. Per spec §3: the candidate's OS must
// be in the transitive subset of the host's OS (POSIX ⊇ Linux, MacOSX,
// Solaris), and the candidate's CPU must be binary-upward-compatible with
// the host's CPU (i386 code runs on an x86_64 host, not the reverse).
func (a Architecture) CompatibleWith(host Architecture) bool {
	return osCompatible(a.OS, host.OS) && cpuCompatible(a.CPU, host.CPU)
}

func osCompatible(candidate, host OS) bool {
	switch {
	case candidate == AnyOS || host == AnyOS:
		return true
	case candidate == host:
		return true
	case candidate == POSIX:
		return posixFamily[host]
	default:
		return false
	}
}

func cpuCompatible(candidate, host CPU) bool {
	switch {
	case candidate == AnyCPU || host == AnyCPU:
		return true
	case candidate == Src:
		return true
	case candidate == host:
		return true
	}

	for _, family := range [][]CPU{x86Family, ppcFamily} {
		ci, hi := indexOf(family, candidate), indexOf(family, host)
		if ci >= 0 && hi >= 0 {
			return ci <= hi
		}
	}
	return false
}

// String renders the architecture as 0install's "os-cpu" form.
func (a Architecture) String() string {
	os, cpu := string(a.OS), string(a.CPU)
	if os == "" {
		os = string(AnyOS)
	}
	if cpu == "" {
		cpu = string(AnyCPU)
	}
	return os + "-" + cpu
}

// AnyArchitecture matches any host, and is what an implementation with no
// declared arch attribute means.
var AnyArchitecture = Architecture{OS: AnyOS, CPU: AnyCPU}
