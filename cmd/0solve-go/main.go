// Command 0solve-go loads a local feed tree, builds a Requirements from
// flags, runs the solver, and prints the resulting Selections as canonical
// XML to stdout (SPEC_FULL.md §4.K). Flag handling follows golang/dep's
// cmd/dep convention of a single flat flag.FlagSet per invocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zeroinstall-go/zeroinstall/feed"
	"github.com/zeroinstall-go/zeroinstall/model"
	"github.com/zeroinstall-go/zeroinstall/observer"
	"github.com/zeroinstall-go/zeroinstall/solver"
	"github.com/zeroinstall-go/zeroinstall/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("0solve-go", flag.ContinueOnError)
	fs.SetOutput(stderr)
	command := fs.String("command", "run", "command name to select within each implementation")
	osName := fs.String("os", "", "restrict to this OS family (default: any)")
	cpuName := fs.String("cpu", "", "restrict to this CPU family (default: any)")
	langs := fs.String("langs", "", "comma-separated preferred languages, most preferred first")
	network := fs.String("network", "full", "network use: full, minimal, or offline")
	stabilityFloor := fs.String("stability", "stable", "minimum candidate stability: insecure, buggy, developer, testing, stable, preferred")
	storeRoot := fs.String("store", defaultStoreRoot(), "implementation store root directory")
	verbose := fs.Bool("v", false, "enable verbose tracing")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: 0solve-go [flags] <feed-path>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	feedPath := fs.Arg(0)

	log := logrus.New()
	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(logrus.TraceLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	obs := observer.NewLogrus(log, logrus.Fields{"component": "0solve-go"})

	provider := feed.NewLocalProvider(filepath.Dir(feedPath))
	prefs := model.NewMemoryPreferencesStore()
	enumerator := feed.NewEnumerator(provider, prefs)

	st, err := store.NewLocalStore(*storeRoot)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	nu, err := parseNetworkUse(*network)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	req := model.Requirements{
		InterfaceID:  filepath.Base(feedPath),
		Command:      *command,
		Architecture: model.Architecture{OS: model.OS(*osName), CPU: model.CPU(*cpuName)},
	}
	if *langs != "" {
		req.Languages = strings.Split(*langs, ",")
	}

	base := model.SuitabilityContext{
		StabilityFloor: model.ParseStability(*stabilityFloor),
		Network:        nu,
	}

	s := solver.New(enumerator, st, obs)
	sel, err := s.Solve(context.Background(), req, base)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	out, err := sel.MarshalXML()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func parseNetworkUse(s string) (model.NetworkUse, error) {
	switch s {
	case "full":
		return model.NetworkFull, nil
	case "minimal":
		return model.NetworkMinimal, nil
	case "offline":
		return model.NetworkOffline, nil
	default:
		return 0, fmt.Errorf("invalid -network %q: want full, minimal, or offline", s)
	}
}

func defaultStoreRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "0install.net", "implementations")
	}
	return filepath.Join(".", ".0install-cache")
}
