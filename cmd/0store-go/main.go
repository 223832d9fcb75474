// Command 0store-go manages a local Zero Install implementation store,
// exposing Store's add/contains/get/list/remove/optimise/verify surface as
// subcommands. Dispatch follows golang/dep's cmd/dep/main.go: a small
// `command` interface, one flag.FlagSet per invocation, and a flat slice of
// registered commands walked for a name match.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/zeroinstall-go/zeroinstall/observer"
	"github.com/zeroinstall-go/zeroinstall/store"
)

type command interface {
	Name() string
	Args() string
	ShortHelp() string
	Register(*flag.FlagSet)
	Run(st store.Store, obs observer.Observer, stdout io.Writer, args []string) error
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	commands := []command{
		&addCommand{},
		&containsCommand{},
		&getCommand{},
		&listCommand{},
		&removeCommand{},
		&optimiseCommand{},
		&verifyCommand{},
	}

	top := flag.NewFlagSet("0store-go", flag.ContinueOnError)
	top.SetOutput(stderr)
	root := top.String("root", defaultRoot(), "store root directory")
	verbose := top.Bool("v", false, "enable verbose tracing")

	usage := func() {
		fmt.Fprintln(stderr, "Usage: 0store-go <command> [-root dir] [-v] [args]")
		fmt.Fprintln(stderr, "\nCommands:")
		w := tabwriter.NewWriter(stderr, 0, 4, 2, ' ', 0)
		for _, c := range commands {
			fmt.Fprintf(w, "  %s\t%s\n", c.Name(), c.ShortHelp())
		}
		w.Flush()
	}

	if len(argv) < 2 {
		usage()
		return 1
	}

	// The command name comes before any top-level flags can be parsed, so
	// split it out of argv first (mirrors dep's parseArgs).
	name := argv[1]
	var cmd command
	for _, c := range commands {
		if c.Name() == name {
			cmd = c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "0store-go: %s: no such command\n\n", name)
		usage()
		return 1
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	rootFlag := fs.String("root", defaultRoot(), "store root directory")
	verboseFlag := fs.Bool("v", false, "enable verbose tracing")
	cmd.Register(fs)
	if err := fs.Parse(argv[2:]); err != nil {
		return 1
	}
	*root, *verbose = *rootFlag, *verboseFlag

	st, err := store.NewLocalStore(*root)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(logrus.TraceLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	obs := observer.NewLogrus(log, logrus.Fields{"component": "0store-go"})

	if err := cmd.Run(st, obs, stdout, fs.Args()); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func defaultRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "0install.net", "implementations")
	}
	return filepath.Join(".", ".0install-cache")
}
