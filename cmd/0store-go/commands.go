package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/zeroinstall-go/zeroinstall/manifest"
	"github.com/zeroinstall-go/zeroinstall/observer"
	"github.com/zeroinstall-go/zeroinstall/store"
)

func parseDigestArg(s string) (manifest.ManifestDigest, error) {
	algo, hex, err := manifest.ParseDigestID(s)
	if err != nil {
		return nil, err
	}
	return manifest.ManifestDigest{algo: hex}, nil
}

type addCommand struct{}

func (addCommand) Name() string      { return "add" }
func (addCommand) Args() string      { return "<digest> <source-dir>" }
func (addCommand) ShortHelp() string { return "add a directory to the store under the given digest" }
func (addCommand) Register(*flag.FlagSet) {}

func (addCommand) Run(st store.Store, obs observer.Observer, stdout io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("add: expected <digest> <source-dir>")
	}
	digest, err := parseDigestArg(args[0])
	if err != nil {
		return err
	}
	return st.AddDirectory(args[1], digest, obs)
}

type containsCommand struct{}

func (containsCommand) Name() string      { return "contains" }
func (containsCommand) Args() string      { return "<digest>" }
func (containsCommand) ShortHelp() string { return "report whether the store has an entry for digest" }
func (containsCommand) Register(*flag.FlagSet) {}

func (containsCommand) Run(st store.Store, _ observer.Observer, stdout io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("contains: expected <digest>")
	}
	digest, err := parseDigestArg(args[0])
	if err != nil {
		return err
	}
	if st.Contains(digest) {
		fmt.Fprintln(stdout, "yes")
		return nil
	}
	fmt.Fprintln(stdout, "no")
	return fmt.Errorf("not in store")
}

type getCommand struct{}

func (getCommand) Name() string      { return "get" }
func (getCommand) Args() string      { return "<digest>" }
func (getCommand) ShortHelp() string { return "print the path of the entry for digest" }
func (getCommand) Register(*flag.FlagSet) {}

func (getCommand) Run(st store.Store, _ observer.Observer, stdout io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("get: expected <digest>")
	}
	digest, err := parseDigestArg(args[0])
	if err != nil {
		return err
	}
	path, err := st.GetPath(digest)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

type listCommand struct{}

func (listCommand) Name() string      { return "list" }
func (listCommand) Args() string      { return "" }
func (listCommand) ShortHelp() string { return "list every digest the store has an entry for" }
func (listCommand) Register(*flag.FlagSet) {}

func (listCommand) Run(st store.Store, _ observer.Observer, stdout io.Writer, _ []string) error {
	all, err := st.ListAll()
	if err != nil {
		return err
	}
	for _, d := range all {
		name, err := d.DirName()
		if err != nil {
			continue
		}
		fmt.Fprintln(stdout, name)
	}
	return nil
}

type removeCommand struct{}

func (removeCommand) Name() string      { return "remove" }
func (removeCommand) Args() string      { return "<digest>" }
func (removeCommand) ShortHelp() string { return "remove the entry for digest" }
func (removeCommand) Register(*flag.FlagSet) {}

func (removeCommand) Run(st store.Store, _ observer.Observer, _ io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("remove: expected <digest>")
	}
	digest, err := parseDigestArg(args[0])
	if err != nil {
		return err
	}
	return st.Remove(digest)
}

type optimiseCommand struct{}

func (optimiseCommand) Name() string      { return "optimise" }
func (optimiseCommand) Args() string      { return "" }
func (optimiseCommand) ShortHelp() string { return "hardlink-deduplicate identical files across entries" }
func (optimiseCommand) Register(*flag.FlagSet) {}

func (optimiseCommand) Run(st store.Store, _ observer.Observer, stdout io.Writer, _ []string) error {
	reclaimed, err := st.Optimise()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "reclaimed %d bytes\n", reclaimed)
	return nil
}

type verifyCommand struct{}

func (verifyCommand) Name() string      { return "verify" }
func (verifyCommand) Args() string      { return "<digest>" }
func (verifyCommand) ShortHelp() string { return "re-manifest an entry and confirm it matches its digest" }
func (verifyCommand) Register(*flag.FlagSet) {}

func (verifyCommand) Run(st store.Store, obs observer.Observer, _ io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("verify: expected <digest>")
	}
	digest, err := parseDigestArg(args[0])
	if err != nil {
		return err
	}
	return st.Verify(digest, obs)
}
