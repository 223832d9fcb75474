package feed

import (
	"strings"

	"github.com/zeroinstall-go/zeroinstall/model"
	"github.com/zeroinstall-go/zeroinstall/version"
)

// inherited is the accumulated state attrsXML values carry down a group
// chain: scalars override, Requires accumulates (spec §4.E step 2: "each
// group propagates its attributes... descendants override").
type inherited struct {
	arch      model.Architecture
	stability model.Stability
	languages []string
	requires  []dependencyXML
	runner    *runnerXML
}

func (in inherited) extend(a attrsXML) inherited {
	out := in
	if a.Arch != "" {
		out.arch = parseArch(a.Arch)
	}
	if a.Stability != "" {
		out.stability = model.ParseStability(a.Stability)
	}
	if a.Langs != "" {
		out.languages = strings.Fields(a.Langs)
	}
	if len(a.Requires) > 0 {
		out.requires = append(append([]dependencyXML{}, in.requires...), a.Requires...)
	}
	if a.Runner != nil {
		out.runner = a.Runner
	}
	return out
}

// Simplify flattens f's group tree into a flat slice of model.Implementation,
// folding each ancestor group's attributes into its leaf implementations
// (spec §4.E step 2, §9 "Simplify yields a flat list").
func (f *Feed) Simplify() []model.Implementation {
	base := inherited{arch: model.AnyArchitecture, stability: model.Stable}
	var out []model.Implementation
	walkGroup(f.ID, f.Interface, f.RootGroup, base, &out)
	return out
}

func walkGroup(feedID, interfaceID string, g groupXML, in inherited, out *[]model.Implementation) {
	in = in.extend(g.attrsXML)

	for _, impl := range g.Implementations {
		*out = append(*out, buildImplementation(feedID, interfaceID, impl, in))
	}
	for _, sub := range g.Groups {
		walkGroup(feedID, interfaceID, sub, in, out)
	}
}

func buildImplementation(feedID, interfaceID string, x implementationXML, in inherited) model.Implementation {
	in = in.extend(x.attrsXML)

	v, err := version.Parse(x.Version)
	if err != nil {
		v = version.Version{}
	}

	impl := model.Implementation{
		InterfaceID:  interfaceID,
		ID:           x.ID,
		Version:      v,
		Digest:       digestFromXML(x.ManifestDigest),
		Architecture: in.arch,
		Languages:    in.languages,
		MainPath:     x.MainPath,
		Stability:    in.stability,
		LocalPath:    x.LocalPath,
		FromFeed:     feedID,
	}

	for _, dep := range in.requires {
		impl.Dependencies = append(impl.Dependencies, buildDependency(dep))
		impl.Restrictions = append(impl.Restrictions, buildDependency(dep).AsRestriction())
	}
	if in.runner != nil {
		impl.Dependencies = append(impl.Dependencies, model.Dependency{
			InterfaceID: in.runner.Interface,
			Versions:    version.Any(),
			Command:     firstNonEmpty(in.runner.Command, "run"),
		})
	}

	if len(x.Commands) > 0 {
		impl.Commands = make(map[string]*model.Command, len(x.Commands))
		for _, c := range x.Commands {
			cmd := &model.Command{Name: c.Name, Path: c.Path}
			if c.Runner != nil {
				cmd.Runner = &model.Runner{
					InterfaceID: c.Runner.Interface,
					Versions:    version.Any(),
					Command:     firstNonEmpty(c.Runner.Command, "run"),
					Arguments:   c.Runner.Arg,
				}
			}
			for _, dep := range c.Requires {
				cmd.Dependencies = append(cmd.Dependencies, buildDependency(dep))
			}
			impl.Commands[c.Name] = cmd
		}
	} else if x.MainPath != "" {
		impl.Commands = map[string]*model.Command{"run": {Name: "run", Path: x.MainPath}}
	}

	for _, a := range x.Archives {
		impl.RetrievalMethods = append(impl.RetrievalMethods, model.RetrievalMethod{
			ArchiveURL:  a.Href,
			MIMEType:    a.Type,
			StartOffset: a.StartOffset,
			Size:        a.Size,
			Extract:     a.Extract,
		})
	}

	return impl
}

func buildDependency(d dependencyXML) model.Dependency {
	rng := version.Any()
	if d.NotBefore != "" || d.Before != "" {
		lo, hi := version.Version{}, version.Version{}
		if d.NotBefore != "" {
			if v, err := version.Parse(d.NotBefore); err == nil {
				lo = v
			}
		}
		if d.Before != "" {
			if v, err := version.Parse(d.Before); err == nil {
				hi = v
			}
		}
		rng = version.NewConstraint(lo, hi)
	}
	importance := model.Essential
	if d.Importance == "recommended" {
		importance = model.Recommended
	}
	return model.Dependency{
		InterfaceID: d.Interface,
		Versions:    rng,
		Importance:  importance,
		Command:     d.Command,
	}
}

func parseArch(s string) model.Architecture {
	parts := strings.SplitN(s, "-", 2)
	os, cpu := model.AnyOS, model.AnyCPU
	if len(parts) == 2 {
		if parts[0] != "*" {
			os = model.OS(parts[0])
		}
		if parts[1] != "*" {
			cpu = model.CPU(parts[1])
		}
	}
	return model.Architecture{OS: os, CPU: cpu}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
