package scan

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders the analysis as prompt-ready text. Sections with nothing to
// say are omitted to keep token usage down.
func (a *Analysis) Format() string {
	var b strings.Builder
	if a.Language != "" {
		fmt.Fprintf(&b, "Detected language: %s\n", a.Language)
	}
	if a.PackageJSON != nil {
		fmt.Fprintf(&b, "package.json name: %s\n", a.PackageJSON.Name)
		if a.PackageJSON.Main != "" {
			fmt.Fprintf(&b, "package.json main: %s\n", a.PackageJSON.Main)
		}
		if len(a.PackageJSON.Scripts) > 0 {
			b.WriteString("npm scripts:\n")
			for _, name := range sortedScriptNames(a.PackageJSON.Scripts) {
				fmt.Fprintf(&b, "  %s: %s\n", name, a.PackageJSON.Scripts[name])
			}
		}
		if len(a.PackageJSON.Dependencies) > 0 {
			deps := make([]string, 0, len(a.PackageJSON.Dependencies))
			for d := range a.PackageJSON.Dependencies {
				deps = append(deps, d)
			}
			sort.Strings(deps)
			fmt.Fprintf(&b, "dependencies: %s\n", strings.Join(deps, ", "))
		}
	}
	if len(a.Requirements) > 0 {
		fmt.Fprintf(&b, "requirements.txt: %s\n", strings.Join(a.Requirements, ", "))
	}
	if a.HasPyproject {
		b.WriteString("pyproject.toml present\n")
	}
	if a.GoModule != "" {
		fmt.Fprintf(&b, "go module: %s\n", a.GoModule)
	}
	if a.HasDockerfile {
		b.WriteString("Dockerfile present\n")
	}
	if len(a.BuildDirs) > 0 {
		fmt.Fprintf(&b, "build output dirs: %s\n", strings.Join(a.BuildDirs, ", "))
	}
	if len(a.Files) > 0 {
		b.WriteString("Files:\n")
		for _, f := range a.Files {
			fmt.Fprintf(&b, "  %s (%d bytes)\n", f.Path, f.Size)
		}
	}
	if a.ReadmeSnippet != "" {
		b.WriteString("README excerpt:\n")
		b.WriteString(a.ReadmeSnippet)
		b.WriteString("\n")
	}
	return b.String()
}

func sortedScriptNames(scripts map[string]string) []string {
	names := make([]string, 0, len(scripts))
	for n := range scripts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
