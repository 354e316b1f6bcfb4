// Package scan performs static analysis of a cloned repository. The result
// seeds every section prompt, so the walk collects only facts a model needs
// to describe the server: manifests, build scripts, docs and layout.
package scan

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"mcpforge/internal/safeio"
)

var (
	reImgMD   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reImgHTML = regexp.MustCompile(`(?is)<img[^>]*>`)
)

// skipDirs are VCS and dependency directories never worth indexing.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true,
	"node_modules": true, "vendor": true, "__pycache__": true,
	".venv": true, ".next": true, ".cache": true,
}

// buildDirs are conventional build output directories.
var buildDirs = map[string]bool{"dist": true, "build": true, "out": true, "target": true}

// readmeNames in preference order: a README.md beats a bare README.
var readmeNames = []string{"README.md", "README"}

func readmeRank(base string) (int, bool) {
	for i, name := range readmeNames {
		if strings.EqualFold(base, name) {
			return i, true
		}
	}
	return 0, false
}

const (
	readmeSnippetRunes = 4000
	maxIndexEntries    = 400
	manifestPreview    = 4096
)

// FileEntry is one row of the repository index.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
	Ext  string `json:"ext,omitempty"`
}

// PackageJSON carries the fields of package.json the pipeline cares about.
type PackageJSON struct {
	Name         string            `json:"name"`
	Main         string            `json:"main,omitempty"`
	Scripts      map[string]string `json:"scripts,omitempty"`
	Bin          json.RawMessage   `json:"bin,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Analysis is everything static inspection learned about the repository.
type Analysis struct {
	Root          string       `json:"root"`
	Language      string       `json:"language,omitempty"`
	PackageJSON   *PackageJSON `json:"package_json,omitempty"`
	Requirements  []string     `json:"requirements,omitempty"`
	HasPyproject  bool         `json:"has_pyproject"`
	GoModule      string       `json:"go_module,omitempty"`
	HasDockerfile bool         `json:"has_dockerfile"`
	BuildDirs     []string     `json:"build_dirs,omitempty"`
	ReadmeSnippet string       `json:"readme_snippet,omitempty"`
	Files         []FileEntry  `json:"files"`
}

// Analyze walks the repository under root and extracts build-relevant facts.
func Analyze(root string) (*Analysis, error) {
	sfs, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	a := &Analysis{Root: sfs.Root()}
	bestReadme := len(readmeNames)

	err = sfs.Walk(".", func(rel string, d fs.DirEntry) error {
		base := filepath.Base(rel)
		if d.IsDir() {
			if skipDirs[base] {
				return filepath.SkipDir
			}
			if buildDirs[base] {
				if !strings.Contains(rel, string(filepath.Separator)) {
					a.BuildDirs = append(a.BuildDirs, filepath.ToSlash(rel))
				}
				// Generated output; its contents say nothing about the source.
				return filepath.SkipDir
			}
			return nil
		}
		slash := filepath.ToSlash(rel)
		if len(a.Files) < maxIndexEntries {
			var size int64
			if info, e := d.Info(); e == nil {
				size = info.Size()
			}
			a.Files = append(a.Files, FileEntry{
				Path: slash,
				Size: size,
				Ext:  strings.ToLower(filepath.Ext(slash)),
			})
		}
		switch {
		case slash == "package.json":
			a.PackageJSON = readPackageJSON(sfs, slash)
		case slash == "requirements.txt":
			a.Requirements = readRequirements(sfs, slash)
		case slash == "pyproject.toml":
			a.HasPyproject = true
		case slash == "go.mod":
			a.GoModule = readGoModule(sfs, slash)
		case slash == "Dockerfile":
			a.HasDockerfile = true
		default:
			if r, ok := readmeRank(base); ok && r < bestReadme {
				if s := readReadme(sfs, slash); s != "" {
					a.ReadmeSnippet = s
					bestReadme = r
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(a.Files, func(i, j int) bool { return a.Files[i].Path < a.Files[j].Path })
	sort.Strings(a.BuildDirs)
	a.Language = detectLanguage(a)
	return a, nil
}

func detectLanguage(a *Analysis) string {
	switch {
	case a.PackageJSON != nil:
		for _, f := range a.Files {
			if f.Ext == ".ts" {
				return "typescript"
			}
		}
		return "javascript"
	case a.HasPyproject || len(a.Requirements) > 0:
		return "python"
	case a.GoModule != "":
		return "go"
	}
	// Fall back to the dominant source extension.
	counts := map[string]int{}
	for _, f := range a.Files {
		counts[f.Ext]++
	}
	best, n := "", 0
	for ext, c := range counts {
		if c > n {
			best, n = ext, c
		}
	}
	switch best {
	case ".ts":
		return "typescript"
	case ".js", ".mjs":
		return "javascript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	}
	return ""
}

func readPackageJSON(sfs *safeio.SafeFS, rel string) *PackageJSON {
	raw, err := sfs.ReadFile(rel)
	if err != nil {
		return nil
	}
	var pkg PackageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil
	}
	return &pkg
}

func readRequirements(sfs *safeio.SafeFS, rel string) []string {
	raw, err := sfs.ReadFile(rel)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func readGoModule(sfs *safeio.SafeFS, rel string) string {
	raw, err := sfs.ReadFile(rel)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func readReadme(sfs *safeio.SafeFS, rel string) string {
	raw, err := sfs.ReadFile(rel)
	if err != nil {
		return ""
	}
	txt := string(raw)
	txt = reImgMD.ReplaceAllString(txt, "")
	txt = reImgHTML.ReplaceAllString(txt, "")
	txt = strings.TrimSpace(txt)
	runes := []rune(txt)
	if len(runes) > readmeSnippetRunes {
		runes = runes[:readmeSnippetRunes]
	}
	return string(runes)
}
