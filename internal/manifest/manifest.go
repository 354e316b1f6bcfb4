// Package manifest defines the MCP server descriptor and assembles it from
// section outputs. The YAML layout follows the hub registry schema: flat
// metadata keys in camelCase, then config, entrypoint and env blocks.
package manifest

import (
	"fmt"
	"sort"
	"strings"

	"mcpforge/internal/artifact"
)

// Entrypoint is the launch command of the built server.
type Entrypoint struct {
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Build describes how the server image is produced.
type Build struct {
	Command    string `yaml:"command,omitempty" json:"command,omitempty"`
	OutputDir  string `yaml:"outputDir,omitempty" json:"output_dir,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty" json:"dockerfile,omitempty"`
}

// Tool declares one capability the server exposes over MCP. Tools are
// optional in a descriptor; registries fill them in after inspection.
type Tool struct {
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	InputSchema  map[string]any `yaml:"inputSchema,omitempty" json:"input_schema,omitempty"`
	OutputSchema map[string]any `yaml:"outputSchema,omitempty" json:"output_schema,omitempty"`
}

// Manifest is the full descriptor of one MCP server.
type Manifest struct {
	Name            string                          `yaml:"name" json:"name"`
	DisplayName     string                          `yaml:"displayName" json:"display_name"`
	Repository      string                          `yaml:"repository" json:"repository"`
	Branch          string                          `yaml:"branch,omitempty" json:"branch,omitempty"`
	Path            string                          `yaml:"path,omitempty" json:"path,omitempty"`
	Description     string                          `yaml:"description" json:"description"`
	LongDescription string                          `yaml:"longDescription,omitempty" json:"long_description,omitempty"`
	SiteURL         string                          `yaml:"siteUrl,omitempty" json:"site_url,omitempty"`
	Version         string                          `yaml:"version,omitempty" json:"version,omitempty"`
	Language        string                          `yaml:"language" json:"language"`
	PackageManager  string                          `yaml:"packageManager,omitempty" json:"package_manager,omitempty"`
	InstallCommand  string                          `yaml:"installCommand,omitempty" json:"install_command,omitempty"`
	Icon            string                          `yaml:"icon,omitempty" json:"icon,omitempty"`
	Categories      []string                        `yaml:"categories,omitempty" json:"categories,omitempty"`
	Tags            []string                        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Tools           []Tool                          `yaml:"tools,omitempty" json:"tools,omitempty"`
	Build           *Build                          `yaml:"build,omitempty" json:"build,omitempty"`
	Config          map[string]artifact.ConfigField `yaml:"config,omitempty" json:"config,omitempty"`
	Entrypoint      Entrypoint                      `yaml:"entrypoint" json:"entrypoint"`
	Env             map[string]string               `yaml:"env,omitempty" json:"env,omitempty"`
}

// Sections bundles the per-section outputs a run produced.
type Sections struct {
	Repo       string
	Branch     string
	Path       string
	Metadata   artifact.MetadataOut
	Source     artifact.SourceOut
	Build      artifact.BuildOut
	Config     artifact.ConfigOut
	Entrypoint artifact.EntrypointOut
	Env        artifact.EnvOut
}

// sampleKeys are placeholder field names from prompt examples. Models copy
// them verbatim often enough that they are dropped unconditionally.
var sampleKeys = map[string]bool{
	"nameArgsSecret1":    true,
	"nameArgs2":          true,
	"name_args_secret_1": true,
	"name_args_2":        true,
	"EXAMPLE_FIELD":      true,
}

// Assemble merges section outputs into a validated descriptor.
func Assemble(s Sections) (*Manifest, error) {
	m := &Manifest{
		Name:            s.Metadata.Name,
		DisplayName:     s.Metadata.DisplayName,
		Repository:      s.Repo,
		Branch:          s.Branch,
		Path:            s.Path,
		Description:     s.Metadata.Description,
		LongDescription: s.Metadata.LongDescription,
		SiteURL:         s.Metadata.SiteURL,
		Version:         s.Metadata.Version,
		Language:        s.Source.Language,
		PackageManager:  s.Source.PackageManager,
		InstallCommand:  s.Source.InstallCommand,
		Icon:            s.Metadata.Icon,
		Categories:      s.Metadata.Categories,
		Tags:            s.Metadata.Tags,
		Entrypoint: Entrypoint{
			Command: s.Entrypoint.Command,
			Args:    s.Entrypoint.Args,
		},
	}
	if s.Build.BuildCommand != "" || s.Build.Dockerfile != "" {
		m.Build = &Build{
			Command:    s.Build.BuildCommand,
			OutputDir:  s.Build.OutputDir,
			Dockerfile: s.Build.Dockerfile,
		}
	}
	if len(s.Config.Config) > 0 {
		m.Config = make(map[string]artifact.ConfigField, len(s.Config.Config))
		for name, f := range s.Config.Config {
			if sampleKeys[name] {
				continue
			}
			m.Config[name] = f
		}
		if len(m.Config) == 0 {
			m.Config = nil
		}
	}
	if len(s.Env.Env) > 0 {
		m.Env = make(map[string]string, len(s.Env.Env))
		taken := configEnvNames(m.Config)
		for k, v := range s.Env.Env {
			// Fixed env must not shadow a user-facing config field.
			if taken[k] {
				continue
			}
			m.Env[k] = v
		}
		if len(m.Env) == 0 {
			m.Env = nil
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the invariants every published descriptor must hold.
func (m *Manifest) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		problems = append(problems, "displayName is required")
	}
	if strings.TrimSpace(m.Repository) == "" {
		problems = append(problems, "repository is required")
	}
	if strings.TrimSpace(m.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(m.Entrypoint.Command) == "" {
		problems = append(problems, "entrypoint command is required")
	}
	for _, name := range sortedKeys(m.Config) {
		f := m.Config[name]
		if f.Env == "" && f.Arg == "" {
			problems = append(problems, fmt.Sprintf("config field %q needs an env or arg binding", name))
		}
		switch f.Type {
		case "", "string", "number", "boolean":
		default:
			problems = append(problems, fmt.Sprintf("config field %q has unknown type %q", name, f.Type))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid descriptor: %s", strings.Join(problems, "; "))
	}
	return nil
}

func configEnvNames(cfg map[string]artifact.ConfigField) map[string]bool {
	out := make(map[string]bool, len(cfg))
	for _, f := range cfg {
		if f.Env != "" {
			out[f.Env] = true
		}
	}
	return out
}

func sortedKeys(cfg map[string]artifact.ConfigField) []string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
