// Package artifact defines the typed inputs and outputs of each descriptor
// section, plus stores for persisting them between runs. Sections are the
// unit of LLM work: each one receives the repository analysis and the outputs
// of the sections it depends on, and produces one fragment of the final
// descriptor.
package artifact

// ConfigField describes a single user-facing configuration entry of an MCP
// server. A field may surface as an environment variable, a command-line
// argument, or both.
type ConfigField struct {
	Type     string `json:"type" yaml:"type"` // string|number|boolean
	Required bool   `json:"required" yaml:"required"`
	Secret   bool   `json:"secret,omitempty" yaml:"secret,omitempty"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
	Example  string `json:"example,omitempty" yaml:"example,omitempty"`
	Env      string `json:"env,omitempty" yaml:"env,omitempty"`
	Arg      string `json:"arg,omitempty" yaml:"arg,omitempty"`
}

// MetadataIn carries the repository identity and the formatted analysis text.
type MetadataIn struct {
	Repo     string `json:"repo"`
	Branch   string `json:"branch,omitempty"`
	Analysis string `json:"analysis"`
}

// MetadataOut is the naming and discovery fragment of the descriptor.
type MetadataOut struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description,omitempty"`
	SiteURL         string   `json:"site_url,omitempty"`
	Icon            string   `json:"icon,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Version         string   `json:"version,omitempty"`
}

type SourceIn struct {
	Repo     string `json:"repo"`
	Analysis string `json:"analysis"`
}

// SourceOut identifies the language toolchain and how dependencies are
// installed.
type SourceOut struct {
	Language       string `json:"language"`        // typescript|javascript|python|go
	PackageManager string `json:"package_manager"` // npm|yarn|pnpm|pip|uv|go
	ProjectDir     string `json:"project_dir"`     // relative dir holding the server package
	InstallCommand string `json:"install_command"`
}

type BuildIn struct {
	Repo     string     `json:"repo"`
	Analysis string     `json:"analysis"`
	Source   *SourceOut `json:"source,omitempty"`
}

// BuildOut describes how the server is compiled, if at all. Interpreted
// servers leave BuildCommand empty.
type BuildOut struct {
	BuildCommand string `json:"build_command,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
	Dockerfile   string `json:"dockerfile,omitempty"`
}

type ConfigIn struct {
	Repo     string `json:"repo"`
	Analysis string `json:"analysis"`
}

// ConfigOut lists the user-facing configuration fields keyed by field name.
type ConfigOut struct {
	Config map[string]ConfigField `json:"config"`
}

// EntrypointIn depends on the config section: argument-style fields shape the
// launch command.
type EntrypointIn struct {
	Repo     string                 `json:"repo"`
	Analysis string                 `json:"analysis"`
	Config   map[string]ConfigField `json:"config,omitempty"`
	Source   *SourceOut             `json:"source,omitempty"`
	Build    *BuildOut              `json:"build,omitempty"`
}

// EntrypointOut is the launch command of the built server.
type EntrypointOut struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// EnvIn depends on both the config section and the entrypoint: fixed runtime
// variables must not shadow user-provided config fields.
type EnvIn struct {
	Repo       string                 `json:"repo"`
	Analysis   string                 `json:"analysis"`
	Config     map[string]ConfigField `json:"config,omitempty"`
	Entrypoint *EntrypointOut         `json:"entrypoint,omitempty"`
}

// EnvOut holds fixed environment variables the server always needs.
type EnvOut struct {
	Env map[string]string `json:"env"`
}

// FixIn carries a failing descriptor and the oracle's error output back to
// the model.
type FixIn struct {
	Repo      string `json:"repo"`
	Analysis  string `json:"analysis"`
	Manifest  string `json:"manifest"` // current descriptor as YAML
	Error     string `json:"error"`    // build/run failure output
	Iteration int    `json:"iteration"`
}

// FixOut returns the repaired descriptor as YAML text.
type FixOut struct {
	Manifest string `json:"manifest"`
}
