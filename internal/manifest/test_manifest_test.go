package manifest

import (
	"strings"
	"testing"

	"mcpforge/internal/artifact"
	"mcpforge/internal/tester"
)

func sections() Sections {
	return Sections{
		Repo:   "https://github.com/example/server",
		Branch: "main",
		Metadata: artifact.MetadataOut{
			Name:            "example-server",
			DisplayName:     "Example Server",
			Description:     "Does example things.",
			LongDescription: "A longer account of the example things this server does.",
			SiteURL:         "https://example.com",
			Categories:      []string{"demo"},
			Version:         "1.2.3",
		},
		Source: artifact.SourceOut{
			Language:       "typescript",
			PackageManager: "npm",
			ProjectDir:     ".",
			InstallCommand: "npm install",
		},
		Build: artifact.BuildOut{BuildCommand: "npm run build", OutputDir: "dist"},
		Config: artifact.ConfigOut{Config: map[string]artifact.ConfigField{
			"API_KEY": {Type: "string", Required: true, Secret: true, Env: "API_KEY"},
		}},
		Entrypoint: artifact.EntrypointOut{Command: "node", Args: []string{"dist/index.js"}},
		Env:        artifact.EnvOut{Env: map[string]string{"NODE_ENV": "production"}},
	}
}

func TestAssemble_Complete(t *testing.T) {
	m, err := Assemble(sections())
	tester.NoErr(t, err)
	tester.Eq(t, m.Name, "example-server")
	tester.Eq(t, m.LongDescription, "A longer account of the example things this server does.")
	tester.Eq(t, m.SiteURL, "https://example.com")
	tester.Eq(t, m.Version, "1.2.3")
	tester.Eq(t, m.Language, "typescript")
	tester.Eq(t, m.Build.Command, "npm run build")
	tester.Eq(t, m.Entrypoint.Command, "node")
	tester.Eq(t, m.Env["NODE_ENV"], "production")
}

func TestValidate_MissingDisplayName(t *testing.T) {
	s := sections()
	s.Metadata.DisplayName = ""
	_, err := Assemble(s)
	tester.ErrContains(t, err, "displayName")
}

func TestValidate_MissingRepository(t *testing.T) {
	s := sections()
	s.Repo = ""
	_, err := Assemble(s)
	tester.ErrContains(t, err, "repository")
}

func TestAssemble_DropsSampleConfigKeys(t *testing.T) {
	s := sections()
	s.Config.Config["nameArgsSecret1"] = artifact.ConfigField{Type: "string", Env: "X"}
	m, err := Assemble(s)
	tester.NoErr(t, err)
	_, ok := m.Config["nameArgsSecret1"]
	tester.False(t, ok)
	_, ok = m.Config["API_KEY"]
	tester.True(t, ok)
}

func TestAssemble_EnvCannotShadowConfig(t *testing.T) {
	s := sections()
	s.Env.Env["API_KEY"] = "leaked-fixed-value"
	m, err := Assemble(s)
	tester.NoErr(t, err)
	_, ok := m.Env["API_KEY"]
	tester.False(t, ok)
	tester.Eq(t, m.Env["NODE_ENV"], "production")
}

func TestAssemble_NoBuildSectionForInterpreted(t *testing.T) {
	s := sections()
	s.Build = artifact.BuildOut{}
	m, err := Assemble(s)
	tester.NoErr(t, err)
	tester.True(t, m.Build == nil)
}

func TestValidate_MissingEntrypoint(t *testing.T) {
	s := sections()
	s.Entrypoint = artifact.EntrypointOut{}
	_, err := Assemble(s)
	tester.ErrContains(t, err, "entrypoint command")
}

func TestValidate_ConfigFieldWithoutBinding(t *testing.T) {
	s := sections()
	s.Config.Config["ORPHAN"] = artifact.ConfigField{Type: "string"}
	_, err := Assemble(s)
	tester.ErrContains(t, err, `"ORPHAN"`)
}

func TestValidate_UnknownFieldType(t *testing.T) {
	s := sections()
	s.Config.Config["WEIRD"] = artifact.ConfigField{Type: "object", Env: "WEIRD"}
	_, err := Assemble(s)
	tester.ErrContains(t, err, "unknown type")
}

func TestYAML_RoundTrip(t *testing.T) {
	m, err := Assemble(sections())
	tester.NoErr(t, err)
	raw, err := EncodeYAML(m)
	tester.NoErr(t, err)

	tester.True(t, strings.Contains(string(raw), "longDescription:"))
	tester.True(t, strings.Contains(string(raw), "siteUrl: https://example.com"))
	tester.True(t, strings.Contains(string(raw), "version: 1.2.3"))

	back, err := DecodeYAML(raw)
	tester.NoErr(t, err)
	tester.Eq(t, back.Name, m.Name)
	tester.Eq(t, back.LongDescription, m.LongDescription)
	tester.Eq(t, back.Config["API_KEY"].Secret, true)
	tester.Eq(t, back.Entrypoint.Args, m.Entrypoint.Args)
}

func TestYAML_QuotesScopedPackages(t *testing.T) {
	m, err := Assemble(sections())
	tester.NoErr(t, err)
	m.Entrypoint.Args = []string{"@modelcontextprotocol/server-github"}
	raw, err := EncodeYAML(m)
	tester.NoErr(t, err)
	tester.True(t, strings.Contains(string(raw), `"@modelcontextprotocol/server-github"`))
}

func TestDecodeYAML_RejectsInvalid(t *testing.T) {
	_, err := DecodeYAML([]byte("name: only-a-name\n"))
	tester.ErrContains(t, err, "invalid descriptor")
}
