package coerce

import (
	"testing"

	"mcpforge/internal/artifact"
	"mcpforge/internal/tester"
)

func TestUnmarshal_PlainJSON(t *testing.T) {
	raw := []byte(`{"name":"github-server","display_name":"GitHub","description":"d","tags":["vcs"]}`)
	var out artifact.MetadataOut
	tester.NoErr(t, Unmarshal(raw, &out, "metadata"))
	tester.Eq(t, out.Name, "github-server")
	tester.Eq(t, out.Tags, []string{"vcs"})
}

func TestUnmarshal_FencedJSON(t *testing.T) {
	raw := []byte("Here is the result:\n```json\n{\"command\":\"node\",\"args\":[\"dist/index.js\"]}\n```\nDone.")
	var out artifact.EntrypointOut
	tester.NoErr(t, Unmarshal(raw, &out, "entrypoint"))
	tester.Eq(t, out.Command, "node")
	tester.Eq(t, out.Args, []string{"dist/index.js"})
}

func TestUnmarshal_YAMLFallback(t *testing.T) {
	raw := []byte("language: python\npackage_manager: uv\nproject_dir: .\ninstall_command: uv sync\n")
	var out artifact.SourceOut
	tester.NoErr(t, Unmarshal(raw, &out, "source"))
	tester.Eq(t, out.Language, "python")
	tester.Eq(t, out.PackageManager, "uv")
}

func TestUnmarshal_UnwrapsSectionWrapper(t *testing.T) {
	raw := []byte(`{"metadata":{"name":"a","display_name":"A","description":"d"}}`)
	var out artifact.MetadataOut
	tester.NoErr(t, Unmarshal(raw, &out, "metadata"))
	tester.Eq(t, out.Name, "a")
}

func TestUnmarshal_UnwrapsTypeNameWrapper(t *testing.T) {
	raw := []byte(`{"MetadataOut":{"name":"a","display_name":"A","description":"d"}}`)
	var out artifact.MetadataOut
	tester.NoErr(t, Unmarshal(raw, &out, "metadata"))
	tester.Eq(t, out.Name, "a")
}

func TestUnmarshal_UnwrapsSchemaClassNameWrapper(t *testing.T) {
	raw := []byte(`{"MCPStateResponseBuild":{"build_command":"npm run build","output_dir":"dist"}}`)
	var out artifact.BuildOut
	tester.NoErr(t, Unmarshal(raw, &out, "build"))
	tester.Eq(t, out.BuildCommand, "npm run build")
	tester.Eq(t, out.OutputDir, "dist")
}

func TestUnmarshal_ClassNameWrapperKeepsRealFields(t *testing.T) {
	// The wrapper key mentions the section, but the payload under it still
	// has the section-named field; only the outer layer is peeled.
	raw := []byte(`{"MCPStateResponseConfig":{"config":{"K":{"type":"string","env":"K"}}}}`)
	var out artifact.ConfigOut
	tester.NoErr(t, Unmarshal(raw, &out, "config"))
	tester.Eq(t, out.Config["K"].Env, "K")
}

func TestUnmarshal_DoesNotUnwrapRealField(t *testing.T) {
	// ConfigOut has a field literally named "config"; that key is the
	// payload, not a wrapper.
	raw := []byte(`{"config":{"API_KEY":{"type":"string","required":true,"env":"API_KEY"}}}`)
	var out artifact.ConfigOut
	tester.NoErr(t, Unmarshal(raw, &out, "config"))
	f, ok := out.Config["API_KEY"]
	tester.True(t, ok)
	tester.Eq(t, f.Type, "string")
	tester.True(t, f.Required)
}

func TestUnmarshal_NormalizesCamelCaseKeys(t *testing.T) {
	raw := []byte(`{"displayName":"GitHub","name":"gh","description":"d"}`)
	var out artifact.MetadataOut
	tester.NoErr(t, Unmarshal(raw, &out, "metadata"))
	tester.Eq(t, out.DisplayName, "GitHub")
}

func TestUnmarshal_CoercesScalars(t *testing.T) {
	raw := []byte(`{"PORT":{"type":"number","required":"true","secret":0,"default":3000}}`)
	var out map[string]artifact.ConfigField
	tester.NoErr(t, Unmarshal(raw, &out, "config"))
	f := out["PORT"]
	tester.True(t, f.Required)
	tester.False(t, f.Secret)
	tester.Eq(t, f.Default, "3000")
}

func TestUnmarshal_ScalarBecomesSingletonList(t *testing.T) {
	raw := []byte(`{"command":"python","args":"-m server"}`)
	var out artifact.EntrypointOut
	tester.NoErr(t, Unmarshal(raw, &out, "entrypoint"))
	tester.Eq(t, out.Args, []string{"-m server"})
}

func TestUnmarshal_RejectsGarbage(t *testing.T) {
	var out artifact.MetadataOut
	tester.ErrContains(t, Unmarshal([]byte(`: not : valid : anything {`), &out, "metadata"), "metadata")
}

func TestUnmarshal_RejectsEmpty(t *testing.T) {
	var out artifact.MetadataOut
	tester.ErrContains(t, Unmarshal([]byte("   "), &out, "metadata"), "empty")
}

func TestStripFences(t *testing.T) {
	tester.Eq(t, StripFences("```yaml\nname: a\n```"), "name: a")
	tester.Eq(t, StripFences("no fences here"), "no fences here")
	tester.Eq(t, StripFences("```\n{}\n```"), "{}")
}
