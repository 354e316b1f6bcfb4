package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"mcpforge/internal/artifact"
	"mcpforge/internal/llm"
	"mcpforge/internal/tester"
)

func TestMetadata_CoercesWrappedOutput(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("metadata", json.RawMessage(`{"metadata":{"name":"gh","displayName":"GitHub","description":"d","longDescription":"full details","siteUrl":"https://github.com","version":"2.0.0"}}`))
	p := &Metadata{LLM: fake}

	out, err := p.Run(context.Background(), artifact.MetadataIn{Repo: "https://github.com/x/y", Analysis: "a"})
	tester.NoErr(t, err)
	tester.Eq(t, out.Name, "gh")
	tester.Eq(t, out.DisplayName, "GitHub")
	tester.Eq(t, out.LongDescription, "full details")
	tester.Eq(t, out.SiteURL, "https://github.com")
	tester.Eq(t, out.Version, "2.0.0")
	tester.Eq(t, fake.Calls, []string{"metadata"})
}

func TestSource_DefaultsProjectDir(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("source", json.RawMessage(`{"language":"python","package_manager":"uv","install_command":"uv sync"}`))
	p := &Source{LLM: fake}

	out, err := p.Run(context.Background(), artifact.SourceIn{Repo: "r", Analysis: "a"})
	tester.NoErr(t, err)
	tester.Eq(t, out.ProjectDir, ".")
	tester.Eq(t, out.PackageManager, "uv")
}

func TestBuild_AcceptsFencedYAMLReply(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("build", json.RawMessage("```yaml\nbuild_command: npm run build\noutput_dir: dist\n```"))
	p := &Build{LLM: fake}

	out, err := p.Run(context.Background(), artifact.BuildIn{Repo: "r", Analysis: "a"})
	tester.NoErr(t, err)
	tester.Eq(t, out.BuildCommand, "npm run build")
	tester.Eq(t, out.OutputDir, "dist")
}

func TestConfigSection_ParsesFieldMap(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("config", json.RawMessage(`{"config":{"DB_URL":{"type":"string","required":"yes-ish"}}}`))
	p := &ConfigSection{LLM: fake}

	_, err := p.Run(context.Background(), artifact.ConfigIn{Repo: "r", Analysis: "a"})
	tester.ErrContains(t, err, "cannot coerce")
}

func TestConfigSection_Valid(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("config", json.RawMessage(`{"config":{"DB_URL":{"type":"string","required":true,"env":"DB_URL","label":"Database URL"}}}`))
	p := &ConfigSection{LLM: fake}

	out, err := p.Run(context.Background(), artifact.ConfigIn{Repo: "r", Analysis: "a"})
	tester.NoErr(t, err)
	tester.Eq(t, out.Config["DB_URL"].Env, "DB_URL")
	tester.True(t, out.Config["DB_URL"].Required)
}

func TestEntrypoint_ReceivesConfigDependency(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("entrypoint", json.RawMessage(`{"command":"node","args":["dist/index.js","--api-key","$API_KEY"]}`))
	p := &Entrypoint{LLM: fake}

	out, err := p.Run(context.Background(), artifact.EntrypointIn{
		Repo:     "r",
		Analysis: "a",
		Config:   map[string]artifact.ConfigField{"API_KEY": {Type: "string", Arg: "--api-key"}},
	})
	tester.NoErr(t, err)
	tester.Eq(t, out.Args, []string{"dist/index.js", "--api-key", "$API_KEY"})
}

func TestEnv_EmptySet(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("env", json.RawMessage(`{"env":{}}`))
	p := &Env{LLM: fake}

	out, err := p.Run(context.Background(), artifact.EnvIn{Repo: "r", Analysis: "a"})
	tester.NoErr(t, err)
	tester.Eq(t, len(out.Env), 0)
}

func TestFix_DecodesRepairedDescriptor(t *testing.T) {
	repaired := "name: srv\ndisplayName: Srv\nrepository: r\ndescription: d\nlanguage: go\nentrypoint:\n  command: ./server\n"
	fake := llm.NewFakeClient()
	fake.Set("fix", json.RawMessage(`{"manifest":`+mustJSON(repaired)+`}`))
	p := &Fix{LLM: fake}

	m, err := p.Run(context.Background(), artifact.FixIn{Repo: "r", Manifest: "old", Error: "exec failed"})
	tester.NoErr(t, err)
	tester.Eq(t, m.Name, "srv")
	tester.Eq(t, m.Entrypoint.Command, "./server")
}

func TestFix_RejectsInvalidRepair(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("fix", json.RawMessage(`{"manifest":"name: only\n"}`))
	p := &Fix{LLM: fake}

	_, err := p.Run(context.Background(), artifact.FixIn{Repo: "r"})
	tester.ErrContains(t, err, "rejected")
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
