package validator

import (
	"context"
	"encoding/json"
	"testing"

	"mcpforge/internal/artifact"
	"mcpforge/internal/llm"
	"mcpforge/internal/manifest"
	"mcpforge/internal/oracle"
	"mcpforge/internal/tester"
)

func baseManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name:        "srv",
		DisplayName: "Srv",
		Repository:  "https://github.com/x/y",
		Description: "d",
		Language:    "go",
		Entrypoint:  manifest.Entrypoint{Command: "./server"},
	}
}

func fixResponse(t *testing.T, m *manifest.Manifest) json.RawMessage {
	t.Helper()
	raw, err := manifest.EncodeYAML(m)
	tester.NoErr(t, err)
	payload, err := json.Marshal(map[string]string{"manifest": string(raw)})
	tester.NoErr(t, err)
	return payload
}

func TestValidate_PassesFirstTry(t *testing.T) {
	fake := llm.NewFakeClient()
	store := artifact.NewMemoryStore()
	loop := &Loop{LLM: fake, Oracle: &oracle.FakeOracle{}, Store: store, RunID: "r"}

	out, err := loop.Validate(context.Background(), baseManifest(), t.TempDir())
	tester.NoErr(t, err)
	tester.True(t, out.Passed)
	tester.Eq(t, out.Iterations, 1)
	tester.Eq(t, len(fake.Calls), 0)

	paths, err := store.List(context.Background(), "r")
	tester.NoErr(t, err)
	tester.Eq(t, paths, []string{"candidates/0001.yaml"})
}

func TestValidate_RepairsThenPasses(t *testing.T) {
	repaired := baseManifest()
	repaired.Entrypoint.Command = "./server-fixed"

	fake := llm.NewFakeClient()
	fake.Set("fix", fixResponse(t, repaired))
	ora := &oracle.FakeOracle{FailTimes: 1, Failure: "exec: ./server: not found"}
	loop := &Loop{LLM: fake, Oracle: ora, Store: artifact.NewMemoryStore(), RunID: "r"}

	out, err := loop.Validate(context.Background(), baseManifest(), t.TempDir())
	tester.NoErr(t, err)
	tester.True(t, out.Passed)
	tester.Eq(t, out.Iterations, 2)
	tester.Eq(t, out.Manifest.Entrypoint.Command, "./server-fixed")
	tester.Eq(t, fake.Calls, []string{"fix"})
}

func TestValidate_StopsAtIterationBudget(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Set("fix", fixResponse(t, baseManifest()))
	ora := &oracle.FakeOracle{FailTimes: 100, Failure: "always broken"}
	store := artifact.NewMemoryStore()
	loop := &Loop{LLM: fake, Oracle: ora, Store: store, RunID: "r", MaxIterations: 3}

	out, err := loop.Validate(context.Background(), baseManifest(), t.TempDir())
	tester.NoErr(t, err)
	tester.False(t, out.Passed)
	tester.Eq(t, out.Iterations, 3)
	tester.Eq(t, ora.Calls, 3)
	tester.Eq(t, out.LastOutput, "always broken")
	// The fix agent runs between attempts, not after the last one.
	tester.Eq(t, len(fake.Calls), 2)

	paths, err := store.List(context.Background(), "r")
	tester.NoErr(t, err)
	tester.Eq(t, len(paths), 3)
}

func TestValidate_KeepsLastGoodWhenFixFails(t *testing.T) {
	fake := llm.NewFakeClient()
	// Invalid repair: missing entrypoint, DecodeYAML rejects it.
	payload, _ := json.Marshal(map[string]string{"manifest": "name: broken\n"})
	fake.Set("fix", json.RawMessage(payload))
	ora := &oracle.FakeOracle{FailTimes: 100, Failure: "boom"}
	loop := &Loop{LLM: fake, Oracle: ora, Store: artifact.NewMemoryStore(), RunID: "r"}

	start := baseManifest()
	out, err := loop.Validate(context.Background(), start, t.TempDir())
	tester.NoErr(t, err)
	tester.False(t, out.Passed)
	tester.Eq(t, out.Manifest.Name, "srv")
	tester.Eq(t, out.Iterations, 1)
}
