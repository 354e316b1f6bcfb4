package pipeline

import (
	"context"
	"fmt"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
	"mcpforge/internal/manifest"
)

const promptFix = prologue + `
You receive an MCP server descriptor that failed its build-and-run test,
together with the error output. Repair the descriptor.

Schema:
{
  "manifest": "string"   // the complete corrected descriptor as YAML text
}

Rules:
- Return the WHOLE descriptor, not a diff. Keep every key that was correct.
- Change only what the error output implicates: a wrong build command, a
  missing install step, a bad entrypoint path, a missing env variable.
- The YAML must keep the same top-level layout as the input descriptor.
`

type Fix struct{ LLM llm.Client }

// Run sends a failing descriptor and the oracle error back to the model and
// returns the repaired, validated descriptor.
func (p *Fix) Run(ctx context.Context, in artifact.FixIn) (*manifest.Manifest, error) {
	ctx = llm.WithSection(ctx, "fix")
	raw, err := p.LLM.GenerateJSON(ctx, promptFix, in)
	if err != nil {
		return nil, err
	}
	var out artifact.FixOut
	if err := coerce.Unmarshal(raw, &out, "fix"); err != nil {
		return nil, err
	}
	if out.Manifest == "" {
		return nil, fmt.Errorf("fix: model returned no descriptor")
	}
	m, err := manifest.DecodeYAML([]byte(coerce.StripFences(out.Manifest)))
	if err != nil {
		return nil, fmt.Errorf("fix: repaired descriptor rejected: %w", err)
	}
	return m, nil
}
