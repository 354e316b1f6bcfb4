package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptEnv = prologue + `
Schema:
{
  "env": {
    "VAR_NAME": "string"   // fixed value the server always needs at runtime
  }
}

Rules:
- Only variables with one correct constant value belong here (NODE_ENV,
  PYTHONUNBUFFERED). User-provided settings live in the config section; never
  repeat a variable that the provided config already declares.
- An empty set is {"env": {}}.
`

type Env struct{ LLM llm.Client }

func (p *Env) Run(ctx context.Context, in artifact.EnvIn) (artifact.EnvOut, error) {
	ctx = llm.WithSection(ctx, "env")
	raw, err := p.LLM.GenerateJSON(ctx, promptEnv, in)
	if err != nil {
		return artifact.EnvOut{}, err
	}
	var out artifact.EnvOut
	if err := coerce.Unmarshal(raw, &out, "env"); err != nil {
		return artifact.EnvOut{}, err
	}
	return out, nil
}
