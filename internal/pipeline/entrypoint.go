package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptEntrypoint = prologue + `
Schema:
{
  "command": "string",   // executable, e.g. "node", "python", "./server"
  "args": ["string"]     // arguments in order
}

Rules:
- The command runs after install and build have completed, from the project dir.
- Point at built output ("dist/index.js"), never at source ("src/index.ts").
- Config fields with an "arg" binding appear in "args" as "$FIELD_NAME"
  placeholders right after their flag; the launcher substitutes real values.
- The server must speak MCP on stdio; do not add flags that daemonize it.
`

type Entrypoint struct{ LLM llm.Client }

func (p *Entrypoint) Run(ctx context.Context, in artifact.EntrypointIn) (artifact.EntrypointOut, error) {
	ctx = llm.WithSection(ctx, "entrypoint")
	raw, err := p.LLM.GenerateJSON(ctx, promptEntrypoint, in)
	if err != nil {
		return artifact.EntrypointOut{}, err
	}
	var out artifact.EntrypointOut
	if err := coerce.Unmarshal(raw, &out, "entrypoint"); err != nil {
		return artifact.EntrypointOut{}, err
	}
	return out, nil
}
