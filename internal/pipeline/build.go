package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptBuild = prologue + `
Schema:
{
  "build_command": "string",  // shell command that compiles the server, "" if none needed
  "output_dir": "string",     // repo-relative dir the build writes to, "" if none
  "dockerfile": "string"      // repo-relative path to a Dockerfile, "" if absent
}

Rules:
- Interpreted servers (plain javascript, python) usually need no build: return
  empty strings rather than inventing one.
- Prefer an existing npm "build" script over calling the compiler directly.
- "output_dir" must match where the build command actually writes.
`

type Build struct{ LLM llm.Client }

func (p *Build) Run(ctx context.Context, in artifact.BuildIn) (artifact.BuildOut, error) {
	ctx = llm.WithSection(ctx, "build")
	raw, err := p.LLM.GenerateJSON(ctx, promptBuild, in)
	if err != nil {
		return artifact.BuildOut{}, err
	}
	var out artifact.BuildOut
	if err := coerce.Unmarshal(raw, &out, "build"); err != nil {
		return artifact.BuildOut{}, err
	}
	return out, nil
}
