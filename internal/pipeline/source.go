package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptSource = prologue + `
Schema:
{
  "language": "string",         // typescript | javascript | python | go
  "package_manager": "string",  // npm | yarn | pnpm | pip | uv | go
  "project_dir": "string",      // repo-relative dir holding the server package, "." for root
  "install_command": "string"   // exact shell command that installs dependencies
}

Rules:
- Prefer the lockfile to guess the package manager (package-lock.json -> npm,
  yarn.lock -> yarn, pnpm-lock.yaml -> pnpm, uv.lock -> uv).
- "install_command" must run from "project_dir".
`

type Source struct{ LLM llm.Client }

func (p *Source) Run(ctx context.Context, in artifact.SourceIn) (artifact.SourceOut, error) {
	ctx = llm.WithSection(ctx, "source")
	raw, err := p.LLM.GenerateJSON(ctx, promptSource, in)
	if err != nil {
		return artifact.SourceOut{}, err
	}
	var out artifact.SourceOut
	if err := coerce.Unmarshal(raw, &out, "source"); err != nil {
		return artifact.SourceOut{}, err
	}
	if out.ProjectDir == "" {
		out.ProjectDir = "."
	}
	return out, nil
}
