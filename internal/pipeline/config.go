package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptConfig = prologue + `
Schema:
{
  "config": {
    "FIELD_NAME": {
      "type": "string",      // string | number | boolean
      "required": true,
      "secret": true,        // true for API keys, tokens, passwords
      "label": "string",     // short human-readable label
      "default": "string",   // default value if the code has one, else ""
      "example": "string",   // plausible example value, never a real credential
      "env": "string",       // environment variable name, UPPER_SNAKE_CASE
      "arg": "string"        // command-line flag (e.g. "--api-key"), "" if none
    }
  }
}

Rules:
- One entry per user-facing setting found in the README or the code
  (environment variable reads, CLI flag definitions).
- Every field needs at least one of "env" or "arg".
- Do not copy the FIELD_NAME placeholder from this schema; use real names.
- An empty repository-specific config is {"config": {}}.
`

type ConfigSection struct{ LLM llm.Client }

func (p *ConfigSection) Run(ctx context.Context, in artifact.ConfigIn) (artifact.ConfigOut, error) {
	ctx = llm.WithSection(ctx, "config")
	raw, err := p.LLM.GenerateJSON(ctx, promptConfig, in)
	if err != nil {
		return artifact.ConfigOut{}, err
	}
	var out artifact.ConfigOut
	if err := coerce.Unmarshal(raw, &out, "config"); err != nil {
		return artifact.ConfigOut{}, err
	}
	return out, nil
}
