package pipeline

import (
	"context"

	"mcpforge/internal/artifact"
	"mcpforge/internal/coerce"
	"mcpforge/internal/llm"
)

const promptMetadata = prologue + `
Schema:
{
  "name": "string",              // lowercase-hyphenated identifier derived from the repo
  "display_name": "string",      // human-readable product name
  "description": "string",       // one or two sentences, what the server does
  "long_description": "string",  // a detailed paragraph on purpose and capabilities
  "site_url": "string",          // URL to the product's official page, or ""
  "icon": "string",              // URL to the product logo, or ""
  "categories": ["string"],      // broad categories, e.g. "databases", "productivity"
  "tags": ["string"],            // free-form search keywords
  "version": "string"            // semantic version from the manifest files, or "1.0.0"
}

Rules:
- "name" must be usable as a registry key: lowercase letters, digits, hyphens.
- Derive the descriptions from the README, not from the repository URL.
- "long_description" expands on "description"; never leave it shorter.
- Categories and tags are lowercase.
`

type Metadata struct{ LLM llm.Client }

func (p *Metadata) Run(ctx context.Context, in artifact.MetadataIn) (artifact.MetadataOut, error) {
	ctx = llm.WithSection(ctx, "metadata")
	raw, err := p.LLM.GenerateJSON(ctx, promptMetadata, in)
	if err != nil {
		return artifact.MetadataOut{}, err
	}
	var out artifact.MetadataOut
	if err := coerce.Unmarshal(raw, &out, "metadata"); err != nil {
		return artifact.MetadataOut{}, err
	}
	return out, nil
}
