// Package pipeline holds the section agents. Each agent is a small struct
// carrying an LLM client; Run sends one prompt with the repository analysis
// (plus any upstream section outputs) and coerces the reply into the
// section's typed output.
package pipeline

const prologue = `You are generating one section of an MCP server descriptor.
An MCP server is a program exposing tools to language models over the Model
Context Protocol. You receive static analysis of the server's repository and
must answer with facts supported by that analysis.

You MUST output STRICT JSON that exactly matches the schema below.
No comments, no trailing commas, no ellipses, no markdown fences.
If something is unknown, return an empty string or omit the optional key.
Do not invent files, commands, or configuration the analysis does not support.
`
