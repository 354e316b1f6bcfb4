package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient returns canned responses keyed by the section attached to the
// context with WithSection. It is used in tests and in dry-run mode.
type FakeClient struct {
	mu        sync.Mutex
	Responses map[string]json.RawMessage
	Calls     []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: map[string]json.RawMessage{}}
}

func (f *FakeClient) Name() string             { return "Fake" }
func (f *FakeClient) Close() error             { return nil }
func (f *FakeClient) CountTokens(s string) int { return CountTokens(s) }
func (f *FakeClient) TokenCapacity() int       { return 1 << 20 }

// Set registers a canned response for a section.
func (f *FakeClient) Set(section string, raw json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[section] = raw
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	section := SectionFrom(ctx)
	f.mu.Lock()
	f.Calls = append(f.Calls, section)
	raw, ok := f.Responses[section]
	f.mu.Unlock()
	if ok {
		return raw, nil
	}
	return defaultFakeResponse(section), nil
}

func defaultFakeResponse(section string) json.RawMessage {
	switch section {
	case "metadata":
		return json.RawMessage(`{"name":"example-server","display_name":"Example Server","description":"An example MCP server.","long_description":"An example MCP server used in offline tests.","site_url":"https://example.com","icon":"","categories":["demo"],"tags":["example"],"version":"1.0.0"}`)
	case "source":
		return json.RawMessage(`{"language":"typescript","package_manager":"npm","project_dir":".","install_command":"npm install"}`)
	case "build":
		return json.RawMessage(`{"build_command":"npm run build","output_dir":"dist","dockerfile":""}`)
	case "config":
		return json.RawMessage(`{"config":{"API_KEY":{"type":"string","required":true,"secret":true,"env":"API_KEY","label":"API key","example":"sk-sample"}}}`)
	case "entrypoint":
		return json.RawMessage(`{"command":"node","args":["dist/index.js"]}`)
	case "env":
		return json.RawMessage(`{"env":{"NODE_ENV":"production"}}`)
	case "fix":
		return json.RawMessage(`{"manifest":{}}`)
	default:
		return json.RawMessage(`{}`)
	}
}
