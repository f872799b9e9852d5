package gemini

import (
	"encoding/json"
)

// MCPServer is one entry of the mcpServers map.
type MCPServer struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	HTTPURL string            `json:"httpUrl,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Settings holds the keys of settings.json bridle understands. Model and
// UI accept both the nested form and the older flat strings.
type Settings struct {
	MCPServers map[string]*MCPServer `json:"mcpServers,omitempty"`
	MCP        struct {
		Excluded []string `json:"excluded,omitempty"`
	} `json:"mcp"`
	Model json.RawMessage `json:"model,omitempty"`
	UI    struct {
		Theme string `json:"theme,omitempty"`
	} `json:"ui"`
	Theme string `json:"theme,omitempty"`
}

// ModelName returns the configured model in either form.
func (s *Settings) ModelName() string {
	if len(s.Model) == 0 {
		return ""
	}
	var flat string
	if err := json.Unmarshal(s.Model, &flat); err == nil {
		return flat
	}
	var nested struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(s.Model, &nested); err == nil {
		return nested.Name
	}
	return ""
}

// ThemeName returns the configured theme in either form.
func (s *Settings) ThemeName() string {
	if s.UI.Theme != "" {
		return s.UI.Theme
	}
	return s.Theme
}

// Command is the content of a commands/<name>.toml file.
type Command struct {
	Description string `toml:"description,omitempty"`
	Prompt      string `toml:"prompt,multiline"`
}
