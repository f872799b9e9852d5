package claude

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Claude Code transport type values.
const (
	TypeStdio = "stdio"
	TypeSSE   = "sse"
	TypeHTTP  = "http"
)

// MCPServer is one entry of the mcpServers map.
type MCPServer struct {
	Type     string            `json:"type,omitempty"`
	Command  string            `json:"command,omitempty"`
	Args     []string          `json:"args,omitempty"`
	URL      string            `json:"url,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
}

// MCPConfig is the content of .mcp.json.
type MCPConfig struct {
	MCPServers map[string]*MCPServer `json:"mcpServers"`
}

// Settings holds the keys of settings.json bridle understands.
type Settings struct {
	Model string `json:"model,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// ToolList is an agent's tool list. Claude Code writes it as a
// comma-separated string; a YAML list is accepted too.
type ToolList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *ToolList) UnmarshalYAML(value *yaml.Node) error {
	var multi []string
	if err := value.Decode(&multi); err == nil {
		*t = multi
		return nil
	}

	var single string
	if err := value.Decode(&single); err == nil {
		*t = nil
		for _, part := range strings.Split(single, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*t = append(*t, part)
			}
		}
		return nil
	}

	return errors.Newf("tools must be a string or list of strings, got %s", value.Tag)
}

// MarshalYAML writes the comma-separated form.
func (t ToolList) MarshalYAML() (any, error) {
	return strings.Join(t, ", "), nil
}

// AgentMeta is the frontmatter of an agent file.
type AgentMeta struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tools       ToolList `yaml:"tools,omitempty"`
	Color       string   `yaml:"color,omitempty"`
	Model       string   `yaml:"model,omitempty"`
}
