package opencode

// OpenCode MCP server types.
const (
	TypeLocal  = "local"
	TypeRemote = "remote"
)

// MCPServer is one entry of the "mcp" object. Local servers put the
// executable and its arguments in a single Command array.
type MCPServer struct {
	Type        string            `json:"type"`
	Command     []string          `json:"command,omitempty"`
	URL         string            `json:"url,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty"`
}

// Config holds the keys of opencode.json bridle understands.
type Config struct {
	MCP   map[string]*MCPServer `json:"mcp,omitempty"`
	Model string                `json:"model,omitempty"`
	Theme string                `json:"theme,omitempty"`
}

// AgentMeta is the frontmatter of an agent file. The agent name is the
// file name.
type AgentMeta struct {
	Description string          `yaml:"description,omitempty"`
	Mode        string          `yaml:"mode,omitempty"`
	Model       string          `yaml:"model,omitempty"`
	Tools       map[string]bool `yaml:"tools,omitempty"`
}

const schemaURL = "https://opencode.ai/config.json"
