package canonical

import (
	"maps"
	"slices"
)

// Transport is the connection mechanism of an MCP server.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportHTTP           Transport = "http"
	TransportStreamableHTTP Transport = "streamable-http"
)

// Remote reports whether the transport connects to a URL rather than
// spawning a local process.
func (t Transport) Remote() bool {
	return t != TransportStdio
}

// MCPServer is a harness-neutral MCP server descriptor.
//
// Stdio servers carry Command and Args; every other transport carries URL.
// Env values, including ${VAR} placeholders, are passed through verbatim.
type MCPServer struct {
	Name      string            `json:"name" validate:"required"`
	Enabled   bool              `json:"enabled"`
	Transport Transport         `json:"transport" validate:"required,oneof=stdio sse http streamable-http"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	URL       string            `json:"url,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// Clone returns a deep copy of the server.
func (s *MCPServer) Clone() *MCPServer {
	c := *s
	c.Args = slices.Clone(s.Args)
	c.Env = maps.Clone(s.Env)
	c.Headers = maps.Clone(s.Headers)
	return &c
}

// Skill is a reusable instruction bundle.
//
// Content is the full SKILL.md document and may start with YAML
// frontmatter carrying a name key. Files holds supporting files of the
// skill directory keyed by slash-separated relative path.
type Skill struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Content     string            `json:"content"`
	Files       map[string][]byte `json:"-"`
}

// Clone returns a deep copy of the skill.
func (s *Skill) Clone() *Skill {
	c := *s
	if s.Files != nil {
		c.Files = make(map[string][]byte, len(s.Files))
		for k, v := range s.Files {
			c.Files[k] = slices.Clone(v)
		}
	}
	return &c
}

// Agent is a named sub-assistant definition.
//
// Color and Model are non-functional metadata; they are dropped when a
// target cannot represent them.
type Agent struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Prompt      string   `json:"prompt"`
	Tools       []string `json:"tools,omitempty" validate:"dive,required"`
	Color       string   `json:"color,omitempty"`
	Model       string   `json:"model,omitempty"`
}

// Clone returns a deep copy of the agent.
func (a *Agent) Clone() *Agent {
	c := *a
	c.Tools = slices.Clone(a.Tools)
	return &c
}

// Command is a named slash-command template.
type Command struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// Clone returns a copy of the command.
func (c *Command) Clone() *Command {
	cc := *c
	return &cc
}

// Settings holds profile-wide preferences.
type Settings struct {
	Model string `json:"model,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// IsZero reports whether no setting is present.
func (s Settings) IsZero() bool {
	return s.Model == "" && s.Theme == ""
}
