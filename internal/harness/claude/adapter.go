package claude

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/pkg/frontmatter"
)

// ID is the harness identifier.
const ID = "claude-code"

const (
	mcpFile      = ".mcp.json"
	settingsFile = "settings.json"
	skillsDir    = "skills"
	agentsDir    = "agents"
	commandsDir  = "commands"
)

// Adapter implements harness.Adapter for Claude Code.
type Adapter struct{}

// New returns a Claude Code adapter.
func New() *Adapter {
	return &Adapter{}
}

// ID returns the harness identifier.
func (a *Adapter) ID() string {
	return ID
}

// ConfigFile returns the profile file holding MCP servers.
func (a *Adapter) ConfigFile() string {
	return mcpFile
}

// Extract reads a Claude Code profile directory.
func (a *Adapter) Extract(ctx context.Context, dir string) (*canonical.Profile, error) {
	if err := harness.EnsureProfileDir(dir); err != nil {
		return nil, err
	}
	p := canonical.New()

	var mcp MCPConfig
	if _, err := harness.ReadJSON(filepath.Join(dir, mcpFile), &mcp); err != nil {
		return nil, err
	}
	for _, name := range harness.SortedKeys(mcp.MCPServers) {
		s := mcp.MCPServers[name]
		if s == nil {
			continue
		}
		if err := p.AddMCPServer(&canonical.MCPServer{
			Name:      name,
			Enabled:   !s.Disabled,
			Transport: toTransport(s),
			Command:   s.Command,
			Args:      s.Args,
			URL:       s.URL,
			Env:       s.Env,
			Headers:   s.Headers,
		}); err != nil {
			return nil, err
		}
	}

	var settings Settings
	if _, err := harness.ReadJSON(filepath.Join(dir, settingsFile), &settings); err != nil {
		return nil, err
	}
	p.Settings = canonical.Settings{Model: settings.Model, Theme: settings.Theme}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	skills, err := harness.ReadSkills(filepath.Join(dir, skillsDir))
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		if err := p.AddSkill(s); err != nil {
			return nil, err
		}
	}

	agents, err := harness.ReadMarkdownDir(filepath.Join(dir, agentsDir))
	if err != nil {
		return nil, err
	}
	for _, f := range agents {
		agent, err := parseAgent(f)
		if err != nil {
			return nil, err
		}
		if err := p.AddAgent(agent); err != nil {
			return nil, err
		}
	}

	commands, err := harness.ReadMarkdownDir(filepath.Join(dir, commandsDir))
	if err != nil {
		return nil, err
	}
	for _, f := range commands {
		cmd, err := harness.ParseCommand(f)
		if err != nil {
			return nil, err
		}
		if err := p.AddCommand(cmd); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func toTransport(s *MCPServer) canonical.Transport {
	switch s.Type {
	case TypeStdio:
		return canonical.TransportStdio
	case TypeSSE:
		return canonical.TransportSSE
	case TypeHTTP:
		return canonical.TransportHTTP
	}
	// Claude Code infers the type when it is omitted.
	if s.URL != "" {
		return canonical.TransportHTTP
	}
	return canonical.TransportStdio
}

func fromTransport(t canonical.Transport) string {
	switch t {
	case canonical.TransportStdio:
		return TypeStdio
	case canonical.TransportSSE:
		return TypeSSE
	default:
		return TypeHTTP
	}
}

func parseAgent(f harness.MarkdownFile) (*canonical.Agent, error) {
	var meta AgentMeta
	body, err := frontmatter.Parse(strings.NewReader(f.Content), &meta)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing agent %s", f.Name)
	}
	name := meta.Name
	if name == "" {
		name = f.Name
	}
	return &canonical.Agent{
		Name:        name,
		Description: meta.Description,
		Prompt:      strings.TrimLeft(string(body), "\r\n"),
		Tools:       meta.Tools,
		Color:       meta.Color,
		Model:       meta.Model,
	}, nil
}

// Write merges p into a Claude Code profile directory.
func (a *Adapter) Write(ctx context.Context, dir string, p *canonical.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(p.MCPServers) > 0 {
		err := harness.MergeJSON(filepath.Join(dir, mcpFile), func(doc map[string]any) error {
			servers := harness.Object(doc, "mcpServers")
			for _, s := range p.MCPServers {
				v, err := harness.ToJSONValue(&MCPServer{
					Type:     fromTransport(s.Transport),
					Command:  s.Command,
					Args:     s.Args,
					URL:      s.URL,
					Env:      s.Env,
					Headers:  s.Headers,
					Disabled: !s.Enabled,
				})
				if err != nil {
					return err
				}
				servers[s.Name] = v
			}
			return nil
		})
		if err != nil {
			return harness.WriteError(err, "writing "+mcpFile)
		}
	}

	if !p.Settings.IsZero() {
		err := harness.MergeJSON(filepath.Join(dir, settingsFile), func(doc map[string]any) error {
			if p.Settings.Model != "" {
				doc["model"] = p.Settings.Model
			}
			if p.Settings.Theme != "" {
				doc["theme"] = p.Settings.Theme
			}
			return nil
		})
		if err != nil {
			return harness.WriteError(err, "writing "+settingsFile)
		}
	}

	if err := harness.WriteSkills(filepath.Join(dir, skillsDir), p.Skills); err != nil {
		return harness.WriteError(err, "writing skills")
	}

	var agents []harness.MarkdownFile
	for _, ag := range p.Agents {
		content, err := frontmatter.Format(AgentMeta{
			Name:        ag.Name,
			Description: ag.Description,
			Tools:       ag.Tools,
			Color:       ag.Color,
			Model:       ag.Model,
		}, ag.Prompt)
		if err != nil {
			return harness.WriteError(err, "formatting agent "+ag.Name)
		}
		agents = append(agents, harness.MarkdownFile{Name: ag.Name, Content: string(content)})
	}
	if err := harness.WriteMarkdownDir(filepath.Join(dir, agentsDir), agents); err != nil {
		return harness.WriteError(err, "writing agents")
	}

	var commands []harness.MarkdownFile
	for _, c := range p.Commands {
		content, err := harness.CommandMarkdown(c)
		if err != nil {
			return harness.WriteError(err, "formatting command "+c.Name)
		}
		commands = append(commands, harness.MarkdownFile{Name: c.Name, Content: string(content)})
	}
	if err := harness.WriteMarkdownDir(filepath.Join(dir, commandsDir), commands); err != nil {
		return harness.WriteError(err, "writing commands")
	}

	return nil
}
