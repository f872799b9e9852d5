package opencode

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
const ID = "opencode"

const (
	configFile  = "opencode.json"
	skillsDir   = "skill"
	agentsDir   = "agent"
	commandsDir = "command"
)

// Adapter implements harness.Adapter for OpenCode.
type Adapter struct{}

// New returns an OpenCode adapter.
func New() *Adapter {
	return &Adapter{}
}

// ID returns the harness identifier.
func (a *Adapter) ID() string {
	return ID
}

// ConfigFile returns the profile file holding MCP servers.
func (a *Adapter) ConfigFile() string {
	return configFile
}

// Extract reads an OpenCode profile directory.
func (a *Adapter) Extract(ctx context.Context, dir string) (*canonical.Profile, error) {
	if err := harness.EnsureProfileDir(dir); err != nil {
		return nil, err
	}
	p := canonical.New()

	var cfg Config
	if _, err := harness.ReadJSON(filepath.Join(dir, configFile), &cfg); err != nil {
		return nil, err
	}
	for _, name := range harness.SortedKeys(cfg.MCP) {
		s := cfg.MCP[name]
		if s == nil {
			continue
		}
		server := &canonical.MCPServer{
			Name:    name,
			Enabled: s.Enabled == nil || *s.Enabled,
			Env:     s.Environment,
			Headers: s.Headers,
		}
		if s.Type == TypeRemote || (s.Type == "" && s.URL != "") {
			server.Transport = canonical.TransportHTTP
			server.URL = s.URL
		} else {
			server.Transport = canonical.TransportStdio
			if len(s.Command) > 0 {
				server.Command = s.Command[0]
				server.Args = s.Command[1:]
			}
		}
		if err := p.AddMCPServer(server); err != nil {
			return nil, err
		}
	}
	p.Settings = canonical.Settings{Model: cfg.Model, Theme: cfg.Theme}

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
		var meta AgentMeta
		body, err := frontmatter.Parse(strings.NewReader(f.Content), &meta)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing agent %s", f.Name)
		}
		var tools []string
		for _, t := range harness.SortedKeys(meta.Tools) {
			if meta.Tools[t] {
				tools = append(tools, t)
			}
		}
		if err := p.AddAgent(&canonical.Agent{
			Name:        f.Name,
			Description: meta.Description,
			Prompt:      strings.TrimLeft(string(body), "\r\n"),
			Tools:       tools,
			Model:       meta.Model,
		}); err != nil {
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

// Write merges p into an OpenCode profile directory.
func (a *Adapter) Write(ctx context.Context, dir string, p *canonical.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(p.MCPServers) > 0 || !p.Settings.IsZero() {
		err := harness.MergeJSON(filepath.Join(dir, configFile), func(doc map[string]any) error {
			if _, ok := doc["$schema"]; !ok {
				doc["$schema"] = schemaURL
			}
			if len(p.MCPServers) > 0 {
				servers := harness.Object(doc, "mcp")
				for _, s := range p.MCPServers {
					v, err := harness.ToJSONValue(toServer(s))
					if err != nil {
						return err
					}
					servers[s.Name] = v
				}
			}
			if p.Settings.Model != "" {
				doc["model"] = p.Settings.Model
			}
			if p.Settings.Theme != "" {
				doc["theme"] = p.Settings.Theme
			}
			return nil
		})
		if err != nil {
			return harness.WriteError(err, "writing "+configFile)
		}
	}

	if err := harness.WriteSkills(filepath.Join(dir, skillsDir), p.Skills); err != nil {
		return harness.WriteError(err, "writing skills")
	}

	var agents []harness.MarkdownFile
	for _, ag := range p.Agents {
		meta := AgentMeta{Description: ag.Description, Mode: "subagent", Model: ag.Model}
		if len(ag.Tools) > 0 {
			meta.Tools = make(map[string]bool, len(ag.Tools))
			for _, t := range ag.Tools {
				meta.Tools[t] = true
			}
		}
		content, err := frontmatter.Format(meta, ag.Prompt)
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

func toServer(s *canonical.MCPServer) *MCPServer {
	enabled := s.Enabled
	out := &MCPServer{
		Environment: s.Env,
		Headers:     s.Headers,
		Enabled:     &enabled,
	}
	if s.Transport == canonical.TransportStdio {
		out.Type = TypeLocal
		out.Command = append([]string{s.Command}, s.Args...)
		return out
	}
	out.Type = TypeRemote
	out.URL = s.URL
	return out
}
