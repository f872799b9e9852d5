package gemini

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
)

// ID is the harness identifier.
const ID = "gemini"

const (
	settingsFile = "settings.json"
	skillsDir    = "skills"
	commandsDir  = "commands"
	commandExt   = ".toml"
)

// Adapter implements harness.Adapter for Gemini CLI.
type Adapter struct{}

// New returns a Gemini CLI adapter.
func New() *Adapter {
	return &Adapter{}
}

// ID returns the harness identifier.
func (a *Adapter) ID() string {
	return ID
}

// ConfigFile returns the profile file holding MCP servers.
func (a *Adapter) ConfigFile() string {
	return settingsFile
}

// Extract reads a Gemini CLI profile directory.
func (a *Adapter) Extract(ctx context.Context, dir string) (*canonical.Profile, error) {
	if err := harness.EnsureProfileDir(dir); err != nil {
		return nil, err
	}
	p := canonical.New()

	var settings Settings
	if _, err := harness.ReadJSON(filepath.Join(dir, settingsFile), &settings); err != nil {
		return nil, err
	}
	for _, name := range harness.SortedKeys(settings.MCPServers) {
		s := settings.MCPServers[name]
		if s == nil {
			continue
		}
		server := &canonical.MCPServer{
			Name:    name,
			Enabled: !slices.Contains(settings.MCP.Excluded, name),
			Env:     s.Env,
			Headers: s.Headers,
		}
		switch {
		case s.Command != "":
			server.Transport = canonical.TransportStdio
			server.Command = s.Command
			server.Args = s.Args
		case s.HTTPURL != "":
			server.Transport = canonical.TransportHTTP
			server.URL = s.HTTPURL
		default:
			server.Transport = canonical.TransportSSE
			server.URL = s.URL
		}
		if err := p.AddMCPServer(server); err != nil {
			return nil, err
		}
	}
	p.Settings = canonical.Settings{Model: settings.ModelName(), Theme: settings.ThemeName()}

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

	files, err := harness.ReadDirExt(filepath.Join(dir, commandsDir), commandExt)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		var cmd Command
		if err := toml.Unmarshal([]byte(f.Content), &cmd); err != nil {
			return nil, errors.Wrapf(err, "parsing command %s", f.Name)
		}
		if err := p.AddCommand(&canonical.Command{
			Name:        f.Name,
			Description: cmd.Description,
			Content:     cmd.Prompt,
		}); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Write merges p into a Gemini CLI profile directory. Agents have no
// Gemini representation and are ignored.
func (a *Adapter) Write(ctx context.Context, dir string, p *canonical.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(p.MCPServers) > 0 || !p.Settings.IsZero() {
		err := harness.MergeJSON(filepath.Join(dir, settingsFile), func(doc map[string]any) error {
			if len(p.MCPServers) > 0 {
				if err := mergeServers(doc, p.MCPServers); err != nil {
					return err
				}
			}
			if p.Settings.Model != "" {
				harness.Object(doc, "model")["name"] = p.Settings.Model
			}
			if p.Settings.Theme != "" {
				harness.Object(doc, "ui")["theme"] = p.Settings.Theme
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

	for _, c := range p.Commands {
		if err := harness.CheckName(c.Name); err != nil {
			return harness.WriteError(err, "writing commands")
		}
		data, err := toml.Marshal(Command{Description: c.Description, Prompt: harness.CommandBody(c)})
		if err != nil {
			return harness.WriteError(err, "formatting command "+c.Name)
		}
		path := filepath.Join(dir, commandsDir, c.Name+commandExt)
		if err := harness.WriteFile(path, data); err != nil {
			return harness.WriteError(err, "writing command "+c.Name)
		}
	}

	return nil
}

func mergeServers(doc map[string]any, servers []*canonical.MCPServer) error {
	entries := harness.Object(doc, "mcpServers")

	mcp := harness.Object(doc, "mcp")
	var excluded []string
	if list, ok := mcp["excluded"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				excluded = append(excluded, s)
			}
		}
	}

	for _, s := range servers {
		out := &MCPServer{Env: s.Env, Headers: s.Headers}
		switch s.Transport {
		case canonical.TransportStdio:
			out.Command = s.Command
			out.Args = s.Args
		case canonical.TransportSSE:
			out.URL = s.URL
		default:
			out.HTTPURL = s.URL
		}
		v, err := harness.ToJSONValue(out)
		if err != nil {
			return err
		}
		entries[s.Name] = v

		excluded = slices.DeleteFunc(excluded, func(n string) bool { return n == s.Name })
		if !s.Enabled {
			excluded = append(excluded, s.Name)
		}
	}

	slices.Sort(excluded)
	excluded = slices.Compact(excluded)
	if len(excluded) > 0 {
		mcp["excluded"] = excluded
	} else {
		delete(mcp, "excluded")
		if len(mcp) == 0 {
			delete(doc, "mcp")
		}
	}
	return nil
}
