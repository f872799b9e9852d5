package goose

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// ID is the harness identifier.
const ID = "goose"

// Goose extension types backed by MCP servers.
const (
	TypeStdio          = "stdio"
	TypeSSE            = "sse"
	TypeStreamableHTTP = "streamable_http"
)

const (
	configFile = "config.yaml"
	skillsDir  = "skills"
	modelKey   = "GOOSE_MODEL"
)

// defaultTimeout is the extension timeout, in seconds, Goose assumes.
const defaultTimeout = 300

// Extension is one entry of the extensions map.
type Extension struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"`
	Cmd     string            `yaml:"cmd,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	URI     string            `yaml:"uri,omitempty"`
	Envs    map[string]string `yaml:"envs,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Enabled bool              `yaml:"enabled"`
	Timeout int               `yaml:"timeout,omitempty"`
}

// Config holds the keys of config.yaml bridle understands.
type Config struct {
	Model      string                `yaml:"GOOSE_MODEL,omitempty"`
	Extensions map[string]*Extension `yaml:"extensions,omitempty"`
}

// Adapter implements harness.Adapter for Goose.
type Adapter struct{}

// New returns a Goose adapter.
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

func readConfig(path string, v any) error {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return errors.Wrapf(yaml.Unmarshal(data, v), "parsing %s", configFile)
}

// Extract reads a Goose profile directory.
func (a *Adapter) Extract(ctx context.Context, dir string) (*canonical.Profile, error) {
	if err := harness.EnsureProfileDir(dir); err != nil {
		return nil, err
	}
	p := canonical.New()

	var cfg Config
	if err := readConfig(filepath.Join(dir, configFile), &cfg); err != nil {
		return nil, err
	}
	for _, key := range harness.SortedKeys(cfg.Extensions) {
		ext := cfg.Extensions[key]
		if ext == nil {
			continue
		}
		server := &canonical.MCPServer{
			Name:    key,
			Enabled: ext.Enabled,
			Env:     ext.Envs,
			Headers: ext.Headers,
		}
		switch ext.Type {
		case TypeStdio:
			server.Transport = canonical.TransportStdio
			server.Command = ext.Cmd
			server.Args = ext.Args
		case TypeSSE:
			server.Transport = canonical.TransportSSE
			server.URL = ext.URI
		case TypeStreamableHTTP:
			server.Transport = canonical.TransportStreamableHTTP
			server.URL = ext.URI
		default:
			// builtin and platform extensions are not MCP servers
			continue
		}
		if err := p.AddMCPServer(server); err != nil {
			return nil, err
		}
	}
	p.Settings.Model = cfg.Model

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

	return p, nil
}

// Write merges p into a Goose profile directory. Agents and commands have
// no Goose representation and are ignored.
func (a *Adapter) Write(ctx context.Context, dir string, p *canonical.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(p.MCPServers) > 0 || p.Settings.Model != "" {
		if err := mergeConfig(filepath.Join(dir, configFile), p); err != nil {
			return harness.WriteError(err, "writing "+configFile)
		}
	}

	if err := harness.WriteSkills(filepath.Join(dir, skillsDir), p.Skills); err != nil {
		return harness.WriteError(err, "writing skills")
	}
	return nil
}

func mergeConfig(path string, p *canonical.Profile) error {
	doc := make(map[string]any)
	if err := readConfig(path, &doc); err != nil {
		return err
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	if p.Settings.Model != "" {
		doc[modelKey] = p.Settings.Model
	}

	if len(p.MCPServers) > 0 {
		exts, ok := doc["extensions"].(map[string]any)
		if !ok {
			exts = make(map[string]any)
			doc["extensions"] = exts
		}
		for _, s := range p.MCPServers {
			exts[s.Name] = toExtension(s)
		}
	}

	return fileutil.AtomicWriteYAML(path, doc)
}

func toExtension(s *canonical.MCPServer) *Extension {
	ext := &Extension{
		Name:    s.Name,
		Envs:    s.Env,
		Headers: s.Headers,
		Enabled: s.Enabled,
		Timeout: defaultTimeout,
	}
	switch s.Transport {
	case canonical.TransportStdio:
		ext.Type = TypeStdio
		ext.Cmd = s.Command
		ext.Args = s.Args
	case canonical.TransportSSE:
		ext.Type = TypeSSE
		ext.URI = s.URL
	default:
		ext.Type = TypeStreamableHTTP
		ext.URI = s.URL
	}
	return ext
}
