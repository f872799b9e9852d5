package opencode

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
)

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"opencode.json": `{
			"$schema": "https://opencode.ai/config.json",
			"model": "anthropic/claude-sonnet-4",
			"theme": "tokyonight",
			"mcp": {
				"github": {"type": "local", "command": ["npx", "-y", "gh"], "environment": {"T": "{env:TOKEN}"}},
				"docs": {"type": "remote", "url": "https://docs/mcp", "enabled": false}
			}
		}`,
		"agent/reviewer.md":   "---\ndescription: Reviews\nmode: subagent\ntools:\n  write: false\n  read: true\n  grep: true\n---\nReview.\n",
		"command/ship.md":     "Ship it.\n",
		"skill/lint/SKILL.md": "---\nname: lint\n---\n",
	}
	for rel, content := range files {
		if err := harness.WriteFile(filepath.Join(dir, rel), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	p, err := New().Extract(context.Background(), dir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := p.Names(canonical.KindMCP); !slices.Equal(got, []string{"docs", "github"}) {
		t.Errorf("servers = %v", got)
	}
	docs, gh := p.MCPServers[0], p.MCPServers[1]
	if docs.Transport != canonical.TransportHTTP || docs.Enabled {
		t.Errorf("docs = %+v", docs)
	}
	if gh.Command != "npx" || !slices.Equal(gh.Args, []string{"-y", "gh"}) || !gh.Enabled || gh.Env["T"] != "{env:TOKEN}" {
		t.Errorf("github = %+v", gh)
	}
	if p.Settings.Model != "anthropic/claude-sonnet-4" || p.Settings.Theme != "tokyonight" {
		t.Errorf("settings = %+v", p.Settings)
	}
	if len(p.Agents) != 1 || !slices.Equal(p.Agents[0].Tools, []string{"grep", "read"}) || p.Agents[0].Prompt != "Review.\n" {
		t.Errorf("agents = %+v", p.Agents)
	}
	if len(p.Commands) != 1 || p.Commands[0].Name != "ship" {
		t.Errorf("commands = %+v", p.Commands)
	}
	if len(p.Skills) != 1 || p.Skills[0].Name != "lint" {
		t.Errorf("skills = %+v", p.Skills)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	p := &canonical.Profile{
		MCPServers: []*canonical.MCPServer{
			{Name: "github", Enabled: true, Transport: canonical.TransportStdio, Command: "npx", Args: []string{"gh"}},
			{Name: "remote", Enabled: false, Transport: canonical.TransportHTTP, URL: "https://r/mcp"},
		},
		Agents:   []*canonical.Agent{{Name: "helper", Prompt: "Help.", Tools: []string{"read", "bash"}}},
		Settings: canonical.Settings{Model: "m"},
	}

	a := New()
	if err := a.Write(context.Background(), dir, p); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "opencode.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"$schema": "https://opencode.ai/config.json"`, `"type": "local"`, `"command": [`, `"type": "remote"`, `"enabled": false`, `"model": "m"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("opencode.json missing %s:\n%s", want, data)
		}
	}

	agent, err := os.ReadFile(filepath.Join(dir, "agent", "helper.md"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "---\nmode: subagent\ntools:\n  bash: true\n  read: true\n---\n\nHelp.\n"; string(agent) != want {
		t.Errorf("agent file = %q, want %q", agent, want)
	}

	back, err := a.Extract(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if back.MCPServers[1].Enabled || back.MCPServers[1].URL != "https://r/mcp" {
		t.Errorf("remote = %+v", back.MCPServers[1])
	}
}
