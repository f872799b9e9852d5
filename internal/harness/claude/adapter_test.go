package claude

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
)

func writeFixture(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		if err := harness.WriteFile(filepath.Join(dir, rel), []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		".mcp.json": `{"mcpServers": {
			"postgres": {"type": "sse", "url": "https://db.example.com/sse"},
			"github": {"command": "npx", "args": ["-y", "@mcp/github"], "env": {"TOKEN": "${GITHUB_TOKEN}"}},
			"old": {"type": "stdio", "command": "old", "disabled": true}
		}}`,
		"settings.json":           `{"model": "sonnet", "theme": "dark", "permissions": {}}`,
		"skills/review/SKILL.md":  "---\nname: Code Review Guide\ndescription: Guide\n---\n\nBody\n",
		"agents/code-reviewer.md": "---\nname: code-reviewer\ndescription: Reviews\ntools: Read, Grep\ncolor: blue\n---\n\nYou review code.\n",
		"commands/deploy.md":      "---\ndescription: Deploy it\n---\n\nDeploy $ARGUMENTS\n",
		"commands/notes.txt":      "ignored",
	})

	p, err := New().Extract(context.Background(), dir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := p.Names(canonical.KindMCP); !slices.Equal(got, []string{"github", "old", "postgres"}) {
		t.Errorf("servers = %v", got)
	}
	gh := p.MCPServers[0]
	if gh.Transport != canonical.TransportStdio || gh.Command != "npx" || gh.Env["TOKEN"] != "${GITHUB_TOKEN}" || !gh.Enabled {
		t.Errorf("github = %+v", gh)
	}
	if p.MCPServers[1].Enabled {
		t.Error("disabled server extracted as enabled")
	}
	if pg := p.MCPServers[2]; pg.Transport != canonical.TransportSSE || pg.URL == "" {
		t.Errorf("postgres = %+v", pg)
	}

	if p.Settings != (canonical.Settings{Model: "sonnet", Theme: "dark"}) {
		t.Errorf("settings = %+v", p.Settings)
	}
	if len(p.Skills) != 1 || p.Skills[0].Name != "Code Review Guide" {
		t.Errorf("skills = %+v", p.Skills)
	}

	if len(p.Agents) != 1 {
		t.Fatalf("agents = %+v", p.Agents)
	}
	ag := p.Agents[0]
	if ag.Name != "code-reviewer" || !slices.Equal(ag.Tools, []string{"Read", "Grep"}) || ag.Color != "blue" || ag.Prompt != "You review code.\n" {
		t.Errorf("agent = %+v", ag)
	}

	if len(p.Commands) != 1 || p.Commands[0].Name != "deploy" || p.Commands[0].Description != "Deploy it" {
		t.Errorf("commands = %+v", p.Commands)
	}
}

func TestExtract_NotFound(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, harness.ErrNotFound) {
		t.Errorf("Extract() error = %v, want ErrNotFound", err)
	}
}

func TestExtract_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{".mcp.json": "{"})
	if _, err := New().Extract(context.Background(), dir); err == nil {
		t.Error("Extract() expected error for invalid JSON")
	}
}

func profile() *canonical.Profile {
	return &canonical.Profile{
		MCPServers: []*canonical.MCPServer{
			{Name: "github", Enabled: true, Transport: canonical.TransportStdio, Command: "npx", Args: []string{"-y", "gh"}},
			{Name: "docs", Enabled: true, Transport: canonical.TransportHTTP, URL: "https://docs/mcp", Headers: map[string]string{"Authorization": "Bearer ${TOKEN}"}},
		},
		Skills:   []*canonical.Skill{{Name: "review", Content: "---\nname: review\n---\nBody\n"}},
		Agents:   []*canonical.Agent{{Name: "helper", Description: "Helps", Prompt: "Help.\n", Tools: []string{"Read", "Bash"}, Model: "haiku"}},
		Commands: []*canonical.Command{{Name: "deploy", Description: "Deploy", Content: "Deploy now.\n"}},
		Settings: canonical.Settings{Model: "opus"},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := New()
	if err := a.Write(context.Background(), dir, profile()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := a.Extract(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count() != profile().Count() {
		t.Errorf("Count() = %d, want %d", got.Count(), profile().Count())
	}
	docs := got.MCPServers[0]
	if docs.Name != "docs" || docs.Transport != canonical.TransportHTTP || docs.Headers["Authorization"] != "Bearer ${TOKEN}" {
		t.Errorf("docs = %+v", docs)
	}
	ag := got.Agents[0]
	if !slices.Equal(ag.Tools, []string{"Read", "Bash"}) || ag.Model != "haiku" || ag.Prompt != "Help.\n" {
		t.Errorf("agent = %+v", ag)
	}
	if got.Commands[0].Description != "Deploy" {
		t.Errorf("command = %+v", got.Commands[0])
	}
	if got.Settings.Model != "opus" {
		t.Errorf("model = %q", got.Settings.Model)
	}
}

func TestWrite_MergesAndIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		".mcp.json": `{"mcpServers": {"keep": {"type": "stdio", "command": "keep"}, "github": {"command": "stale"}}}`,
	})

	a := New()
	if err := a.Write(context.Background(), dir, profile()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Write(context.Background(), dir, profile()); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	if string(first) != string(second) {
		t.Errorf("second write differs:\n%s\n---\n%s", first, second)
	}

	p, err := a.Extract(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Names(canonical.KindMCP); !slices.Equal(got, []string{"docs", "github", "keep"}) {
		t.Errorf("servers = %v", got)
	}
	if p.MCPServers[1].Command != "npx" {
		t.Errorf("github not replaced: %+v", p.MCPServers[1])
	}
}

func TestWrite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	if err := New().Write(ctx, dir, profile()); !errors.Is(err, context.Canceled) {
		t.Errorf("Write() error = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cancelled write left %d entries", len(entries))
	}
}
