package goose

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

const fixture = `GOOSE_PROVIDER: openai
GOOSE_MODEL: gpt-4o
extensions:
  developer:
    name: developer
    type: builtin
    enabled: true
  github:
    name: github
    type: stdio
    cmd: npx
    args: [-y, gh]
    envs:
      TOKEN: ${GITHUB_TOKEN}
    enabled: true
  search:
    name: search
    type: streamable_http
    uri: https://search/mcp
    enabled: false
`

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	if err := harness.WriteFile(filepath.Join(dir, "config.yaml"), []byte(fixture)); err != nil {
		t.Fatal(err)
	}

	p, err := New().Extract(context.Background(), dir)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := p.Names(canonical.KindMCP); !slices.Equal(got, []string{"github", "search"}) {
		t.Errorf("servers = %v (builtin must be skipped)", got)
	}
	if gh := p.MCPServers[0]; gh.Command != "npx" || gh.Env["TOKEN"] != "${GITHUB_TOKEN}" {
		t.Errorf("github = %+v", gh)
	}
	if s := p.MCPServers[1]; s.Transport != canonical.TransportStreamableHTTP || s.Enabled {
		t.Errorf("search = %+v", s)
	}
	if p.Settings.Model != "gpt-4o" {
		t.Errorf("model = %q", p.Settings.Model)
	}
}

func TestWrite_MergesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := harness.WriteFile(path, []byte(fixture)); err != nil {
		t.Fatal(err)
	}

	p := &canonical.Profile{
		MCPServers: []*canonical.MCPServer{
			{Name: "postgres", Enabled: true, Transport: canonical.TransportSSE, URL: "https://pg/sse"},
		},
		Skills: []*canonical.Skill{{Name: "code-review-guide", Content: "---\nname: code-review-guide\n---\n"}},
		// agents have no Goose representation
		Agents: []*canonical.Agent{{Name: "ignored"}},
	}

	a := New()
	if err := a.Write(context.Background(), dir, p); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	first, _ := os.ReadFile(path)
	if err := a.Write(context.Background(), dir, p); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Error("repeated write is not byte-identical")
	}

	for _, want := range []string{"GOOSE_PROVIDER: openai", "developer:", "postgres:", "type: sse", "uri: https://pg/sse"} {
		if !strings.Contains(string(first), want) {
			t.Errorf("config.yaml missing %q:\n%s", want, first)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "skills", "code-review-guide", "SKILL.md")); err != nil {
		t.Errorf("skill not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "agents")); !os.IsNotExist(err) {
		t.Error("agents directory written for goose")
	}

	back, err := a.Extract(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.Names(canonical.KindMCP); !slices.Equal(got, []string{"github", "postgres", "search"}) {
		t.Errorf("servers after merge = %v", got)
	}
}
