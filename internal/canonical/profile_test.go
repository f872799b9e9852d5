package canonical

import (
	"errors"
	"slices"
	"testing"
)

func sampleProfile(t *testing.T) *Profile {
	t.Helper()
	p := New()
	mustAdd(t, p.AddMCPServer(&MCPServer{Name: "github", Enabled: true, Transport: TransportStdio, Command: "npx", Args: []string{"-y", "gh"}, Env: map[string]string{"TOKEN": "${GITHUB_TOKEN}"}}))
	mustAdd(t, p.AddMCPServer(&MCPServer{Name: "docs", Enabled: true, Transport: TransportHTTP, URL: "https://docs.example.com/mcp"}))
	mustAdd(t, p.AddSkill(&Skill{Name: "Code Review Guide", Content: "---\nname: Code Review Guide\n---\nbody\n"}))
	mustAdd(t, p.AddAgent(&Agent{Name: "reviewer", Prompt: "Review.", Tools: []string{"Read"}}))
	p.Settings = Settings{Model: "sonnet", Theme: "dark"}
	return p
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestProfile_AddRejectsDuplicates(t *testing.T) {
	p := sampleProfile(t)

	tests := []struct {
		name string
		add  func() error
	}{
		{"mcp", func() error { return p.AddMCPServer(&MCPServer{Name: "github"}) }},
		{"skill", func() error { return p.AddSkill(&Skill{Name: "Code Review Guide"}) }},
		{"agent", func() error { return p.AddAgent(&Agent{Name: "reviewer"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.add(); !errors.Is(err, ErrDuplicateName) {
				t.Errorf("error = %v, want ErrDuplicateName", err)
			}
		})
	}

	if err := p.AddCommand(&Command{Name: "deploy"}); err != nil {
		t.Errorf("AddCommand() error = %v", err)
	}
	if err := p.AddCommand(&Command{Name: "deploy"}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("AddCommand() duplicate error = %v", err)
	}
}

func TestProfile_NamesPreserveOrder(t *testing.T) {
	p := sampleProfile(t)

	if got := p.Names(KindMCP); !slices.Equal(got, []string{"github", "docs"}) {
		t.Errorf("Names(mcp) = %v", got)
	}
	if got := p.Names(KindSettings); !slices.Equal(got, []string{"model", "theme"}) {
		t.Errorf("Names(settings) = %v", got)
	}
	if got := p.Count(); got != 6 {
		t.Errorf("Count() = %d, want 6", got)
	}
	if p.Empty() {
		t.Error("Empty() = true")
	}
	if !New().Empty() {
		t.Error("New().Empty() = false")
	}
}

func TestProfile_CloneIsDeep(t *testing.T) {
	p := sampleProfile(t)
	c := p.Clone()

	c.MCPServers[0].Args[0] = "changed"
	c.MCPServers[0].Env["TOKEN"] = "changed"
	c.Agents[0].Tools[0] = "changed"
	c.Skills[0].Name = "changed"

	if p.MCPServers[0].Args[0] != "-y" || p.MCPServers[0].Env["TOKEN"] != "${GITHUB_TOKEN}" {
		t.Error("clone shares MCP server data")
	}
	if p.Agents[0].Tools[0] != "Read" {
		t.Error("clone shares agent tools")
	}
	if p.Skills[0].Name != "Code Review Guide" {
		t.Error("clone shares skills")
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"mcp", KindMCP, false},
		{"MCP-Servers", KindMCP, false},
		{"skill", KindSkills, false},
		{"Agents", KindAgents, false},
		{"command", KindCommands, false},
		{"settings", KindSettings, false},
		{"themes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	got, err := ParseKinds([]string{"skills", "skill", "mcp"})
	if err != nil || !slices.Equal(got, []Kind{KindSkills, KindMCP}) {
		t.Errorf("ParseKinds() = %v, %v", got, err)
	}
}
