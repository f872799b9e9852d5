package transform

import (
	"slices"
	"strings"
	"testing"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
)

func target(t *testing.T, source, dest string) Target {
	t.Helper()
	d, err := capability.Default().Descriptor(dest)
	if err != nil {
		t.Fatal(err)
	}
	return Target{Source: source, Descriptor: d, Tools: capability.Default()}
}

func TestEngine_SkillCollision(t *testing.T) {
	e := NewEngine(target(t, "claude-code", "goose"))

	first, o1 := e.Skill(&canonical.Skill{Name: "Code Review", Content: "---\nname: Code Review\n---\nbody\n"})
	second, o2 := e.Skill(&canonical.Skill{Name: "code-review", Content: "---\nname: code-review\n---\nbody\n"})

	if o1.Status != Transformed || o1.NewName != "code-review" || o1.OriginalName != "Code Review" {
		t.Errorf("first outcome = %+v", o1)
	}
	if o2.Status != Warned || o2.NewName != "code-review-2" || o2.OriginalName != "code-review" {
		t.Errorf("second outcome = %+v", o2)
	}
	if first.Name != "code-review" || second.Name != "code-review-2" {
		t.Errorf("names = %q, %q", first.Name, second.Name)
	}
	if !strings.Contains(first.Content, "name: code-review\n") {
		t.Errorf("frontmatter not rewritten: %q", first.Content)
	}
	if !strings.Contains(second.Content, "name: code-review-2\n") {
		t.Errorf("frontmatter not rewritten: %q", second.Content)
	}
}

func TestEngine_NamingRules(t *testing.T) {
	tests := []struct {
		name        string
		dest        string
		noTransform bool
		in          string
		wantStatus  Status
		wantName    string
	}{
		{"free rule copies", "opencode", false, "Deploy Now", Copied, "Deploy Now"},
		{"sanitize renames", "gemini", false, "Deploy Now", Transformed, "deploy-now"},
		{"valid name copies", "gemini", false, "deploy", Copied, "deploy"},
		{"no transform keeps invalid name", "gemini", true, "Deploy Now", Warned, "Deploy Now"},
		{"no transform valid name", "gemini", true, "deploy", Copied, "deploy"},
		{"free rule renames path separators", "opencode", false, "team/reviewer", Warned, "team-reviewer"},
		{"no transform renames path separators", "gemini", true, `ops\deploy`, Warned, "ops-deploy"},
		{"free rule renames dot dot", "opencode", false, "..", Warned, Unnamed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := target(t, "claude-code", tt.dest)
			tg.NoTransform = tt.noTransform
			e := NewEngine(tg)

			cmd, o := e.Command(&canonical.Command{Name: tt.in, Content: "Do it."})
			if o.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s (%s)", o.Status, tt.wantStatus, o.Note)
			}
			if cmd.Name != tt.wantName || o.NewName != tt.wantName {
				t.Errorf("name = %q / %q, want %q", cmd.Name, o.NewName, tt.wantName)
			}
			if cmd.Content != "Do it." {
				t.Errorf("content changed: %q", cmd.Content)
			}
		})
	}
}

func TestEngine_MCPServer(t *testing.T) {
	e := NewEngine(target(t, "claude-code", "opencode"))
	in := &canonical.MCPServer{Name: "Postgres DB", Transport: canonical.TransportSSE, URL: "https://db/sse", Env: map[string]string{"T": "${TOKEN}"}}

	out, o := e.MCPServer(in)
	if o.Status != Copied {
		t.Errorf("status = %s", o.Status)
	}
	if out.Name != "Postgres DB" {
		t.Errorf("server key renamed to %q", out.Name)
	}
	if out.Transport != canonical.TransportHTTP {
		t.Errorf("transport = %s, want http", out.Transport)
	}
	if in.Transport != canonical.TransportSSE {
		t.Error("input mutated")
	}
	if out.Env["T"] != "${TOKEN}" {
		t.Errorf("env placeholder changed: %q", out.Env["T"])
	}
}

func TestEngine_Agent(t *testing.T) {
	e := NewEngine(target(t, "claude-code", "opencode"))
	in := &canonical.Agent{
		Name:   "code-reviewer",
		Prompt: "Review.",
		Tools:  []string{"Read", "Grep", "mcp__github__search"},
		Color:  "blue",
		Model:  "sonnet",
	}

	out, o := e.Agent(in)
	if o.Status != Warned {
		t.Fatalf("status = %s, want warned", o.Status)
	}
	if !strings.Contains(o.Note, "passed through: mcp__github__search") {
		t.Errorf("note = %q", o.Note)
	}
	if want := []string{"read", "grep", "mcp__github__search"}; !slices.Equal(out.Tools, want) {
		t.Errorf("tools = %v, want %v", out.Tools, want)
	}
	if out.Color != "" {
		t.Errorf("color kept: %q", out.Color)
	}
	if out.Model != "sonnet" {
		t.Errorf("model dropped")
	}
	if in.Tools[0] != "Read" {
		t.Error("input mutated")
	}
}

func TestEngine_AgentAllToolsMapped(t *testing.T) {
	e := NewEngine(target(t, "opencode", "claude-code"))
	out, o := e.Agent(&canonical.Agent{Name: "helper", Tools: []string{"bash", "webfetch"}, Color: "red"})
	if o.Status != Copied {
		t.Errorf("status = %s (%s)", o.Status, o.Note)
	}
	if !slices.Equal(out.Tools, []string{"Bash", "WebFetch"}) {
		t.Errorf("tools = %v", out.Tools)
	}
	if out.Color != "red" {
		t.Errorf("color = %q", out.Color)
	}
}

func TestEngine_Settings(t *testing.T) {
	e := NewEngine(target(t, "claude-code", "goose"))
	out, outcomes := e.Settings(canonical.Settings{Model: "gpt-4o", Theme: "dark"})

	if out.Model != "gpt-4o" || out.Theme != "" {
		t.Errorf("settings = %+v", out)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	if outcomes[0].Status != Copied || outcomes[0].OriginalName != SettingModel {
		t.Errorf("model outcome = %+v", outcomes[0])
	}
	if outcomes[1].Status != Skipped || outcomes[1].OriginalName != SettingTheme {
		t.Errorf("theme outcome = %+v", outcomes[1])
	}

	noModel := NewEngine(Target{Descriptor: capability.Descriptor{ID: "x"}})
	_, outcomes = noModel.Settings(canonical.Settings{Model: "m"})
	if len(outcomes) != 1 || outcomes[0].Status != Skipped {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestUnsupported(t *testing.T) {
	o := Unsupported("code-reviewer")
	if o.Status != Skipped || o.Note != NoteUnsupported || o.OriginalName != "code-reviewer" {
		t.Errorf("Unsupported() = %+v", o)
	}
}
