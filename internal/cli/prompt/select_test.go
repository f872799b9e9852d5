package prompt

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/selection"
)

var testItems = []Item{
	{Kind: canonical.KindMCP, Name: "github"},
	{Kind: canonical.KindMCP, Name: "legacy", Disabled: true},
	{Kind: canonical.KindSkills, Name: "code-review"},
	{Kind: canonical.KindAgents, Name: "planner"},
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestPick_EmptyList(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{})
	if _, err := s.Pick(nil); !errors.Is(err, ErrNoResources) {
		t.Errorf("expected ErrNoResources, got: %v", err)
	}
}

func TestPick_ValidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"default on empty", "\n", []string{"github", "legacy", "code-review", "planner"}},
		{"all keyword", "ALL\n", []string{"github", "legacy", "code-review", "planner"}},
		{"single", "3\n", []string{"code-review"}},
		{"list and range", "4, 1-2\n", []string{"github", "legacy", "planner"}},
		{"duplicates collapse", "1,1,1-1\n", []string{"github"}},
		{"no trailing newline", "2", []string{"legacy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)
			got, err := s.Pick(testItems)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(names(got), tt.want) {
				t.Errorf("Pick() = %v, want %v", names(got), tt.want)
			}
			if !strings.Contains(buf.String(), "[2] mcp: legacy (disabled)") {
				t.Errorf("prompt output missing item listing:\n%s", buf.String())
			}
		})
	}
}

func TestPick_InvalidSelection(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"abc\n", "0\n", "5\n", "3-1\n", "1-x\n", ",\n"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			t.Parallel()

			s := NewSelectorWithIO(strings.NewReader(input), &bytes.Buffer{})
			if _, err := s.Pick(testItems); !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("Pick(%q) error = %v, want ErrInvalidSelection", input, err)
			}
		})
	}
}

func TestPick_Cancelled(t *testing.T) {
	t.Parallel()

	s := NewSelectorWithIO(strings.NewReader(""), &bytes.Buffer{})
	if _, err := s.Pick(testItems); !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("expected ErrSelectionCancelled, got: %v", err)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		def     bool
		want    bool
		wantErr error
	}{
		{"\n", true, true, nil},
		{"\n", false, false, nil},
		{"y\n", false, true, nil},
		{"No\n", true, false, nil},
		{"maybe\n", true, false, ErrInvalidSelection},
		{"", true, false, ErrSelectionCancelled},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)
		got, err := s.Confirm("Overwrite?", tt.def)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Confirm(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, %v", tt.input, tt.def, got, err)
		}
		if !strings.HasPrefix(buf.String(), "Overwrite? [") {
			t.Errorf("prompt = %q", buf.String())
		}
	}
}

func TestItems(t *testing.T) {
	p := canonical.New()
	_ = p.AddMCPServer(&canonical.MCPServer{Name: "github", Enabled: true, Transport: canonical.TransportStdio, Command: "gh"})
	_ = p.AddMCPServer(&canonical.MCPServer{Name: "legacy", Transport: canonical.TransportStdio, Command: "old"})
	_ = p.AddSkill(&canonical.Skill{Name: "lint"})
	_ = p.AddAgent(&canonical.Agent{Name: "planner"})
	p.Settings.Model = "sonnet"

	got := Items(p, []canonical.Kind{canonical.KindSettings, canonical.KindMCP, canonical.KindSkills})
	want := []Item{
		{Kind: canonical.KindMCP, Name: "github"},
		{Kind: canonical.KindMCP, Name: "legacy", Disabled: true},
		{Kind: canonical.KindSkills, Name: "lint"},
		{Kind: canonical.KindSettings, Name: "model"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Items() = %+v", got)
	}
}

func TestOptions_KeepsExactlyPicked(t *testing.T) {
	p := canonical.New()
	_ = p.AddMCPServer(&canonical.MCPServer{Name: "github", Enabled: true, Transport: canonical.TransportStdio, Command: "gh"})
	_ = p.AddMCPServer(&canonical.MCPServer{Name: "legacy", Transport: canonical.TransportStdio, Command: "old"})
	_ = p.AddSkill(&canonical.Skill{Name: "lint"})
	_ = p.AddAgent(&canonical.Agent{Name: "planner"})

	opts := Options([]Item{
		{Kind: canonical.KindMCP, Name: "legacy", Disabled: true},
		{Kind: canonical.KindAgents, Name: "planner"},
	})
	out, err := selection.Apply(p, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Names(canonical.KindMCP); !slices.Equal(got, []string{"legacy"}) {
		t.Errorf("servers = %v", got)
	}
	if !out.MCPServers[0].Enabled {
		t.Error("picked disabled server not re-enabled")
	}
	if len(out.Skills) != 0 {
		t.Errorf("unpicked skills kept: %v", out.Names(canonical.KindSkills))
	}
	if got := out.Names(canonical.KindAgents); !slices.Equal(got, []string{"planner"}) {
		t.Errorf("agents = %v", got)
	}
}
