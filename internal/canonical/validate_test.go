package canonical

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		profile   *Profile
		wantPaths []string
	}{
		{
			name: "valid",
			profile: &Profile{
				MCPServers: []*MCPServer{
					{Name: "a", Transport: TransportStdio, Command: "run"},
					{Name: "b", Transport: TransportSSE, URL: "https://${HOST}/sse"},
				},
				Agents: []*Agent{{Name: "x", Tools: []string{"Read"}}},
			},
		},
		{
			name: "stdio without command",
			profile: &Profile{MCPServers: []*MCPServer{
				{Name: "a", Transport: TransportStdio},
			}},
			wantPaths: []string{"mcp[a].command"},
		},
		{
			name: "remote with command and no url",
			profile: &Profile{MCPServers: []*MCPServer{
				{Name: "a", Transport: TransportHTTP, Command: "run"},
			}},
			wantPaths: []string{"mcp[a].url", "mcp[a].command"},
		},
		{
			name: "unknown transport",
			profile: &Profile{MCPServers: []*MCPServer{
				{Name: "a", Transport: "carrier-pigeon", URL: "x"},
			}},
			wantPaths: []string{"mcp[a].transport"},
		},
		{
			name:      "missing skill name",
			profile:   &Profile{Skills: []*Skill{{Content: "x"}}},
			wantPaths: []string{"skills[0].name"},
		},
		{
			name:      "duplicate commands",
			profile:   &Profile{Commands: []*Command{{Name: "c"}, {Name: "c"}}},
			wantPaths: []string{"commands[c]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.profile)
			if len(tt.wantPaths) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			for _, want := range tt.wantPaths {
				found := false
				for _, p := range verr.Problems {
					if p.Path == want {
						found = true
					}
				}
				if !found {
					t.Errorf("missing problem at %s in %v", want, verr)
				}
			}
			if !strings.HasPrefix(err.Error(), "invalid profile: ") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}
