package canonical

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies a category of configuration resource.
type Kind string

const (
	KindMCP      Kind = "mcp"
	KindSkills   Kind = "skills"
	KindAgents   Kind = "agents"
	KindCommands Kind = "commands"
	KindSettings Kind = "settings"
)

// ErrUnknownKind is returned by ParseKind for unrecognized kind names.
var ErrUnknownKind = errors.New("unknown resource kind")

var kinds = []Kind{KindMCP, KindSkills, KindAgents, KindCommands, KindSettings}

// Kinds returns every kind in processing order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind converts a user-supplied kind name. Singular and plural
// spellings are both accepted, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mcp", "mcps", "mcp-server", "mcp-servers", "mcp_servers":
		return KindMCP, nil
	case "skill", "skills":
		return KindSkills, nil
	case "agent", "agents":
		return KindAgents, nil
	case "command", "commands":
		return KindCommands, nil
	case "setting", "settings":
		return KindSettings, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// ParseKinds parses a list of kind names, dropping duplicates.
func ParseKinds(names []string) ([]Kind, error) {
	var out []Kind
	seen := make(map[Kind]bool, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// Named reports whether resources of this kind carry an identifier that
// may be subject to a naming rule.
func (k Kind) Named() bool {
	return k == KindSkills || k == KindAgents || k == KindCommands
}

// Singular returns the human-readable singular noun for the kind.
func (k Kind) Singular() string {
	switch k {
	case KindMCP:
		return "MCP server"
	case KindSkills:
		return "skill"
	case KindAgents:
		return "agent"
	case KindCommands:
		return "command"
	case KindSettings:
		return "setting"
	}
	return string(k)
}
