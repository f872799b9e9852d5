// Package selection narrows a profile to the resources a copy should carry.
//
// Filtering runs in a fixed order: kind-level include/exclude, then
// per-resource selection entries within each surviving kind, then the
// removal of disabled MCP servers that no entry re-enabled by exact name.
// The package never touches a terminal; interactive front ends produce a
// [Selection] value and hand it over.
package selection

import (
	"slices"
	"strings"

	"github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

var (
	// ErrNothingToCopy indicates the filters left no resources.
	ErrNothingToCopy = errors.New("nothing to copy")

	// ErrInvalidEntry indicates a malformed kind:name selection entry.
	ErrInvalidEntry = errors.New("invalid selection entry")
)

// Selection restricts resources per kind. Each entry is an exact name or
// a wildcard pattern (* and ?). A kind without entries is not restricted.
type Selection map[canonical.Kind][]string

// ParseSelection parses entries of the form kind:name.
func ParseSelection(entries []string) (Selection, error) {
	sel := make(Selection)
	for _, entry := range entries {
		kindName, name, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Wrapf(ErrInvalidEntry, "%q (want kind:name)", entry)
		}
		kind, err := canonical.ParseKind(kindName)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidEntry, "%q: %v", entry, err)
		}
		sel.Add(kind, name)
	}
	return sel, nil
}

// Add appends entry to kind k, ignoring duplicates.
func (s Selection) Add(k canonical.Kind, entry string) {
	if !slices.Contains(s[k], entry) {
		s[k] = append(s[k], entry)
	}
}

// Restricts reports whether the selection has entries for kind k.
func (s Selection) Restricts(k canonical.Kind) bool {
	return len(s[k]) > 0
}

// Matches reports whether name is selected within kind k. Unrestricted
// kinds match everything.
func (s Selection) Matches(k canonical.Kind, name string) bool {
	if !s.Restricts(k) {
		return true
	}
	for _, entry := range s[k] {
		if entry == name || (isPattern(entry) && wildcard.Match(entry, name)) {
			return true
		}
	}
	return false
}

// Exact reports whether name is listed verbatim (not through a pattern)
// for kind k.
func (s Selection) Exact(k canonical.Kind, name string) bool {
	for _, entry := range s[k] {
		if !isPattern(entry) && entry == name {
			return true
		}
	}
	return false
}

func isPattern(entry string) bool {
	return strings.ContainsAny(entry, "*?")
}

// Options controls which resources survive filtering.
type Options struct {
	// Include, when non-empty, keeps only these kinds and overrides Exclude.
	Include []canonical.Kind
	Exclude []canonical.Kind
	// Selection restricts resources within the surviving kinds.
	Selection Selection
}

// Kinds returns the kinds that pass the include/exclude filter, in
// processing order.
func (o Options) Kinds() []canonical.Kind {
	var out []canonical.Kind
	for _, k := range canonical.Kinds() {
		if len(o.Include) > 0 {
			if slices.Contains(o.Include, k) {
				out = append(out, k)
			}
			continue
		}
		if !slices.Contains(o.Exclude, k) {
			out = append(out, k)
		}
	}
	return out
}

// Apply returns a new profile holding the resources of p that pass the
// filters. p is not modified. It returns ErrNothingToCopy when nothing
// survives.
func Apply(p *canonical.Profile, opts Options) (*canonical.Profile, error) {
	sel := opts.Selection
	out := canonical.New()

	for _, k := range opts.Kinds() {
		switch k {
		case canonical.KindMCP:
			for _, s := range p.MCPServers {
				if !sel.Matches(k, s.Name) {
					continue
				}
				c := s.Clone()
				if !s.Enabled {
					if !sel.Exact(k, s.Name) {
						continue
					}
					c.Enabled = true
				}
				out.MCPServers = append(out.MCPServers, c)
			}
		case canonical.KindSkills:
			for _, s := range p.Skills {
				if sel.Matches(k, s.Name) {
					out.Skills = append(out.Skills, s.Clone())
				}
			}
		case canonical.KindAgents:
			for _, a := range p.Agents {
				if sel.Matches(k, a.Name) {
					out.Agents = append(out.Agents, a.Clone())
				}
			}
		case canonical.KindCommands:
			for _, c := range p.Commands {
				if sel.Matches(k, c.Name) {
					out.Commands = append(out.Commands, c.Clone())
				}
			}
		case canonical.KindSettings:
			if p.Settings.Model != "" && sel.Matches(k, "model") {
				out.Settings.Model = p.Settings.Model
			}
			if p.Settings.Theme != "" && sel.Matches(k, "theme") {
				out.Settings.Theme = p.Settings.Theme
			}
		}
	}

	if out.Empty() {
		return nil, ErrNothingToCopy
	}
	return out, nil
}
