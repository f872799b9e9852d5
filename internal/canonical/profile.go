package canonical

import (
	"github.com/cockroachdb/errors"
)

// ErrDuplicateName indicates a resource name already present in its collection.
var ErrDuplicateName = errors.New("duplicate resource name")

// Profile is a named bundle of harness configuration.
type Profile struct {
	MCPServers []*MCPServer `json:"mcp_servers,omitempty"`
	Skills     []*Skill     `json:"skills,omitempty"`
	Agents     []*Agent     `json:"agents,omitempty"`
	Commands   []*Command   `json:"commands,omitempty"`
	Settings   Settings     `json:"settings"`
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{}
}

// AddMCPServer appends s, rejecting a name already in use.
func (p *Profile) AddMCPServer(s *MCPServer) error {
	if p.has(KindMCP, s.Name) {
		return duplicate(KindMCP, s.Name)
	}
	p.MCPServers = append(p.MCPServers, s)
	return nil
}

// AddSkill appends s, rejecting a name already in use.
func (p *Profile) AddSkill(s *Skill) error {
	if p.has(KindSkills, s.Name) {
		return duplicate(KindSkills, s.Name)
	}
	p.Skills = append(p.Skills, s)
	return nil
}

// AddAgent appends a, rejecting a name already in use.
func (p *Profile) AddAgent(a *Agent) error {
	if p.has(KindAgents, a.Name) {
		return duplicate(KindAgents, a.Name)
	}
	p.Agents = append(p.Agents, a)
	return nil
}

// AddCommand appends c, rejecting a name already in use.
func (p *Profile) AddCommand(c *Command) error {
	if p.has(KindCommands, c.Name) {
		return duplicate(KindCommands, c.Name)
	}
	p.Commands = append(p.Commands, c)
	return nil
}

func duplicate(k Kind, name string) error {
	return errors.Wrapf(ErrDuplicateName, "%s %q", k.Singular(), name)
}

func (p *Profile) has(k Kind, name string) bool {
	for _, n := range p.Names(k) {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns the resource names of kind k in insertion order.
// Settings have no names; for KindSettings the present keys are returned.
func (p *Profile) Names(k Kind) []string {
	var names []string
	switch k {
	case KindMCP:
		for _, s := range p.MCPServers {
			names = append(names, s.Name)
		}
	case KindSkills:
		for _, s := range p.Skills {
			names = append(names, s.Name)
		}
	case KindAgents:
		for _, a := range p.Agents {
			names = append(names, a.Name)
		}
	case KindCommands:
		for _, c := range p.Commands {
			names = append(names, c.Name)
		}
	case KindSettings:
		if p.Settings.Model != "" {
			names = append(names, "model")
		}
		if p.Settings.Theme != "" {
			names = append(names, "theme")
		}
	}
	return names
}

// Len returns the number of resources of kind k.
func (p *Profile) Len(k Kind) int {
	return len(p.Names(k))
}

// Count returns the total number of resources across all kinds.
func (p *Profile) Count() int {
	n := 0
	for _, k := range kinds {
		n += p.Len(k)
	}
	return n
}

// Empty reports whether the profile holds no resources at all.
func (p *Profile) Empty() bool {
	return p.Count() == 0
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	c := &Profile{Settings: p.Settings}
	for _, s := range p.MCPServers {
		c.MCPServers = append(c.MCPServers, s.Clone())
	}
	for _, s := range p.Skills {
		c.Skills = append(c.Skills, s.Clone())
	}
	for _, a := range p.Agents {
		c.Agents = append(c.Agents, a.Clone())
	}
	for _, cmd := range p.Commands {
		c.Commands = append(c.Commands, cmd.Clone())
	}
	return c
}
