package capability

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

// Support describes whether a harness can hold a resource kind.
type Support string

const (
	Supported     Support = "supported"
	Unsupported   Support = "unsupported"
	NotApplicable Support = "not-applicable"
)

// OK reports whether resources may be written. Unsupported and
// NotApplicable are handled identically.
func (s Support) OK() bool {
	return s == Supported
}

func (s Support) valid() bool {
	switch s {
	case Supported, Unsupported, NotApplicable:
		return true
	}
	return false
}

// NamingRule constrains resource identifiers in a harness.
type NamingRule string

const (
	// Free accepts any identifier.
	Free NamingRule = "free"
	// LowercaseHyphenated accepts only [a-z0-9] runs joined by single hyphens.
	LowercaseHyphenated NamingRule = "lowercase-hyphenated"
)

func (r NamingRule) valid() bool {
	return r == Free || r == LowercaseHyphenated
}

// ErrUnknownHarness indicates a harness ID missing from the matrix.
var ErrUnknownHarness = errors.New("unknown harness")

// Descriptor is the capability record of one harness.
type Descriptor struct {
	ID             string
	Name           string
	ModelSelection bool
	Kinds          map[canonical.Kind]Support
	Naming         map[canonical.Kind]NamingRule
	// Transports maps MCP transports the harness cannot express to the
	// closest one it can.
	Transports map[canonical.Transport]canonical.Transport
	// AgentFields lists the optional agent metadata (color, model) the
	// harness can represent.
	AgentFields []string
}

// HasAgentField reports whether the harness can represent agent metadata field f.
func (d Descriptor) HasAgentField(f string) bool {
	return slices.Contains(d.AgentFields, f)
}

// Support returns the support level for kind k. Kinds absent from the
// matrix are Unsupported.
func (d Descriptor) Support(k canonical.Kind) Support {
	if s, ok := d.Kinds[k]; ok {
		return s
	}
	return Unsupported
}

// NamingRule returns the naming rule for kind k, Free when unspecified.
func (d Descriptor) NamingRule(k canonical.Kind) NamingRule {
	if r, ok := d.Naming[k]; ok {
		return r
	}
	return Free
}

// Transport returns the transport the harness uses for t.
func (d Descriptor) Transport(t canonical.Transport) canonical.Transport {
	if alias, ok := d.Transports[t]; ok {
		return alias
	}
	return t
}
