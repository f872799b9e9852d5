package capability

import (
	_ "embed"
	"maps"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

//go:embed matrix.yaml
var matrixData []byte

// Registry is an immutable capability matrix.
type Registry struct {
	order       []string
	descriptors map[string]Descriptor
	// tools maps harness -> tool name -> row index in the tool table.
	tools map[string]map[string]int
	rows  []map[string]string
}

type matrixFile struct {
	Harnesses []struct {
		ID             string            `yaml:"id"`
		Name           string            `yaml:"name"`
		ModelSelection bool              `yaml:"model_selection"`
		Kinds          map[string]string `yaml:"kinds"`
		Naming         map[string]string `yaml:"naming"`
		Transports     map[string]string `yaml:"transports"`
		AgentFields    []string          `yaml:"agent_fields"`
	} `yaml:"harnesses"`
	Tools []map[string]string `yaml:"tools"`
}

// Default returns the registry built from the embedded matrix.
// The matrix is parsed once per process.
var Default = sync.OnceValue(func() *Registry {
	r, err := Load(matrixData)
	if err != nil {
		panic(errors.Wrap(err, "embedded capability matrix"))
	}
	return r
})

// Load builds a registry from matrix YAML.
func Load(data []byte) (*Registry, error) {
	var mf matrixFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "parsing capability matrix")
	}

	r := &Registry{
		descriptors: make(map[string]Descriptor, len(mf.Harnesses)),
		tools:       make(map[string]map[string]int),
	}

	for _, h := range mf.Harnesses {
		if h.ID == "" {
			return nil, errors.New("harness entry without id")
		}
		if _, dup := r.descriptors[h.ID]; dup {
			return nil, errors.Newf("harness %q listed twice", h.ID)
		}

		d := Descriptor{
			ID:             h.ID,
			Name:           h.Name,
			ModelSelection: h.ModelSelection,
			AgentFields:    slices.Clone(h.AgentFields),
			Kinds:          make(map[canonical.Kind]Support, len(h.Kinds)),
			Naming:         make(map[canonical.Kind]NamingRule, len(h.Naming)),
			Transports:     make(map[canonical.Transport]canonical.Transport, len(h.Transports)),
		}
		for k, v := range h.Kinds {
			kind, err := canonical.ParseKind(k)
			if err != nil {
				return nil, errors.Wrapf(err, "harness %s", h.ID)
			}
			s := Support(v)
			if !s.valid() {
				return nil, errors.Newf("harness %s: invalid support %q for %s", h.ID, v, k)
			}
			d.Kinds[kind] = s
		}
		for k, v := range h.Naming {
			kind, err := canonical.ParseKind(k)
			if err != nil {
				return nil, errors.Wrapf(err, "harness %s", h.ID)
			}
			rule := NamingRule(v)
			if !rule.valid() {
				return nil, errors.Newf("harness %s: invalid naming rule %q for %s", h.ID, v, k)
			}
			d.Naming[kind] = rule
		}
		for from, to := range h.Transports {
			d.Transports[canonical.Transport(from)] = canonical.Transport(to)
		}

		r.order = append(r.order, h.ID)
		r.descriptors[h.ID] = d
	}

	for i, row := range mf.Tools {
		for harness, tool := range row {
			if _, ok := r.descriptors[harness]; !ok {
				return nil, errors.Wrapf(ErrUnknownHarness, "tool table row %d: %q", i, harness)
			}
			if r.tools[harness] == nil {
				r.tools[harness] = make(map[string]int)
			}
			r.tools[harness][tool] = i
		}
		r.rows = append(r.rows, maps.Clone(row))
	}

	return r, nil
}

// Harnesses returns every harness ID in matrix order.
func (r *Registry) Harnesses() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Known reports whether harness is in the matrix.
func (r *Registry) Known(harness string) bool {
	_, ok := r.descriptors[harness]
	return ok
}

// Descriptor returns the capability record of harness. The returned maps
// are copies.
func (r *Registry) Descriptor(harness string) (Descriptor, error) {
	d, ok := r.descriptors[harness]
	if !ok {
		return Descriptor{}, errors.Wrapf(ErrUnknownHarness, "%q", harness)
	}
	d.Kinds = maps.Clone(d.Kinds)
	d.Naming = maps.Clone(d.Naming)
	d.Transports = maps.Clone(d.Transports)
	d.AgentFields = slices.Clone(d.AgentFields)
	return d, nil
}

// Supports reports whether harness can hold resources of kind k.
// Unknown harnesses support nothing.
func (r *Registry) Supports(harness string, k canonical.Kind) bool {
	d, ok := r.descriptors[harness]
	return ok && d.Support(k).OK()
}

// NamingRule returns the naming rule harness applies to kind k.
func (r *Registry) NamingRule(harness string, k canonical.Kind) NamingRule {
	d, ok := r.descriptors[harness]
	if !ok {
		return Free
	}
	return d.NamingRule(k)
}

// ToolName translates an agent tool name from one harness's vocabulary to
// another's. ok is false when the tool is unknown in from or has no
// equivalent in to.
func (r *Registry) ToolName(from, to, tool string) (string, bool) {
	idx, ok := r.tools[from][tool]
	if !ok {
		return "", false
	}
	name, ok := r.rows[idx][to]
	return name, ok
}
