package harness

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

var (
	// ErrNotFound indicates the profile directory does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrWrite marks failures while writing a profile.
	ErrWrite = errors.New("writing profile")

	// ErrUnknownHarness indicates no adapter is registered for an ID.
	ErrUnknownHarness = errors.New("no adapter for harness")
)

// Adapter converts between a harness's native profile directory and the
// canonical model.
type Adapter interface {
	// ID returns the harness identifier, e.g. "claude-code".
	ID() string

	// Extract reads the profile stored in dir. It returns ErrNotFound when
	// dir does not exist.
	Extract(ctx context.Context, dir string) (*canonical.Profile, error)

	// Write merges p into dir, which must exist. Errors are marked with
	// ErrWrite.
	Write(ctx context.Context, dir string, p *canonical.Profile) error
}

// ConfigFiler is implemented by adapters whose profiles have one primary
// configuration file, relative to the profile directory.
type ConfigFiler interface {
	ConfigFile() string
}

// Resolver maps harness IDs to adapters.
type Resolver struct {
	order    []string
	adapters map[string]Adapter
}

// NewResolver returns a resolver over adapters. Later adapters replace
// earlier ones with the same ID.
func NewResolver(adapters ...Adapter) *Resolver {
	r := &Resolver{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.ID()]; !dup {
			r.order = append(r.order, a.ID())
		}
		r.adapters[a.ID()] = a
	}
	return r
}

// Get returns the adapter for id.
func (r *Resolver) Get(id string) (Adapter, error) {
	a, ok := r.adapters[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHarness, "%q (known: %s)", id, strings.Join(r.order, ", "))
	}
	return a, nil
}

// IDs returns the registered harness IDs in registration order.
func (r *Resolver) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// WriteError marks err as a write failure.
func WriteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrWrite)
}
