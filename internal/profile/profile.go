// Package profile manages the profile store: one directory per profile,
// grouped by harness.
package profile

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gosimple/slug"

	"github.com/kaiiiiiiiii/bridle/internal/copier"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/paths"
	"github.com/kaiiiiiiiii/bridle/internal/report"
)

var (
	// ErrInvalidName indicates a profile name that is not a slug.
	ErrInvalidName = errors.New("invalid profile name")

	// ErrExists indicates the profile already exists.
	ErrExists = errors.New("profile already exists")

	// ErrNotFound indicates the profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrNoLiveConfig indicates the harness has no live configuration
	// directory to capture.
	ErrNoLiveConfig = errors.New("no live configuration found")
)

// ValidateName checks that name is a lowercase slug such as "work" or
// "client-a".
func ValidateName(name string) error {
	if !slug.IsSlug(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// Suggest returns the slug form of name, or "" when nothing usable remains.
func Suggest(name string) string {
	return slug.Make(name)
}

// Manager reads and writes profiles under a root directory laid out as
// <root>/<harness>/<profile>.
type Manager struct {
	root     string
	resolver *harness.Resolver
	liveDir  func(harness string) string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLiveDir overrides how live harness configuration directories are
// located.
func WithLiveDir(fn func(harness string) string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.liveDir = fn
		}
	}
}

// NewManager returns a Manager rooted at root. The resolver supplies the
// adapters used to capture live configuration.
func NewManager(root string, resolver *harness.Resolver, opts ...Option) *Manager {
	m := &Manager{
		root:     root,
		resolver: resolver,
		liveDir:  paths.LiveConfigDir,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the store root.
func (m *Manager) Root() string {
	return m.root
}

// Path returns the directory of profile name for harness h.
func (m *Manager) Path(h, name string) string {
	return filepath.Join(m.root, h, name)
}

// Exists reports whether the profile directory exists.
func (m *Manager) Exists(h, name string) bool {
	info, err := os.Stat(m.Path(h, name))
	return err == nil && info.IsDir()
}

// List returns the profile names of harness h in sorted order. Hidden
// entries, such as staging directories, are ignored.
func (m *Manager) List(h string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.root, h))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "listing %s profiles", h)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Create makes an empty profile.
func (m *Manager) Create(h, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	dir := m.Path(h, name)
	if m.Exists(h, name) {
		return "", errors.Wrapf(ErrExists, "%s/%s", h, name)
	}
	if err := paths.EnsureDir(dir, 0); err != nil {
		return "", errors.Wrap(err, "creating profile directory")
	}
	return dir, nil
}

// CreateFromCurrent makes a profile holding the resources found in the
// harness's live configuration directory.
func (m *Manager) CreateFromCurrent(ctx context.Context, h, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	adapter, err := m.resolver.Get(h)
	if err != nil {
		return "", err
	}
	live := m.liveDir(h)
	if live == "" {
		return "", errors.Wrapf(ErrNoLiveConfig, "%s", h)
	}

	p, err := adapter.Extract(ctx, live)
	if err != nil {
		if errors.Is(err, harness.ErrNotFound) {
			return "", errors.Wrapf(ErrNoLiveConfig, "%s: %s", h, live)
		}
		return "", errors.Wrapf(err, "reading live %s configuration", h)
	}

	dir, err := m.Create(h, name)
	if err != nil {
		return "", err
	}
	if err := adapter.Write(ctx, dir, p); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// Delete removes a profile and everything in it.
func (m *Manager) Delete(h, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !m.Exists(h, name) {
		return errors.Wrapf(ErrNotFound, "%s/%s", h, name)
	}
	return errors.Wrap(os.RemoveAll(m.Path(h, name)), "deleting profile")
}

// LiveDir returns the live configuration directory of harness h, or "" when
// the harness has none on this platform.
func (m *Manager) LiveDir(h string) string {
	return m.liveDir(h)
}

// Switch makes profile name the live configuration of harness h. Unless
// active is empty or equal to name, the live directory is first saved
// into the active profile so edits made since it was applied are kept.
// The live directory is then replaced wholesale by the profile's files.
func (m *Manager) Switch(ctx context.Context, h, active, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !m.Exists(h, name) {
		return errors.Wrapf(ErrNotFound, "%s/%s", h, name)
	}
	live := m.liveDir(h)
	if live == "" {
		return errors.Wrapf(ErrNoLiveConfig, "%s", h)
	}
	liveID := report.Identity{Harness: h}

	if active != "" && active != name && m.Exists(h, active) {
		if info, err := os.Stat(live); err == nil && info.IsDir() {
			if err := copier.ReplaceDir(ctx, live, m.Path(h, active), liveID, report.Identity{Harness: h, Profile: active}); err != nil {
				return errors.Wrapf(err, "saving live configuration to %s/%s", h, active)
			}
		}
	}

	if err := copier.ReplaceDir(ctx, m.Path(h, name), live, report.Identity{Harness: h, Profile: name}, liveID); err != nil {
		return errors.Wrapf(err, "applying %s/%s", h, name)
	}
	return nil
}
