// Package cli provides CLI-specific wiring for the bridle command.
package cli

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/harness/claude"
	"github.com/kaiiiiiiiii/bridle/internal/harness/gemini"
	"github.com/kaiiiiiiiii/bridle/internal/harness/goose"
	"github.com/kaiiiiiiiii/bridle/internal/harness/opencode"
	"github.com/kaiiiiiiiii/bridle/internal/paths"
)

// ErrUnknownHarness is returned when an unknown harness ID is provided.
var ErrUnknownHarness = errors.New("unknown harness")

// Resolver returns a resolver holding every built-in harness adapter.
// Adapters are wired here rather than in package harness, which the
// adapter packages import.
func Resolver() *harness.Resolver {
	return harness.NewResolver(
		claude.New(),
		opencode.New(),
		goose.New(),
		gemini.New(),
	)
}

// HarnessInfo describes a harness for display.
type HarnessInfo struct {
	capability.Descriptor

	// LiveDir is the harness's own configuration directory.
	LiveDir string

	// Installed reports whether LiveDir exists.
	Installed bool
}

// ValidateHarness checks that id names a harness with both a capability
// record and an adapter.
func ValidateHarness(id string) error {
	reg := capability.Default()
	if !reg.Known(id) {
		return errors.Wrapf(ErrUnknownHarness, "%q (valid: %s)", id, strings.Join(reg.Harnesses(), ", "))
	}
	if _, err := Resolver().Get(id); err != nil {
		return errors.Mark(err, ErrUnknownHarness)
	}
	return nil
}

// Harnesses describes every known harness in registry order.
func Harnesses() ([]HarnessInfo, error) {
	reg := capability.Default()
	infos := make([]HarnessInfo, 0, len(reg.Harnesses()))
	for _, id := range reg.Harnesses() {
		info, err := Harness(id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Harness describes the harness id.
func Harness(id string) (HarnessInfo, error) {
	if err := ValidateHarness(id); err != nil {
		return HarnessInfo{}, err
	}
	d, err := capability.Default().Descriptor(id)
	if err != nil {
		return HarnessInfo{}, err
	}
	info := HarnessInfo{Descriptor: d, LiveDir: paths.LiveConfigDir(id)}
	if info.LiveDir != "" {
		if st, err := os.Stat(info.LiveDir); err == nil && st.IsDir() {
			info.Installed = true
		}
	}
	return info, nil
}
