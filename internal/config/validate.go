package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidHarness indicates an unrecognized harness ID.
	ErrInvalidHarness = errors.New("invalid harness")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidKind indicates an unknown resource kind in copy.exclude.
	ErrInvalidKind = errors.New("invalid resource kind")

	// ErrInvalidLogFormat indicates a log_format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if err := validatePath(cfg.ProfilesDir); err != nil {
		errs = append(errs, &PathError{Field: "profiles_dir", Path: cfg.ProfilesDir, Err: err})
	}

	switch cfg.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, errors.Wrapf(ErrInvalidLogFormat, "%q", cfg.LogFormat))
	}

	reg := capability.Default()
	for _, h := range sortedKeys(cfg.Active) {
		if !reg.Known(h) {
			errs = append(errs, &HarnessError{Harness: h, Err: ErrInvalidHarness})
		}
	}

	for _, k := range cfg.Copy.Exclude {
		if _, err := canonical.ParseKind(k); err != nil {
			errs = append(errs, errors.Wrapf(ErrInvalidKind, "copy.exclude: %q", k))
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// ExcludedKinds parses copy.exclude. Unknown kinds are reported by Validate
// and skipped here.
func (c *Config) ExcludedKinds() []canonical.Kind {
	var out []canonical.Kind
	for _, k := range c.Copy.Exclude {
		if kind, err := canonical.ParseKind(k); err == nil {
			out = append(out, kind)
		}
	}
	return out
}

// HarnessError represents an error for a specific harness key.
type HarnessError struct {
	Harness string
	Err     error
}

func (e *HarnessError) Error() string {
	return e.Err.Error() + ": " + e.Harness
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
