package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/cli"
	"github.com/kaiiiiiiiii/bridle/internal/copier"
	"github.com/kaiiiiiiiii/bridle/internal/harness"
	"github.com/kaiiiiiiiii/bridle/internal/profile"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// ConfigCheck reports whether the configuration file loaded.
type ConfigCheck struct {
	// Path is the configuration file location.
	Path string
	// LoadErr is the error returned when loading Path, if any.
	LoadErr error
}

var _ Check = (*ConfigCheck)(nil)

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return "config" }

func (c *ConfigCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}
	switch {
	case c.LoadErr != nil:
		result.Status = SeverityError
		result.Message = "configuration is invalid: " + c.LoadErr.Error()
		result.FixHint = "Edit " + c.Path
	case !fileutil.Exists(c.Path):
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("no configuration file at %s, using defaults", c.Path)
	default:
		result.Status = SeverityPass
		result.Message = "configuration is valid"
	}
	return result
}

// HarnessCheck reports which harnesses are installed.
type HarnessCheck struct {
	Harnesses []cli.HarnessInfo
}

var _ Check = (*HarnessCheck)(nil)

func (c *HarnessCheck) Name() string     { return "harnesses" }
func (c *HarnessCheck) Category() string { return "harness" }

func (c *HarnessCheck) Run(context.Context) *CheckResult {
	details := make(map[string]any, len(c.Harnesses))
	var installed, names []string
	for _, h := range c.Harnesses {
		names = append(names, h.Name)
		dir := h.LiveDir
		if !h.Installed {
			dir = "not found"
		} else {
			installed = append(installed, h.ID)
		}
		details[h.ID] = dir
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  details,
	}
	if len(installed) == 0 {
		result.Status = SeverityWarning
		result.Message = "no supported harness is installed"
		result.FixHint = "Install one of: " + strings.Join(names, ", ")
		return result
	}
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%d of %d harnesses installed (%s)",
		len(installed), len(c.Harnesses), strings.Join(installed, ", "))
	return result
}

// StoreCheck inspects the profile store for interrupted copies and
// leftover staging directories, and the live directories for interrupted
// switches.
type StoreCheck struct {
	fixer

	// Root is the profile store directory.
	Root string
	// Harnesses lists the harness directories to inspect.
	Harnesses []string
	// LiveDirs lists live configuration directories that profile switches
	// write to.
	LiveDirs []string
}

var (
	_ Check = (*StoreCheck)(nil)
	_ Fixer = (*StoreCheck)(nil)
)

func (c *StoreCheck) Name() string     { return "profile-store" }
func (c *StoreCheck) Category() string { return "store" }

func (c *StoreCheck) Run(context.Context) *CheckResult {
	c.setIssues(nil)

	info, err := os.Stat(c.Root)
	if errors.Is(err, os.ErrNotExist) {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  fmt.Sprintf("profile store %s does not exist yet", c.Root),
		}
	}

	var issues []issue
	switch {
	case err != nil:
		issues = append(issues, issue{Path: c.Root, Problem: "cannot stat profile store: " + err.Error(), Severity: SeverityError})
	case !info.IsDir():
		issues = append(issues, issue{Path: c.Root, Problem: "profile store is not a directory", Severity: SeverityError})
	case !writable(c.Root):
		issues = append(issues, issue{
			Path:     c.Root,
			Problem:  "profile store is not writable",
			Severity: SeverityError,
			FixHint:  "chmod u+w " + c.Root,
		})
	}
	if len(issues) > 0 {
		return buildResult(c.Name(), c.Category(), issues, 1, "")
	}

	for _, h := range c.Harnesses {
		dir := filepath.Join(c.Root, h)
		pending, err := copier.Pending(dir)
		if err != nil {
			issues = append(issues, issue{Path: dir, Problem: err.Error(), Severity: SeverityError})
			continue
		}
		for _, target := range pending {
			issues = append(issues, issue{
				Path:     target,
				Problem:  fmt.Sprintf("interrupted copy into %s/%s", h, filepath.Base(target)),
				Severity: SeverityError,
				Fixable:  true,
				FixHint:  "Run 'bridle doctor --fix' or repeat the copy with --force",
				fix: func() (string, error) {
					if err := copier.Recover(target); err != nil {
						return "recovery failed", err
					}
					return "recovered interrupted copy", nil
				},
			})
		}

		orphans, err := copier.Orphans(dir)
		if err != nil {
			issues = append(issues, issue{Path: dir, Problem: err.Error(), Severity: SeverityError})
			continue
		}
		for _, path := range orphans {
			issues = append(issues, issue{
				Path:     path,
				Problem:  "leftover directory from an earlier copy: " + path,
				Severity: SeverityWarning,
				Fixable:  true,
				FixHint:  "Run 'bridle doctor --fix' to remove it",
				fix: func() (string, error) {
					if err := os.RemoveAll(path); err != nil {
						return "removal failed", errors.Wrapf(err, "removing %s", path)
					}
					return "removed", nil
				},
			})
		}
	}

	for _, live := range c.LiveDirs {
		if _, err := os.Stat(copier.MarkerPath(live)); err != nil {
			continue
		}
		issues = append(issues, issue{
			Path:     live,
			Problem:  "interrupted profile switch into " + live,
			Severity: SeverityError,
			Fixable:  true,
			FixHint:  "Run 'bridle doctor --fix', then repeat the switch",
			fix: func() (string, error) {
				if err := copier.Recover(live); err != nil {
					return "recovery failed", err
				}
				return "recovered interrupted switch", nil
			},
		})
	}

	c.setIssues(issues)
	return buildResult(c.Name(), c.Category(), issues, len(c.Harnesses),
		"no interrupted copies in "+c.Root)
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".bridle-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// ProfileCheck reads every stored profile through its harness adapter and
// validates the result.
type ProfileCheck struct {
	Profiles  *profile.Manager
	Resolver  *harness.Resolver
	Harnesses []string
}

var _ Check = (*ProfileCheck)(nil)

func (c *ProfileCheck) Name() string     { return "profiles" }
func (c *ProfileCheck) Category() string { return "store" }

func (c *ProfileCheck) Run(ctx context.Context) *CheckResult {
	var issues []issue
	checked := 0
	for _, h := range c.Harnesses {
		adapter, err := c.Resolver.Get(h)
		if err != nil {
			issues = append(issues, issue{Path: h, Problem: err.Error(), Severity: SeverityError})
			continue
		}
		names, err := c.Profiles.List(h)
		if err != nil {
			issues = append(issues, issue{Path: c.Profiles.Path(h, ""), Problem: err.Error(), Severity: SeverityError})
			continue
		}
		for _, name := range names {
			if ctx.Err() != nil {
				break
			}
			checked++
			dir := c.Profiles.Path(h, name)
			p, err := adapter.Extract(ctx, dir)
			if err != nil {
				issues = append(issues, issue{
					Path:     dir,
					Problem:  fmt.Sprintf("cannot read %s/%s: %v", h, name, err),
					Severity: SeverityError,
					FixHint:  "Fix or remove the files reported above",
				})
				continue
			}
			if err := canonical.Validate(p); err != nil {
				issues = append(issues, issue{
					Path:     dir,
					Problem:  fmt.Sprintf("%s/%s: %v", h, name, err),
					Severity: SeverityWarning,
					FixHint:  "Invalid resources are copied as they are and may not work in the target",
				})
			}
		}
	}
	return buildResult(c.Name(), c.Category(), issues, checked,
		fmt.Sprintf("%d profiles read cleanly", checked))
}

// PermissionCheck flags group or world writable files in the profile
// store. Profiles hold MCP server environments, which often carry tokens.
type PermissionCheck struct {
	fixer

	Root string
}

var (
	_ Check = (*PermissionCheck)(nil)
	_ Fixer = (*PermissionCheck)(nil)
)

func (c *PermissionCheck) Name() string     { return "permissions" }
func (c *PermissionCheck) Category() string { return "filesystem" }

func (c *PermissionCheck) Run(context.Context) *CheckResult {
	c.setIssues(nil)
	if runtime.GOOS == "windows" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "permission checks are skipped on Windows",
		}
	}

	var issues []issue
	checked := 0
	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == c.Root {
				return fs.SkipAll
			}
			issues = append(issues, issue{Path: path, Problem: err.Error(), Severity: SeverityError})
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		checked++
		perm := info.Mode().Perm()
		if perm&0o022 == 0 {
			return nil
		}

		kind := "file"
		if d.IsDir() {
			kind = "directory"
		}
		fixed := perm &^ 0o022
		issues = append(issues, issue{
			Path:     path,
			Problem:  fmt.Sprintf("%s %s is writable by other users (mode %04o)", kind, path, perm),
			Severity: SeverityWarning,
			Fixable:  true,
			FixHint:  fmt.Sprintf("chmod %04o %s", fixed, path),
			fix: func() (string, error) {
				if err := os.Chmod(path, fixed); err != nil {
					return fmt.Sprintf("failed to chmod %04o", fixed), errors.Wrapf(err, "chmod %04o %s", fixed, path)
				}
				return fmt.Sprintf("chmod %04o", fixed), nil
			},
		})
		return nil
	})
	if err != nil {
		issues = append(issues, issue{Path: c.Root, Problem: err.Error(), Severity: SeverityError})
	}

	c.setIssues(issues)
	return buildResult(c.Name(), c.Category(), issues, checked,
		fmt.Sprintf("all %d paths have safe permissions", checked))
}
