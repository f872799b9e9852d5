package copier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/report"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// ManifestVersion is the commit marker format version.
const ManifestVersion = 1

const (
	stagePrefix    = ".bridle-stage-"
	previousPrefix = ".bridle-prev-"
	markerPrefix   = ".bridle-commit-"
)

// Manifest is the content of a commit marker.
type Manifest struct {
	Version     int                 `json:"version"`
	OperationID string              `json:"operation_id"`
	CreatedAt   time.Time           `json:"created_at"`
	Source      report.Identity     `json:"source"`
	Target      report.Identity     `json:"target"`
	StageDir    string              `json:"stage_dir"`
	PreviousDir string              `json:"previous_dir,omitempty"`
	Files       []fileutil.FileHash `json:"files"`
}

// MarkerPath returns the commit marker path for the profile at targetDir.
func MarkerPath(targetDir string) string {
	return filepath.Join(filepath.Dir(targetDir), markerPrefix+filepath.Base(targetDir)+".json")
}

// ReadManifest loads a commit marker.
func ReadManifest(path string) (*Manifest, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading commit marker")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing commit marker %s", path)
	}
	return &m, nil
}

func writeManifest(path string, m *Manifest) error {
	return fileutil.AtomicWriteJSON(path, m)
}

// recoverIncomplete cleans up after an interrupted commit described by the
// marker at path. A profile that was renamed aside but never replaced is
// put back. The marker itself is left for the caller to overwrite.
func recoverIncomplete(path, targetDir string) error {
	m, err := ReadManifest(path)
	if err != nil {
		return err
	}
	if err := owned(m.PreviousDir, previousPrefix, targetDir); err != nil {
		return err
	}
	if err := owned(m.StageDir, stagePrefix, targetDir); err != nil {
		return err
	}

	if m.PreviousDir != "" && fileutil.Exists(m.PreviousDir) {
		if !fileutil.Exists(targetDir) {
			if err := os.Rename(m.PreviousDir, targetDir); err != nil {
				return errors.Wrap(err, "restoring previous profile")
			}
		} else if err := os.RemoveAll(m.PreviousDir); err != nil {
			return errors.Wrap(err, "removing previous profile copy")
		}
	}
	if m.StageDir != "" {
		if err := os.RemoveAll(m.StageDir); err != nil {
			return errors.Wrap(err, "removing stale staging directory")
		}
	}
	return nil
}

// owned rejects marker paths outside the target's parent directory or
// without the expected prefix.
func owned(path, prefix, targetDir string) error {
	if path == "" {
		return nil
	}
	if filepath.Dir(path) != filepath.Dir(targetDir) || !strings.HasPrefix(filepath.Base(path), prefix) {
		return errors.Newf("commit marker references unexpected path %q", path)
	}
	return nil
}

// Recover finishes the cleanup of an interrupted commit into targetDir and
// removes its marker.
func Recover(targetDir string) error {
	marker := MarkerPath(targetDir)
	if err := recoverIncomplete(marker, targetDir); err != nil {
		return err
	}
	return errors.Wrap(os.Remove(marker), "removing commit marker")
}

// Pending returns the profile directories under harnessDir guarded by a
// commit marker, sorted by name.
func Pending(harnessDir string) ([]string, error) {
	entries, err := os.ReadDir(harnessDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading harness directory")
	}
	var dirs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, markerPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		profile := strings.TrimSuffix(strings.TrimPrefix(name, markerPrefix), ".json")
		dirs = append(dirs, filepath.Join(harnessDir, profile))
	}
	return dirs, nil
}

// Orphans returns staging and set-aside directories under harnessDir that
// no commit marker references.
func Orphans(harnessDir string) ([]string, error) {
	pending, err := Pending(harnessDir)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]bool)
	for _, target := range pending {
		m, err := ReadManifest(MarkerPath(target))
		if err != nil {
			continue
		}
		referenced[m.StageDir] = true
		referenced[m.PreviousDir] = true
	}

	entries, err := os.ReadDir(harnessDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading harness directory")
	}
	var orphans []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !(strings.HasPrefix(name, stagePrefix) || strings.HasPrefix(name, previousPrefix)) {
			continue
		}
		path := filepath.Join(harnessDir, name)
		if !referenced[path] {
			orphans = append(orphans, path)
		}
	}
	return orphans, nil
}
