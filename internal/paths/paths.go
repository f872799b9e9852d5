package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG config home.
const AppName = "bridle"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the permission for directories bridle creates.
const DefaultDirPerm = 0o755

// liveConfigDirs maps harness IDs to their live configuration directories,
// relative to the home directory.
var liveConfigDirs = map[string]string{
	"claude-code": ".claude",
	"opencode":    ".config/opencode",
	"goose":       ".config/goose",
	"gemini":      ".gemini",
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns bridle's configuration directory.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default configuration file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ProfilesDir returns the default root of the profile store.
func ProfilesDir() string {
	return filepath.Join(ConfigDir(), "profiles")
}

// LiveConfigDir returns the live configuration directory of a harness,
// or "" when the harness is unknown or the home directory is unavailable.
func LiveConfigDir(harness string) string {
	rel, ok := liveConfigDirs[harness]
	if !ok {
		return ""
	}
	home, err := ResolveHome()
	if err != nil {
		return ""
	}
	return filepath.Join(home, rel)
}

// EnsureDir creates path and any parents. A zero perm uses DefaultDirPerm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}
