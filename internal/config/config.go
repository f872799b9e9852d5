// Package config provides configuration management for bridle using Viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/kaiiiiiiiii/bridle/internal/paths"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
)

// EnvPrefix prefixes environment overrides, e.g. BRIDLE_PROFILES_DIR.
const EnvPrefix = "BRIDLE"

// ConfigDirEnv overrides the directory searched for config.toml.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version     int               `mapstructure:"version" toml:"version"`
	ProfilesDir string            `mapstructure:"profiles_dir" toml:"profiles_dir"`
	LogFormat   string            `mapstructure:"log_format" toml:"log_format"`
	Active      map[string]string `mapstructure:"active" toml:"active,omitempty"`
	Copy        CopyConfig        `mapstructure:"copy" toml:"copy"`
}

// CopyConfig holds defaults for bridle copy.
type CopyConfig struct {
	// Exclude lists resource kinds skipped unless --include is given.
	Exclude []string `mapstructure:"exclude" toml:"exclude"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:     1,
		ProfilesDir: paths.ProfilesDir(),
		LogFormat:   LogFormatText,
		Active:      map[string]string{},
	}
}

// Init resets Viper and registers the search path, environment binding
// and defaults. Call it once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("profiles_dir", d.ProfilesDir)
	viper.SetDefault("log_format", d.LogFormat)
	viper.SetDefault("copy.exclude", []string{})
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default location and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			if path != "" && errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if cfg.Active == nil {
		cfg.Active = map[string]string{}
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// Path returns the file Load read, or the default location when none was
// found.
func Path() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	return paths.ConfigFile()
}

// Save writes cfg to path as TOML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "validating config")
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(fileutil.AtomicWriteTOML(path, cfg, 0o644), "writing config")
}

// SetActive records name as the active profile of harness h.
func (c *Config) SetActive(h, name string) {
	if c.Active == nil {
		c.Active = make(map[string]string)
	}
	c.Active[h] = name
}
