// Package config provides configuration management for the bridle CLI.
//
// This package handles loading, saving, and validating bridle's own
// configuration file. Harness configuration lives in profiles and is
// handled by the harness adapters.
//
// # Configuration File
//
// The default location is $XDG_CONFIG_HOME/bridle/config.toml, or
// config.toml inside $BRIDLE_CONFIG_DIR when set:
//
//	version = 1
//	profiles_dir = "/home/me/.config/bridle/profiles"
//	log_format = "text"
//
//	[active]
//	claude-code = "work"
//
//	[copy]
//	exclude = ["settings"]
//
// Every key can be overridden from the environment with the BRIDLE_
// prefix, e.g. BRIDLE_PROFILES_DIR.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result; [Validate] can also be called directly and
// returns every problem found.
package config
