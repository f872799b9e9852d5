// Package paths resolves the directories bridle reads and writes.
//
// bridle keeps its own configuration and the profile store under the XDG
// config home (via github.com/adrg/xdg):
//
//	$XDG_CONFIG_HOME/bridle/config.toml
//	$XDG_CONFIG_HOME/bridle/profiles/<harness>/<profile>/
//
// Each harness also has a live configuration directory (for example
// ~/.claude or ~/.config/opencode) that profiles are captured from.
package paths
