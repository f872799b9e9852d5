// Package opencode reads and writes OpenCode profiles.
//
// Layout of a profile directory:
//
//	opencode.json            "mcp", "model" and "theme" keys
//	skill/<name>/SKILL.md
//	agent/<name>.md          frontmatter: description, mode, model, tools
//	command/<name>.md
package opencode
