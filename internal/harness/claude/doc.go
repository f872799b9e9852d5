// Package claude reads and writes Claude Code profiles.
//
// Layout of a profile directory:
//
//	.mcp.json                 {"mcpServers": {"<name>": {...}}}
//	settings.json             {"model": "...", "theme": "..."}
//	skills/<name>/SKILL.md
//	agents/<name>.md          frontmatter: name, description, tools, color, model
//	commands/<name>.md
//
// Claude Code stores the server name only as the map key and uses "type"
// (stdio, sse, http) for the transport.
package claude
