// Package gemini reads and writes Gemini CLI profiles.
//
// Layout of a profile directory:
//
//	settings.json             mcpServers, mcp.excluded, model.name, ui.theme
//	skills/<name>/SKILL.md
//	commands/<name>.toml      description, prompt
//
// Gemini infers the transport from the server fields: command for stdio,
// url for SSE and httpUrl for streamable HTTP.
package gemini
