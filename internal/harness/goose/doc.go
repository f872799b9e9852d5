// Package goose reads and writes Goose profiles.
//
// Layout of a profile directory:
//
//	config.yaml               GOOSE_MODEL and the "extensions" map
//	skills/<name>/SKILL.md
//
// Only extensions backed by an MCP server (stdio, sse, streamable_http)
// are extracted. Built-in extensions are left untouched on write.
package goose
