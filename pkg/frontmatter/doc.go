// Package frontmatter parses, formats and edits YAML frontmatter in the
// Markdown files harnesses use for skills, agents and commands.
//
// Frontmatter is delimited by lines containing only "---" at the start and
// end of the header. The content between the delimiters is YAML; everything
// after the closing delimiter is the body.
//
//	type agentMeta struct {
//		Name  string   `yaml:"name"`
//		Tools []string `yaml:"tools"`
//	}
//
//	var meta agentMeta
//	body, err := frontmatter.Parse(r, &meta)
//
// [RewriteName] replaces the value of the top-level "name" key while leaving
// every other key, its order and the body untouched.
//
// Both Unix (LF) and Windows (CRLF) line endings are accepted.
package frontmatter
