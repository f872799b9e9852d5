package frontmatter

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontmatter is returned by MustParse when no frontmatter is found.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated indicates an opening delimiter without a closing one.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")
)

// Parse extracts YAML frontmatter and body content from a reader.
// If no frontmatter is present, matter is left untouched and the full
// content is returned as the body.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but returns an error if no frontmatter is found.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	header, body, err := Split(content)
	if err != nil {
		if required || !errors.Is(err, ErrMissingFrontmatter) {
			return nil, err
		}
		return content, nil
	}

	if err := yaml.Unmarshal(header, matter); err != nil {
		return nil, err
	}
	return body, nil
}

// Split separates content into its raw YAML header and body.
// It returns ErrMissingFrontmatter when content does not start with a
// delimiter, and ErrUnterminated when the header is never closed.
func Split(content []byte) (header, body []byte, err error) {
	var rest []byte
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		rest = content[4:]
	case bytes.HasPrefix(content, []byte("---\r\n")):
		rest = content[5:]
	default:
		return nil, nil, ErrMissingFrontmatter
	}

	// An empty header closes on the very first line.
	if bytes.HasPrefix(rest, []byte("---")) {
		return nil, trimLeadingNewline(rest[3:]), nil
	}

	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, ErrUnterminated
	}

	raw := bytes.TrimSuffix(rest[:idx+1], []byte("\r\n"))
	raw = bytes.TrimSuffix(raw, []byte("\n"))
	header = make([]byte, 0, len(raw)+1)
	header = append(append(header, raw...), '\n')
	return header, trimLeadingNewline(rest[idx+4:]), nil
}

func trimLeadingNewline(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte("\r"))
	return bytes.TrimPrefix(b, []byte("\n"))
}

// Format formats content with YAML frontmatter.
// The matter value is serialized to YAML and wrapped in "---" delimiters,
// followed by a blank line and the body.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// RewriteName sets the top-level "name" key of the frontmatter in content
// to name. Content without frontmatter, or whose frontmatter has no name
// key, is returned unchanged with changed == false.
func RewriteName(content []byte, name string) (out []byte, changed bool, err error) {
	header, body, err := Split(content)
	if err != nil {
		if errors.Is(err, ErrMissingFrontmatter) {
			return content, false, nil
		}
		return nil, false, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, false, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return content, false, nil
	}

	mapping := doc.Content[0]
	found := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != "name" {
			continue
		}
		value := mapping.Content[i+1]
		if value.Value == name {
			return content, false, nil
		}
		value.Kind = yaml.ScalarNode
		value.Tag = "!!str"
		value.Style = 0
		value.Value = name
		found = true
		break
	}
	if !found {
		return content, false, nil
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, false, err
	}
	if err := enc.Close(); err != nil {
		return nil, false, err
	}
	buf.WriteString("---\n")
	buf.Write(body)
	return buf.Bytes(), true, nil
}
