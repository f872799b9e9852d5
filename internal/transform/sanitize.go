package transform

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kaiiiiiiiii/bridle/internal/capability"
)

// Unnamed replaces identifiers that sanitize to nothing.
const Unnamed = "unnamed"

// Sanitize converts name to lowercase-hyphenated form: diacritics are
// stripped, letters lowercased, and every run of other characters becomes
// a single hyphen. Leading and trailing hyphens are trimmed.
//
// Sanitize is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	stripped, _, err := xtransform.String(stripMarks(), name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	if b.Len() == 0 {
		return Unnamed
	}
	return b.String()
}

// FileSafe reports whether name can be used as a single path element.
func FileSafe(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`+"\x00")
}

// stripMarks decomposes text and removes nonspacing marks. A Transformer
// is stateful, so each call builds its own chain.
func stripMarks() xtransform.Transformer {
	return xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Valid reports whether name is acceptable under rule.
func Valid(name string, rule capability.NamingRule) bool {
	if name == "" {
		return false
	}
	if rule == capability.LowercaseHyphenated {
		return Sanitize(name) == name
	}
	return true
}
