package transform

import (
	"testing"

	"github.com/kaiiiiiiiii/bridle/internal/capability"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Code Review Guide", "code-review-guide"},
		{"code-review", "code-review"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"Café Déjà Vu", "cafe-deja-vu"},
		{"snake_case_name", "snake-case-name"},
		{"CamelCase2Go", "camelcase2go"},
		{"a...b___c", "a-b-c"},
		{"日本語", Unnamed},
		{"", Unnamed},
		{"---", Unnamed},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"Code Review", "ÅÄÖ files", "x--y", "-x-", "UPPER", "mixed 123 Numbers!", "", "ß", "naïve_approach",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize(Sanitize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		rule capability.NamingRule
		want bool
	}{
		{"Code Review", capability.Free, true},
		{"Code Review", capability.LowercaseHyphenated, false},
		{"code-review", capability.LowercaseHyphenated, true},
		{"", capability.Free, false},
	}
	for _, tt := range tests {
		if got := Valid(tt.name, tt.rule); got != tt.want {
			t.Errorf("Valid(%q, %s) = %v, want %v", tt.name, tt.rule, got, tt.want)
		}
	}
}

func TestFileSafe(t *testing.T) {
	for name, want := range map[string]bool{
		"Code Review":   true,
		"code-review":   true,
		"team/reviewer": false,
		`ops\deploy`:    false,
		"..":            false,
		".":             false,
		"":              false,
		"nul\x00byte":   false,
	} {
		if got := FileSafe(name); got != want {
			t.Errorf("FileSafe(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNamer(t *testing.T) {
	n := NewNamer()

	steps := []struct {
		in           string
		want         string
		wantCollided bool
	}{
		{"code-review", "code-review", false},
		{"code-review", "code-review-2", true},
		{"code-review", "code-review-3", true},
		{"code-review-2", "code-review-2-2", true},
		{"other", "other", false},
	}
	for _, s := range steps {
		got, collided := n.Claim(s.in)
		if got != s.want || collided != s.wantCollided {
			t.Errorf("Claim(%q) = %q, %v; want %q, %v", s.in, got, collided, s.want, s.wantCollided)
		}
	}
	if !n.Taken("code-review-3") {
		t.Error("Taken(code-review-3) = false")
	}
}
