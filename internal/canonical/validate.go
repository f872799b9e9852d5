package canonical

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// validate is shared; building a validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(mcpServerRule, MCPServer{})
	return v
}

// mcpServerRule enforces that exactly one of command and url is populated,
// as selected by the transport.
func mcpServerRule(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(MCPServer)
	if !ok {
		return
	}
	if s.Transport == TransportStdio {
		if s.Command == "" {
			sl.ReportError(s.Command, "command", "Command", "required_for_stdio", "")
		}
		if s.URL != "" {
			sl.ReportError(s.URL, "url", "URL", "excluded_for_stdio", "")
		}
		return
	}
	if s.URL == "" {
		sl.ReportError(s.URL, "url", "URL", "required_for_remote", string(s.Transport))
	}
	if s.Command != "" || len(s.Args) > 0 {
		sl.ReportError(s.Command, "command", "Command", "excluded_for_remote", string(s.Transport))
	}
}

// Problem is a single validation failure.
type Problem struct {
	// Path locates the field, e.g. mcp[github].url.
	Path string
	Rule string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Rule
}

// ValidationError lists every problem found in a profile.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

// Validate checks every resource in p and the uniqueness of names within
// each collection. It returns a *ValidationError or nil.
func Validate(p *Profile) error {
	if p == nil {
		return errors.New("profile is nil")
	}

	var problems []Problem
	check := func(prefix string, v any) {
		err := validate.Struct(v)
		if err == nil {
			return
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			problems = append(problems, Problem{Path: prefix, Rule: err.Error()})
			return
		}
		for _, fe := range fieldErrs {
			problems = append(problems, Problem{Path: prefix + "." + strings.ToLower(fe.Field()), Rule: fe.Tag()})
		}
	}

	for i, s := range p.MCPServers {
		check(path(KindMCP, i, s.Name), s)
	}
	for i, s := range p.Skills {
		check(path(KindSkills, i, s.Name), s)
	}
	for i, a := range p.Agents {
		check(path(KindAgents, i, a.Name), a)
	}
	for i, c := range p.Commands {
		check(path(KindCommands, i, c.Name), c)
	}

	for _, k := range kinds {
		seen := make(map[string]bool)
		for _, n := range p.Names(k) {
			if seen[n] {
				problems = append(problems, Problem{Path: fmt.Sprintf("%s[%s]", k, n), Rule: "duplicate"})
			}
			seen[n] = true
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func path(k Kind, i int, name string) string {
	if name == "" {
		return fmt.Sprintf("%s[%d]", k, i)
	}
	return fmt.Sprintf("%s[%s]", k, name)
}
