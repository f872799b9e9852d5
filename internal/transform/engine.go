package transform

import (
	"fmt"
	"strings"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/capability"
	"github.com/kaiiiiiiiii/bridle/pkg/frontmatter"
)

// ToolMapper translates agent tool names between harness vocabularies.
// *capability.Registry implements it.
type ToolMapper interface {
	ToolName(from, to, tool string) (string, bool)
}

// Target parameterizes the strategies for one copy run.
type Target struct {
	// Source is the harness the resources were extracted from.
	Source     string
	Descriptor capability.Descriptor
	Tools      ToolMapper
	// NoTransform disables name sanitization; invalid names are kept and
	// flagged.
	NoTransform bool
}

// Engine applies the strategies for one run. It keeps one Namer per kind,
// so resources must be passed in processing order.
type Engine struct {
	target Target
	namers map[canonical.Kind]*Namer
}

// NewEngine returns an Engine for target.
func NewEngine(target Target) *Engine {
	return &Engine{
		target: target,
		namers: make(map[canonical.Kind]*Namer),
	}
}

func (e *Engine) namer(k canonical.Kind) *Namer {
	n, ok := e.namers[k]
	if !ok {
		n = NewNamer()
		e.namers[k] = n
	}
	return n
}

// name applies the naming strategy for kind k and returns the outcome
// without touching the resource.
func (e *Engine) name(k canonical.Kind, original string) Outcome {
	rule := e.target.Descriptor.NamingRule(k)
	out := Outcome{OriginalName: original, NewName: original, Status: Copied}

	if (e.target.NoTransform || rule == capability.Free) && !FileSafe(original) {
		final, _ := e.namer(k).Claim(Sanitize(original))
		out.NewName = final
		out.Status = Warned
		out.Note = fmt.Sprintf("name is not a safe file name, renamed to %q", final)
		return out
	}

	if e.target.NoTransform || rule == capability.Free {
		final, collided := e.namer(k).Claim(original)
		out.NewName = final
		switch {
		case collided:
			out.Status = Warned
			out.Note = fmt.Sprintf("name collision, renamed to %q", final)
		case !Valid(original, rule):
			out.Status = Warned
			out.Note = fmt.Sprintf("name violates target naming rule (%s)", rule)
		}
		return out
	}

	final, collided := e.namer(k).Claim(Sanitize(original))
	out.NewName = final
	switch {
	case collided:
		out.Status = Warned
		out.Note = fmt.Sprintf("name collision, renamed to %q", final)
	case final != original:
		out.Status = Transformed
		out.Note = fmt.Sprintf("renamed to %q to satisfy target naming rule", final)
	}
	return out
}

// MCPServer adapts a server. Server keys are never renamed; only the
// transport is remapped through the target's alias table.
func (e *Engine) MCPServer(s *canonical.MCPServer) (*canonical.MCPServer, Outcome) {
	out := s.Clone()
	outcome := Outcome{Status: Copied, OriginalName: s.Name, NewName: s.Name}
	if t := e.target.Descriptor.Transport(s.Transport); t != s.Transport {
		out.Transport = t
		outcome.Note = fmt.Sprintf("transport %s expressed as %s", s.Transport, t)
	}
	return out, outcome
}

// Skill adapts a skill's name and the name key of its frontmatter.
func (e *Engine) Skill(s *canonical.Skill) (*canonical.Skill, Outcome) {
	outcome := e.name(canonical.KindSkills, s.Name)
	out := s.Clone()
	out.Name = outcome.NewName
	out.Content = rewriteContent(s.Content, outcome)
	return out, outcome
}

// Command adapts a command's name.
func (e *Engine) Command(c *canonical.Command) (*canonical.Command, Outcome) {
	outcome := e.name(canonical.KindCommands, c.Name)
	out := c.Clone()
	out.Name = outcome.NewName
	out.Content = rewriteContent(c.Content, outcome)
	return out, outcome
}

func rewriteContent(content string, o Outcome) string {
	if !o.Renamed() {
		return content
	}
	rewritten, changed, err := frontmatter.RewriteName([]byte(content), o.NewName)
	if err != nil || !changed {
		return content
	}
	return string(rewritten)
}

// Agent adapts an agent's identifier, remaps its tools and drops metadata
// the target cannot represent.
func (e *Engine) Agent(a *canonical.Agent) (*canonical.Agent, Outcome) {
	outcome := e.name(canonical.KindAgents, a.Name)
	out := a.Clone()
	out.Name = outcome.NewName

	d := e.target.Descriptor
	if !d.HasAgentField("color") {
		out.Color = ""
	}
	if !d.HasAgentField("model") {
		out.Model = ""
	}

	if e.target.Source == d.ID || e.target.Tools == nil {
		return out, outcome
	}

	var unmapped []string
	for i, tool := range a.Tools {
		if mapped, ok := e.target.Tools.ToolName(e.target.Source, d.ID, tool); ok {
			out.Tools[i] = mapped
			continue
		}
		unmapped = append(unmapped, tool)
	}
	if len(unmapped) > 0 {
		outcome.Status = Warned
		outcome.Note = joinNotes(outcome.Note, "tool not recognized by target, passed through: "+strings.Join(unmapped, ", "))
	}
	return out, outcome
}

func joinNotes(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

// Setting names used in outcomes.
const (
	SettingModel = "model"
	SettingTheme = "theme"
)

// Settings adapts profile settings, returning one outcome per present
// setting in the order model, theme.
func (e *Engine) Settings(s canonical.Settings) (canonical.Settings, []Outcome) {
	var out canonical.Settings
	var outcomes []Outcome

	if s.Model != "" {
		if e.target.Descriptor.ModelSelection {
			out.Model = s.Model
			outcomes = append(outcomes, Outcome{Status: Copied, OriginalName: SettingModel, NewName: SettingModel})
		} else {
			outcomes = append(outcomes, Outcome{Status: Skipped, OriginalName: SettingModel, Note: "target harness has no model selection"})
		}
	}
	if s.Theme != "" {
		outcomes = append(outcomes, Outcome{Status: Skipped, OriginalName: SettingTheme, Note: "presentation-only setting is not portable"})
	}
	return out, outcomes
}
