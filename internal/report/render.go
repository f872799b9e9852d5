package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/logging"
	"github.com/kaiiiiiiiii/bridle/internal/transform"
)

// Format specifies the output format for reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	Format Format
	// Quiet omits per-resource lines. The summary and notes are always
	// written.
	Quiet bool
}

// Reporter writes reports to an output stream.
type Reporter struct {
	out  io.Writer
	opts RenderOptions

	colors map[transform.Status]*color.Color
	dim    *color.Color
}

// NewReporter creates a Reporter. Colors are used only when out supports them.
func NewReporter(out io.Writer, opts RenderOptions) *Reporter {
	r := &Reporter{out: out, opts: opts}
	if logging.SupportsColor(out) {
		r.colors = map[transform.Status]*color.Color{
			transform.Copied:      color.New(color.FgGreen),
			transform.Transformed: color.New(color.FgCyan),
			transform.Skipped:     color.New(color.FgYellow),
			transform.Warned:      color.New(color.FgRed, color.Bold),
		}
		r.dim = color.New(color.FgHiBlack)
		for _, c := range r.colors {
			c.EnableColor()
		}
		r.dim.EnableColor()
	}
	return r
}

// Render writes rep to w as text.
func Render(w io.Writer, rep *Report, opts RenderOptions) error {
	return NewReporter(w, opts).Report(rep)
}

// Report writes rep in the configured format.
func (r *Reporter) Report(rep *Report) error {
	if rep == nil {
		return nil
	}
	if r.opts.Format == FormatJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(rep), "encoding JSON report")
	}
	return r.reportText(rep)
}

var symbols = map[transform.Status]string{
	transform.Copied:      "✓",
	transform.Transformed: "~",
	transform.Skipped:     "-",
	transform.Warned:      "!",
}

var headings = map[canonical.Kind]string{
	canonical.KindMCP:      "MCP servers",
	canonical.KindSkills:   "Skills",
	canonical.KindAgents:   "Agents",
	canonical.KindCommands: "Commands",
	canonical.KindSettings: "Settings",
}

func (r *Reporter) paint(s transform.Status, text string) string {
	if c := r.colors[s]; c != nil {
		return c.Sprint(text)
	}
	return text
}

func (r *Reporter) faint(text string) string {
	if r.dim != nil {
		return r.dim.Sprint(text)
	}
	return text
}

func (r *Reporter) reportText(rep *Report) error {
	var sb strings.Builder

	header := fmt.Sprintf("Copy %s → %s", rep.Source, rep.Target)
	if rep.DryRun {
		header += " (dry run)"
	}
	sb.WriteString(header + "\n")

	if !r.opts.Quiet {
		for _, sec := range rep.sections {
			fmt.Fprintf(&sb, "\n%s\n", headings[sec.Kind])
			for _, e := range sec.Entries {
				sb.WriteString("  ")
				sb.WriteString(r.paint(e.Status, symbols[e.Status]))
				sb.WriteString(" ")
				sb.WriteString(e.OriginalName)
				if e.Renamed() {
					sb.WriteString(" → ")
					sb.WriteString(e.NewName)
				}
				if e.Note != "" {
					sb.WriteString(" ")
					sb.WriteString(r.faint("(" + e.Note + ")"))
				}
				sb.WriteString("\n")
			}
		}
	}

	s := rep.Summary()
	fmt.Fprintf(&sb, "\n%s, %s, %s, %s\n",
		r.paint(transform.Copied, fmt.Sprintf("%d copied", s.Copied)),
		r.paint(transform.Transformed, fmt.Sprintf("%d transformed", s.Transformed)),
		r.paint(transform.Skipped, fmt.Sprintf("%d skipped", s.Skipped)),
		r.paint(transform.Warned, fmt.Sprintf("%d warned", s.Warned)),
	)

	if notes := rep.Notes(); len(notes) > 0 {
		sb.WriteString("\nNotes:\n")
		for _, n := range notes {
			sb.WriteString("  • " + n + "\n")
		}
	}

	if rep.Fatal != nil {
		fmt.Fprintf(&sb, "\n%s %s\n", r.paint(transform.Warned, "Failed:"), rep.Fatal.Message)
	}

	_, err := io.WriteString(r.out, sb.String())
	return errors.Wrap(err, "writing report")
}
