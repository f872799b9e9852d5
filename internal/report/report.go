// Package report records the outcome of a copy operation per resource.
package report

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/transform"
)

// Identity names a profile of a harness.
type Identity struct {
	Harness string `json:"harness"`
	Profile string `json:"profile"`
}

func (i Identity) String() string {
	return i.Harness + "/" + i.Profile
}

// Entry is the outcome for one resource.
type Entry struct {
	Kind canonical.Kind `json:"kind"`
	transform.Outcome
}

// Section groups the entries of one kind in processing order.
type Section struct {
	Kind    canonical.Kind `json:"kind"`
	Entries []Entry        `json:"entries"`
}

// Fatal describes the condition that aborted an operation.
type Fatal struct {
	Kind    string `json:"kind"`
	Harness string `json:"harness,omitempty"`
	Profile string `json:"profile,omitempty"`
	Message string `json:"message"`
}

// Summary counts entries per status.
type Summary struct {
	Copied      int `json:"copied"`
	Transformed int `json:"transformed"`
	Skipped     int `json:"skipped"`
	Warned      int `json:"warned"`
}

// Total returns the number of entries counted.
func (s Summary) Total() int {
	return s.Copied + s.Transformed + s.Skipped + s.Warned
}

// Report is the result of one copy operation.
type Report struct {
	OperationID string
	Source      Identity
	Target      Identity
	DryRun      bool
	Fatal       *Fatal

	sections []Section
}

// New returns an empty report for a copy from source to target.
func New(source, target Identity, dryRun bool) *Report {
	return &Report{Source: source, Target: target, DryRun: dryRun}
}

// Add records an outcome for a resource of kind k. Sections are kept in
// canonical kind order; entries within a section keep insertion order.
func (r *Report) Add(k canonical.Kind, o transform.Outcome) {
	e := Entry{Kind: k, Outcome: o}
	for i := range r.sections {
		if r.sections[i].Kind == k {
			r.sections[i].Entries = append(r.sections[i].Entries, e)
			return
		}
	}

	order := canonical.Kinds()
	pos := len(r.sections)
	for i, s := range r.sections {
		if slices.Index(order, s.Kind) > slices.Index(order, k) {
			pos = i
			break
		}
	}
	r.sections = slices.Insert(r.sections, pos, Section{Kind: k, Entries: []Entry{e}})
}

// Sections returns the per-kind sections in processing order.
func (r *Report) Sections() []Section {
	return slices.Clone(r.sections)
}

// Kind returns the entries for kind k.
func (r *Report) Kind(k canonical.Kind) []Entry {
	for _, s := range r.sections {
		if s.Kind == k {
			return slices.Clone(s.Entries)
		}
	}
	return nil
}

// Entries returns every entry in processing order.
func (r *Report) Entries() []Entry {
	var out []Entry
	for _, s := range r.sections {
		out = append(out, s.Entries...)
	}
	return out
}

// Summary counts the entries per status.
func (r *Report) Summary() Summary {
	var s Summary
	for _, e := range r.Entries() {
		switch e.Status {
		case transform.Copied:
			s.Copied++
		case transform.Transformed:
			s.Transformed++
		case transform.Skipped:
			s.Skipped++
		case transform.Warned:
			s.Warned++
		}
	}
	return s
}

// Notes returns one human-readable line per skipped or warned entry.
func (r *Report) Notes() []string {
	var notes []string
	for _, e := range r.Entries() {
		if e.Status != transform.Skipped && e.Status != transform.Warned {
			continue
		}
		notes = append(notes, fmt.Sprintf("%s %s %q: %s", e.Status, e.Kind.Singular(), e.OriginalName, e.Note))
	}
	return notes
}

// Accepted reports whether any entry will be written to the target.
func (r *Report) Accepted() bool {
	s := r.Summary()
	return s.Copied+s.Transformed+s.Warned > 0
}

// document is the serialized form of a Report.
type document struct {
	OperationID string    `json:"operation_id,omitempty" jsonschema:"description=Unique identifier of the copy operation"`
	Source      Identity  `json:"source"`
	Target      Identity  `json:"target"`
	DryRun      bool      `json:"dry_run"`
	Summary     Summary   `json:"summary"`
	Sections    []Section `json:"sections"`
	Notes       []string  `json:"notes"`
	Fatal       *Fatal    `json:"fatal,omitempty"`
}

// MarshalJSON encodes the report with sections in processing order, so
// equal reports always encode to equal bytes.
func (r *Report) MarshalJSON() ([]byte, error) {
	doc := document{
		OperationID: r.OperationID,
		Source:      r.Source,
		Target:      r.Target,
		DryRun:      r.DryRun,
		Summary:     r.Summary(),
		Sections:    r.Sections(),
		Notes:       r.Notes(),
		Fatal:       r.Fatal,
	}
	if doc.Sections == nil {
		doc.Sections = []Section{}
	}
	if doc.Notes == nil {
		doc.Notes = []string{}
	}
	return json.Marshal(doc)
}
