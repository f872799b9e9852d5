package doctor

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a potential issue that doesn't prevent operation.
	SeverityWarning

	// SeverityError indicates a problem that prevents proper operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	if s < SeverityPass || s > SeverityError {
		return nil, errors.Newf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details contains additional context about the check result.
	// Keys and values depend on the specific check.
	Details map[string]any `json:"details,omitempty"`

	// Fixable indicates whether doctor --fix can repair the issue.
	Fixable bool `json:"fixable,omitempty"`

	// FixHint provides guidance on how to resolve the issue.
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// issue is one problem found by a check that inspects many paths.
type issue struct {
	Path     string
	Problem  string
	Severity Severity
	Fixable  bool
	FixHint  string

	// fix repairs the issue when Fixable is set.
	fix func() (string, error)
}

// buildResult turns issues into a result at the highest issue severity.
func buildResult(name, category string, issues []issue, checked int, passMsg string) *CheckResult {
	result := &CheckResult{
		Name:     name,
		Category: category,
		Status:   SeverityPass,
		Message:  passMsg,
		Details:  map[string]any{"checked": checked},
	}
	if len(issues) == 0 {
		return result
	}

	details := make([]map[string]any, 0, len(issues))
	for _, is := range issues {
		if is.Severity > result.Status {
			result.Status = is.Severity
			result.Message = is.Problem
			result.FixHint = is.FixHint
		}
		if is.Fixable {
			result.Fixable = true
		}
		d := map[string]any{
			"path":     is.Path,
			"problem":  is.Problem,
			"severity": is.Severity.String(),
		}
		if is.FixHint != "" {
			d["fix_hint"] = is.FixHint
		}
		details = append(details, d)
	}
	if len(issues) > 1 {
		result.Message = fmt.Sprintf("%s (and %d more)", result.Message, len(issues)-1)
	}
	result.Details["issues"] = details
	return result
}
