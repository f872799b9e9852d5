package doctor

// Fixer is an optional interface for checks that can repair what they
// find. CanFix and Fix are only meaningful after Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string `json:"path"`

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool `json:"fixed"`

	// Description explains what was fixed or why it couldn't be fixed.
	Description string `json:"description"`

	// Error contains the error if the fix failed.
	Error error `json:"-"`
}

// fixer holds the fixable issues of the last run.
type fixer struct {
	issues []issue
}

func (f *fixer) setIssues(issues []issue) {
	f.issues = issues
}

// CanFix returns true if the last run found fixable issues.
func (f *fixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *fixer) CountFixable() int {
	n := 0
	for _, is := range f.issues {
		if is.Fixable {
			n++
		}
	}
	return n
}

// Fix applies every fixable issue's repair.
func (f *fixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, is := range f.issues {
		if !is.Fixable || is.fix == nil {
			continue
		}
		desc, err := is.fix()
		results = append(results, FixResult{
			Path:        is.Path,
			Fixed:       err == nil,
			Description: desc,
			Error:       err,
		})
	}
	return results
}
