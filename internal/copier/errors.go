package copier

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the fatal conditions of a copy. Every fatal error
// returned by Copy is a *FatalError that matches one of these with
// errors.Is.
var (
	ErrSourceNotFound           = errors.New("source profile not found")
	ErrTargetAlreadyExists      = errors.New("target profile already exists")
	ErrTargetHarnessUnsupported = errors.New("harness unsupported or missing")
	ErrNothingToCopy            = errors.New("nothing to copy")
	ErrStageWriteFailed         = errors.New("writing staged profile failed")
	ErrCommitFailed             = errors.New("committing staged profile failed")

	// ErrIncompleteCommit is the cause of a CommitFailed refusal when a
	// previous operation left its commit marker behind.
	ErrIncompleteCommit = errors.New("a previous copy into this profile did not complete")
)

// FatalKind classifies a fatal error.
type FatalKind int

const (
	SourceNotFound FatalKind = iota + 1
	TargetAlreadyExists
	TargetHarnessUnsupported
	NothingToCopy
	StageWriteFailed
	CommitFailed
)

var kindNames = map[FatalKind]string{
	SourceNotFound:           "source_not_found",
	TargetAlreadyExists:      "target_already_exists",
	TargetHarnessUnsupported: "target_harness_unsupported",
	NothingToCopy:            "nothing_to_copy",
	StageWriteFailed:         "stage_write_failed",
	CommitFailed:             "commit_failed",
}

func (k FatalKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FatalKind(%d)", int(k))
}

// Sentinel returns the sentinel error for k.
func (k FatalKind) Sentinel() error {
	switch k {
	case SourceNotFound:
		return ErrSourceNotFound
	case TargetAlreadyExists:
		return ErrTargetAlreadyExists
	case TargetHarnessUnsupported:
		return ErrTargetHarnessUnsupported
	case NothingToCopy:
		return ErrNothingToCopy
	case StageWriteFailed:
		return ErrStageWriteFailed
	case CommitFailed:
		return ErrCommitFailed
	}
	return nil
}

// Severity ranks how a fatal error should be handled.
type Severity int

const (
	// SeverityUser conditions are fixed by changing the request.
	SeverityUser Severity = iota
	// SeveritySystem conditions come from the file system; the target is
	// untouched.
	SeveritySystem
	// SeverityInspect conditions may have left the profile store in an
	// intermediate state that needs inspection.
	SeverityInspect
)

// Severity returns how k should be handled.
func (k FatalKind) Severity() Severity {
	switch k {
	case StageWriteFailed:
		return SeveritySystem
	case CommitFailed:
		return SeverityInspect
	}
	return SeverityUser
}

// FatalError aborts a copy operation and names the offending harness and
// profile.
type FatalError struct {
	Kind    FatalKind
	Harness string
	Profile string
	Err     error
}

func (e *FatalError) Error() string {
	msg := e.Kind.Sentinel().Error()
	switch {
	case e.Harness != "" && e.Profile != "":
		msg += fmt.Sprintf(": %s/%s", e.Harness, e.Profile)
	case e.Harness != "":
		msg += fmt.Sprintf(": %s", e.Harness)
	}
	if e.Err != nil && e.Err != e.Kind.Sentinel() {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *FatalError) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

func fatal(kind FatalKind, harness, profile string, err error) *FatalError {
	return &FatalError{Kind: kind, Harness: harness, Profile: profile, Err: err}
}
