// Package errors provides error handling conventions for the bridle CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully, including copies that
//     finished with warnings
//   - ExitUser (1): User-related error (unknown harness, existing target, nothing to copy)
//   - ExitSystem (2): System-related error (staging or commit I/O)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion.
// It supports unwrapping via [errors.Unwrap] and [errors.As]:
//
//	err := bridleerrors.NewUserError(copier.ErrTargetAlreadyExists, "Re-run with --force to overwrite")
//	var exitErr *bridleerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
