// Package logging provides structured logging for the bridle CLI using slog.
//
// Text output goes through [Handler], which colorizes levels on a terminal
// and masks values that look like credentials (MCP server environments
// routinely carry tokens). JSON output uses the standard library handler.
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("copy committed", "target", "opencode/work")
//
// Loggers travel through the command context with [NewContext] and
// [FromContext]. Tests use [ForTest] so output only shows on failure.
package logging
