// Package harness defines the adapter contract between the canonical model
// and a harness's native files, plus the file helpers adapters share.
//
// One profile is one directory. Adapters live in subpackages (claude,
// opencode, goose, gemini); each reads its directory into a
// canonical.Profile and writes one back. Writers merge into whatever the
// directory already holds: a resource with the same name is replaced,
// anything else is left alone. Output bytes depend only on the input, so
// writing the same profile twice yields identical files.
package harness
