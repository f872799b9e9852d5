// Package copier copies a profile from one harness to another.
//
// An Orchestrator runs a copy in strictly ordered stages: resolve the source
// and target identities, extract the source profile, filter it, adapt every
// resource to the target harness, then stage and commit the result. Each
// resource ends up in the returned report as copied, transformed, skipped
// or warned; only the conditions in the fatal taxonomy abort the operation.
//
// Writes are staged into a sibling directory and swapped in with renames.
// A commit marker records the operation while the swap is in progress, so
// an interrupted commit is detected by the next copy into the same profile.
package copier
