// Package canonical defines the harness-neutral representation of a
// configuration profile.
//
// Harness adapters extract a [Profile] from a harness's native files and
// write one back out. Everything in between (selection, capability checks,
// transformation, reporting) works on this model only.
//
// Collections keep insertion order, and names are unique within each
// collection. The Add* methods enforce uniqueness; [Validate] checks a
// whole profile, including profiles assembled by hand.
package canonical
