// Package capability answers which resource kinds each harness supports
// and which naming rule applies to them.
//
// The matrix is static data compiled into the binary (matrix.yaml). A
// [Registry] is immutable once built; [Default] loads the embedded matrix
// once per process. Callers never mutate it, so it is safe for concurrent
// use.
package capability
