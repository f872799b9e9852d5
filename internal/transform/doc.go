// Package transform adapts canonical resources to a target harness.
//
// Three strategies cover every harness pair, parameterized by the target's
// capability descriptor: identity, name sanitization under the target's
// naming rule, and field remapping through lookup tables (MCP transports,
// agent tool names). There is no code specific to a harness pair.
//
// Each resource yields exactly one [Outcome]. Problems with individual
// resources are reported through the outcome, never as errors.
package transform
