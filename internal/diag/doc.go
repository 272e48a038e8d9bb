// Package diag holds the single reporting sink shared by the checker and
// the generator.
//
// Three severities flow through it:
//   - Warning: advisory, never blocks translation.
//   - Violation: a restriction policy reported non-compliance. Recoverable.
//   - Internal: an unsupported IR shape reached the generator, or a policy
//     failed to resolve or run. Always fatal for the session.
//
// Violations and counters are session-scoped: a fresh Sink is created for
// every compilation session and never reused.
package diag
