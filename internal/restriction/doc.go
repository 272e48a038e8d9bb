// Package restriction runs named policies over a class before it is
// translated.
//
// Each restriction name a class carries resolves, by appending CheckSuffix,
// to a policy in a Registry. The registry is open: deployments register
// their own policies next to the built-ins. A policy reporting failure
// records violations in the session sink and never aborts the run; a name
// that resolves to nothing, or a policy that errors or panics, is an
// internal error.
package restriction
