// Package semantic is the canonical, cached view of a front-end program.
//
// A Model owns one instance per class, type, method, field and local.
// Entities are built lazily on first access and memoized, so resolving the
// same name twice yields the same pointer. Method bodies are lowered from
// flat IR units into a closed set of statement and value variants by
// BuildBody.
//
// The only mutations after construction are the generator-visible flags
// (Type.Intrinsic, Method.Intrinsic, Local.ByValue, Field.Inlinable), which
// are fixed by hooks and option gates while entities are built and read
// afterwards.
package semantic
