// Package compiler drives one translation session.
//
// A Session owns every piece of per-run state: the semantic model, the
// restriction checker, the code generator and the diagnostics sink. It
// compiles exactly once:
//
//  1. validate the front-end program
//  2. prepare the model (resolve classes, de-facto-final flags)
//  3. pre-translation work
//  4. for each requested class: check restrictions, then translate
//  5. post-translation work (skipped for internal bootstrap compiles)
//
// An internal error aborts the session. No units are returned after one.
package compiler
