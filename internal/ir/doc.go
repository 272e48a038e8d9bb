// Package ir defines the program form supplied by the external front end.
//
// The front end parses source, resolves types and computes a points-to
// relation; it hands lowerc a Program made of class declarations whose
// concrete methods carry flat three-address units. This package contains
// type definitions plus canonical serialization only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Type names are source-level names ("int", "app.Cat", "int[]")
//   - Jump targets are unit indices within the owning method
//   - All JSON tags use snake_case
//   - Fingerprints use canonical JSON and SHA-256 with domain separation
package ir
