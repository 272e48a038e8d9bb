package testutil

// FixedSessionGenerator generates the same session ID every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// Two sessions with the same FixedSessionGenerator produce byte-identical
// ledger rows and reports.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a new fixed session ID generator.
//
// The ID is typically set in the scenario YAML:
//
//	session_id: "test-session-00000000-0000-0000-0000-000000000001"
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements compiler.SessionIDGenerator interface.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
