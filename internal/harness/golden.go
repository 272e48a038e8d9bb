package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lowerc/internal/codegen"
	"github.com/roach88/lowerc/internal/ir"
)

// Snapshot captures the deterministic outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string   `json:"scenario_name"`
	SessionID    string   `json:"session_id"`
	Classes      []string `json:"classes"`
	Units        []string `json:"units"`
	Violations   []string `json:"violations"`
	ErrorCode    string   `json:"error_code,omitempty"`
	Output       string   `json:"output"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		SessionID:    result.Report.SessionID,
		Classes:      result.Report.Classes,
		Units:        unitNames(result),
		ErrorCode:    result.Report.ErrorCode,
		Output:       result.Output,
	}
	for _, v := range result.Report.Violations {
		s.Violations = append(s.Violations, v.String())
	}
	return s
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"session_id":    s.SessionID,
		"classes":       s.Classes,
		"units":         s.Units,
		"violations":    s.Violations,
		"output":        s.Output,
	}
	if s.ErrorCode != "" {
		m["error_code"] = s.ErrorCode
	}
	return m
}

// Canonical returns the snapshot as canonical JSON.
func (s *Snapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := NewSnapshot(scenario.Name, result)
	data, err := snapshot.Canonical()
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}

// AssertGolden compares emitted units against golden files named
// {name}_{unit}.golden, with dots in unit names replaced by underscores.
func AssertGolden(t *testing.T, name string, units []codegen.Unit) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, u := range units {
		g.Assert(t, name+"_"+strings.ReplaceAll(u.Name, ".", "_"), []byte(u.Text))
	}
}
