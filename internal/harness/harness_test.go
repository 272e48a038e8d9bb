package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lowerc/internal/codegen"
	"github.com/roach88/lowerc/internal/config"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{
		"entry_point",
		"table_dispatch",
		"devirtualized",
		"failing_policy",
		"skip_on_violation",
		"breakpoint",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "failing_policy"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestAssertGolden(t *testing.T) {
	result, err := Run(loadScenario(t, "failing_policy"))
	require.NoError(t, err)

	var picked []codegen.Unit
	for _, u := range result.Units {
		if u.Name == "app_C.h" || u.Name == "lowerc_program.c" {
			picked = append(picked, u)
		}
	}
	require.Len(t, picked, 2)
	AssertGolden(t, "failing_policy", picked)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "table_dispatch")
	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, first.Units, second.Units)
}

func TestRun_FailingAssertions(t *testing.T) {
	s := loadScenario(t, "entry_point")
	s.Assertions = []Assertion{
		{Type: AssertUnitContains, Unit: "app_Hello.c", Text: "no such text"},
		{Type: AssertUnitAbsent, Unit: "app_Hello.c"},
		{Type: AssertUnitContains, Unit: "missing.c", Text: "x"},
		{Type: AssertClasses, Classes: []string{"app.Other"}},
		{Type: AssertViolations, Count: 3},
		{Type: AssertCounter, Name: "classes_emitted", Count: 9},
		{Type: AssertLedgerRows, Table: "units; DROP TABLE units", Count: 0},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "Assertion failed: unit_contains")
	assert.Contains(t, result.Errors[2], "not emitted")
	assert.Contains(t, result.Errors[6], "invalid table name")
}

func TestRun_UnexpectedCompileError(t *testing.T) {
	s := loadScenario(t, "breakpoint")
	s.Assertions = []Assertion{{Type: AssertLedgerRows, Table: "sessions", Count: 1}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "compilation failed")
}

func TestLoadScenario_ResolvesProgram(t *testing.T) {
	s := loadScenario(t, "entry_point")
	assert.Equal(t, filepath.Join("testdata", "programs", "hello.cue"), s.Program)
	assert.Equal(t, "test-session-entry", s.SessionID)
}

func TestScenario_Config(t *testing.T) {
	s := loadScenario(t, "skip_on_violation")
	cfg, err := s.Config()
	require.NoError(t, err)

	want := config.Defaults()
	want.TranslateOnViolation = false
	assert.Equal(t, want, cfg)

	plain := loadScenario(t, "failing_policy")
	cfg, err = plain.Config()
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoadScenario_Errors(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "p.cue")
	require.NoError(t, os.WriteFile(program, []byte(`classes: []`), 0644))

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nprogram: p.cue\nassertions: [{type: violations}]\n", "name is required"},
		{"missing description", "name: n\nprogram: p.cue\nassertions: [{type: violations}]\n", "description is required"},
		{"missing program", "name: n\ndescription: d\nassertions: [{type: violations}]\n", "program is required"},
		{"program not found", "name: n\ndescription: d\nprogram: nope.cue\nassertions: [{type: violations}]\n", "program not found"},
		{"no assertions", "name: n\ndescription: d\nprogram: p.cue\n", "assertions list is required"},
		{"unknown field", "name: n\ndescription: d\nprogram: p.cue\nflow: []\nassertions: [{type: violations}]\n", "failed to parse YAML"},
		{"unknown assertion", "name: n\ndescription: d\nprogram: p.cue\nassertions: [{type: nope}]\n", "unknown assertion type"},
		{"unit without text", "name: n\ndescription: d\nprogram: p.cue\nassertions: [{type: unit_contains, unit: a.c}]\n", "unit and text are required"},
		{"bad options", "name: n\ndescription: d\nprogram: p.cue\noptions: {inline-threshold: 0}\nassertions: [{type: violations}]\n", "inline-threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "s.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
