package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioPass(t *testing.T) {
	out, _, err := execute(t, "scenario", "testdata/scenarios/clean.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ clean")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestScenarioDirectory(t *testing.T) {
	out, _, err := execute(t, "scenario", "testdata/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✓ clean")
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "classes_emitted = 5")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestScenarioFilter(t *testing.T) {
	out, _, err := execute(t, "scenario", "testdata/scenarios", "--filter", "cle*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, _, err = execute(t, "scenario", "testdata/scenarios", "--filter", "zzz*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestScenarioJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "scenario", "testdata/scenarios")
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ScenarioRun `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
}

func TestScenarioHarnessSuite(t *testing.T) {
	out, _, err := execute(t, "scenario", "../harness/testdata/scenarios")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 failed")
}

func TestScenarioErrors(t *testing.T) {
	_, _, err := execute(t, "scenario", "testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "scenario", "testdata/scenarios", "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenarioLoadFailure(t *testing.T) {
	res := runScenario("testdata/clean.json")
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "failed to load scenario")
}
