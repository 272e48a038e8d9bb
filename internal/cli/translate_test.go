package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cleanUnits = []string{
	"app_C.h", "app_C.c",
	"lowerc_program.h", "lowerc_program.c",
	"rjava_crt.h", "rjava_crt.c",
}

func TestTranslateClean(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "translate", "testdata/clean.json", "-o", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Checking NoMonitors on app.C...pass!")
	assert.Contains(t, out, "No restriction violations.")
	assert.Contains(t, out, "✓ Translated 1 class(es) into 6 unit(s) in "+dir)
	assert.Contains(t, out, "Session: ")

	for _, name := range cleanUnits {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestTranslateJSON(t *testing.T) {
	dir := t.TempDir()

	out, stderr, err := execute(t, "--format", "json", "translate", "testdata/clean.json", "-o", dir)
	require.NoError(t, err)

	var resp struct {
		Status    string          `json:"status"`
		SessionID string          `json:"session_id"`
		Data      TranslateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, resp.Data.SessionID)
	assert.Equal(t, []string{"app.C"}, resp.Data.Classes)
	assert.Equal(t, dir, resp.Data.OutputDir)
	require.Len(t, resp.Data.Units, len(cleanUnits))
	for i, u := range resp.Data.Units {
		assert.Equal(t, cleanUnits[i], u.Name)
		assert.NotEmpty(t, u.Hash)
	}

	// Checker lines never reach stdout in JSON mode.
	assert.Contains(t, stderr, "Checking NoMonitors on app.C...pass!")
}

func TestTranslateViolations(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "translate", "testdata/float.json", "-o", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "Checking NoFloatingPoint on app.F...fail!")
	assert.Contains(t, out, "1 restriction violation(s):")
	assert.Contains(t, out, "[NoFloatingPoint] app.F: field x has type double")
	assert.FileExists(t, filepath.Join(dir, "app_F.c"))
}

func TestTranslateSkipOnViolation(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "translate", "testdata/float.json", "-o", dir, "--skip-on-violation")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "skipped app.F")
	assert.NoFileExists(t, filepath.Join(dir, "app_F.c"))
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing program", []string{"translate", "testdata/nope.json"}, "Error [E005]"},
		{"incomplete", []string{"translate", "testdata/breakpoint.cue"}, "Error [INCOMPLETE_IMPLEMENTATION]"},
		{"unknown class", []string{"translate", "testdata/clean.json", "--class", "app.Nope"}, "Error [UNKNOWN_CLASS]"},
		{"bad threshold", []string{"translate", "testdata/clean.json", "--inline-threshold", "0"}, "Error [E009]"},
		{"bad config", []string{"--config", "testdata/missing.toml", "translate", "testdata/clean.json"}, "Error [E009]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-o", t.TempDir())
			out, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestTranslateAbortWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	_, _, err := execute(t, "translate", "testdata/breakpoint.cue", "-o", dir)
	require.Error(t, err)
	assert.NoDirExists(t, dir)
}

func TestOptionFlags_Resolve(t *testing.T) {
	newCmd := func(t *testing.T, args ...string) (*cobra.Command, *optionFlags) {
		t.Helper()
		var f optionFlags
		cmd := &cobra.Command{Use: "x"}
		f.register(cmd)
		require.NoError(t, cmd.ParseFlags(args))
		return cmd, &f
	}

	t.Run("defaults", func(t *testing.T) {
		cmd, f := newCmd(t)
		opts, err := f.resolve(&RootOptions{}, cmd)
		require.NoError(t, err)
		assert.True(t, opts.Devirtualize)
		assert.True(t, opts.TranslateOnViolation)
		assert.Equal(t, 25, opts.InlineThreshold)
	})

	t.Run("file", func(t *testing.T) {
		cmd, f := newCmd(t)
		opts, err := f.resolve(&RootOptions{Config: "testdata/options.toml"}, cmd)
		require.NoError(t, err)
		assert.False(t, opts.Devirtualize)
		assert.False(t, opts.TranslateOnViolation)
		assert.Equal(t, 8, opts.InlineThreshold)
	})

	t.Run("flags override file", func(t *testing.T) {
		cmd, f := newCmd(t, "--devirtualize", "--inline-threshold", "12", "--mute")
		opts, err := f.resolve(&RootOptions{Config: "testdata/options.toml"}, cmd)
		require.NoError(t, err)
		assert.True(t, opts.Devirtualize)
		assert.Equal(t, 12, opts.InlineThreshold)
		assert.True(t, opts.Mute)
		assert.False(t, opts.TranslateOnViolation)
	})

	t.Run("invalid", func(t *testing.T) {
		cmd, f := newCmd(t, "--inline-threshold", "-1")
		_, err := f.resolve(&RootOptions{}, cmd)
		require.Error(t, err)
	})
}
