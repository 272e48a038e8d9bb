package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "lowerc", root.Use)
	assert.Contains(t, root.Long, "restriction policies")

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"check", "report", "scenario", "translate"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		path      []string
		flag      string
		shorthand string
		def       string
	}{
		{nil, "verbose", "v", "false"},
		{nil, "format", "", "text"},
		{nil, "config", "", ""},
		{nil, "db", "", ""},
		{[]string{"translate"}, "output", "o", "."},
		{[]string{"translate"}, "devirtualize", "", "true"},
		{[]string{"translate"}, "allow-inline", "", "false"},
		{[]string{"translate"}, "object-inlining", "", "false"},
		{[]string{"translate"}, "skip-on-violation", "", "false"},
		{[]string{"translate"}, "mute", "", "false"},
		{[]string{"translate"}, "class", "", "[]"},
		{[]string{"check"}, "inline-threshold", "", ""},
		{[]string{"report"}, "latest", "", "false"},
		{[]string{"report"}, "emitting", "", ""},
		{[]string{"scenario"}, "filter", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			cmd, _, err := NewRootCommand().Find(tt.path)
			require.NoError(t, err)

			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				f = cmd.PersistentFlags().Lookup(tt.flag)
			}
			require.NotNil(t, f, "%v --%s", tt.path, tt.flag)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			if tt.def != "" {
				assert.Equal(t, tt.def, f.DefValue)
			}
		})
	}
}

func TestRootCommand_Format(t *testing.T) {
	for _, format := range ValidFormats {
		assert.True(t, isValidFormat(format), format)
	}
	assert.False(t, isValidFormat("yaml"))

	_, _, err := execute(t, "--format", "xml", "check", "testdata/clean.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}
