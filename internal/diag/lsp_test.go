package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestToLSP_GroupsByDocument(t *testing.T) {
	violations := []Violation{
		{Policy: "NoExceptions", Class: "app.A", Message: "throw in run"},
		{Policy: "NoFloatingPoint", Class: "app.B", Message: "double field"},
		{Policy: "NoMonitors", Class: "app.A", Message: "enter_monitor"},
	}
	sources := map[string]string{"app.A": "/src/app/A.java"}

	params := ToLSP(violations, nil, sources)
	require.Len(t, params, 2)

	assert.Equal(t, uri.File("/src/app/A.java"), params[0].URI)
	require.Len(t, params[0].Diagnostics, 2)
	assert.Equal(t, "NoExceptions", params[0].Diagnostics[0].Code)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, params[0].Diagnostics[0].Severity)
	assert.Equal(t, "lowerc", params[0].Diagnostics[0].Source)

	assert.Equal(t, uri.File("app/B.java"), params[1].URI)
}

func TestToLSP_InternalError(t *testing.T) {
	err := Incomplete("breakpoint", "breakpoint").At("app.A", "run")

	params := ToLSP(nil, err, nil)
	require.Len(t, params, 1)
	require.Len(t, params[0].Diagnostics, 1)

	d := params[0].Diagnostics[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	assert.Equal(t, "INCOMPLETE_IMPLEMENTATION", d.Code)
	assert.Contains(t, d.Message, "run: ")
}

func TestToLSP_Empty(t *testing.T) {
	assert.Empty(t, ToLSP(nil, nil, nil))
}
