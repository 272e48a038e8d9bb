package diag

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// lspSource tags every exported diagnostic.
const lspSource = "lowerc"

// ToLSP converts violations and an optional internal error into LSP publish
// params, one per source document. sources maps class names to their source
// files; classes without an entry are attributed to a path derived from the
// class name. The IR carries no positions, so every range is the document
// start.
func ToLSP(violations []Violation, err error, sources map[string]string) []protocol.PublishDiagnosticsParams {
	byDoc := make(map[string][]protocol.Diagnostic)

	for _, v := range violations {
		doc := sourceFor(v.Class, sources)
		byDoc[doc] = append(byDoc[doc], protocol.Diagnostic{
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityWarning,
			Code:     v.Policy,
			Source:   lspSource,
			Message:  v.Message,
		})
	}

	var ie *InternalError
	if errors.As(err, &ie) {
		doc := sourceFor(ie.Class, sources)
		msg := ie.Message
		if ie.Method != "" {
			msg = ie.Method + ": " + msg
		}
		byDoc[doc] = append(byDoc[doc], protocol.Diagnostic{
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityError,
			Code:     string(ie.Code),
			Source:   lspSource,
			Message:  msg,
		})
	}

	params := make([]protocol.PublishDiagnosticsParams, 0, len(byDoc))
	for _, doc := range slices.Sorted(maps.Keys(byDoc)) {
		params = append(params, protocol.PublishDiagnosticsParams{
			URI:         uri.File(doc),
			Diagnostics: byDoc[doc],
		})
	}
	return params
}

func sourceFor(class string, sources map[string]string) string {
	if src, ok := sources[class]; ok && src != "" {
		return src
	}
	if class == "" {
		return "program"
	}
	return strings.ReplaceAll(class, ".", "/") + ".java"
}
