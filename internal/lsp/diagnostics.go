package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/links"
)

var diagnosticSource = "mdref"

// computeDiagnostics flags reference links without a matching definition and
// duplicate definitions for the same normalized label.
func computeDiagnostics(snapshot *links.Snapshot) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	warning := protocol.DiagnosticSeverityWarning
	for _, link := range snapshot.Links {
		if link.Kind != links.LinkReference {
			continue
		}
		if snapshot.Definitions.Has(link.Href.Reference) {
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    link.Range,
			Severity: &warning,
			Source:   &diagnosticSource,
			Message:  fmt.Sprintf("no link definition found for %q", link.Href.Reference),
		})
	}

	hint := protocol.DiagnosticSeverityHint
	seen := make(map[string]bool)
	for _, def := range snapshot.DefinitionLinks() {
		key := links.NormalizeLabel(def.Ref)
		if seen[key] {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    def.RefRange,
				Severity: &hint,
				Source:   &diagnosticSource,
				Message:  fmt.Sprintf("duplicate definition for %q, the first one wins", def.Ref),
			})
			continue
		}
		seen[key] = true
	}

	return diagnostics
}

func publishDiagnostics(glspContext *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	glspContext.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
