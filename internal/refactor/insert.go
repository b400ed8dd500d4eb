package refactor

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
	"mdref/internal/links"
)

// NewDefinition is a definition to be inserted: its literal target text and
// the label binding it.
type NewDefinition struct {
	Target string
	Label  string
}

// buildInsertEdit renders the new definitions, one per line, and appends
// them to the existing definition block, or to the document end when no
// block exists. The edit is a pure insertion: existing definitions are never
// reordered or rewritten.
func buildInsertEdit(doc *document.Document, existingDefs []links.Link, newDefs []NewDefinition) protocol.TextEdit {
	lines := make([]string, len(newDefs))
	for i, def := range newDefs {
		lines[i] = renderDefinition(def.Label, def.Target)
	}
	rendered := strings.Join(lines, "\n")

	if block, ok := locateDefinitionBlock(doc, existingDefs); ok {
		at := protocol.Position{Line: block.endLine, Character: document.MaxCharacter}
		return protocol.TextEdit{
			Range:   protocol.Range{Start: at, End: at},
			NewText: "\n" + rendered,
		}
	}

	at := doc.EndPosition()
	prefix := "\n\n"
	if doc.Content() == "" {
		prefix = ""
	}
	return protocol.TextEdit{
		Range:   protocol.Range{Start: at, End: at},
		NewText: prefix + rendered,
	}
}
