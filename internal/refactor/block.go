// Package refactor computes text edits that reorganize Markdown
// link-reference definitions: collecting scattered definitions into one
// trailing block, sorting and pruning them, and extracting inline links into
// new definitions.
package refactor

import (
	"iter"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
	"mdref/internal/links"
)

// lineRange is a span of whole lines, both bounds inclusive. It anchors on
// the start lines of the definitions it covers.
type lineRange struct {
	startLine protocol.UInteger
	endLine   protocol.UInteger
}

// locateDefinitionBlock reports the trailing definition block, if one is
// established. The block exists only when nothing but whitespace follows the
// last definition; it then extends backward over definitions on exactly
// adjacent lines.
func locateDefinitionBlock(doc *document.Document, orderedDefs []links.Link) (lineRange, bool) {
	if len(orderedDefs) == 0 {
		return lineRange{}, false
	}

	last := orderedDefs[len(orderedDefs)-1]
	tail := doc.Text(protocol.Range{
		Start: protocol.Position{Line: last.Range.Start.Line + 1, Character: 0},
		End:   protocol.Position{Line: document.MaxLine, Character: document.MaxCharacter},
	})
	if strings.TrimSpace(tail) != "" {
		// Definitions end mid-content: no canonical block yet.
		return lineRange{}, false
	}

	block := lineRange{
		startLine: last.Range.Start.Line,
		endLine:   last.Range.Start.Line,
	}
	for i := len(orderedDefs) - 2; i >= 0; i-- {
		if orderedDefs[i].Range.Start.Line+1 != block.startLine {
			break
		}
		block.startLine = orderedDefs[i].Range.Start.Line
	}
	return block, true
}

// definitionGroups partitions definitions, given in document order, into
// maximal runs of line-adjacent definitions. Groups are yielded in document
// order; each group's bounds are the start lines of its first and last
// member.
func definitionGroups(orderedDefs []links.Link) iter.Seq[lineRange] {
	return func(yield func(lineRange) bool) {
		i := 0
		for i < len(orderedDefs) {
			group := lineRange{
				startLine: orderedDefs[i].Range.Start.Line,
				endLine:   orderedDefs[i].Range.Start.Line,
			}
			i++
			for i < len(orderedDefs) && orderedDefs[i].Range.Start.Line == group.endLine+1 {
				group.endLine = orderedDefs[i].Range.Start.Line
				i++
			}
			if !yield(group) {
				return
			}
		}
	}
}
