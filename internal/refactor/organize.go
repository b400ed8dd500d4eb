package refactor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mdref/internal/document"
	"mdref/internal/links"
)

// OrganizeOptions controls a single organize pass.
type OrganizeOptions struct {
	// RemoveUnused drops definitions no reference link resolves to.
	RemoveUnused bool
}

// Organizer gathers a document's link-reference definitions into one sorted
// trailing block.
type Organizer struct {
	provider links.Provider
}

func NewOrganizer(provider links.Provider) *Organizer {
	return &Organizer{provider: provider}
}

// Organize computes the edits that move every definition into a single
// trailing block, sorted by label. It returns nil edits when there is
// nothing to do, including when ctx is cancelled after the snapshot fetch.
func (o *Organizer) Organize(ctx context.Context, doc *document.Document, opts OrganizeOptions) ([]protocol.TextEdit, error) {
	snapshot, err := o.provider.GetLinks(ctx, doc)
	if ctx.Err() != nil {
		// Cancelled: an empty result, never a partial one.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	defs := snapshot.DefinitionLinks()
	if len(defs) == 0 {
		return nil, nil
	}

	block, hasBlock := locateDefinitionBlock(doc, defs)

	// Clear every definition group that sits before the established block.
	// The block's own group is rewritten in place instead.
	var edits []protocol.TextEdit
	for group := range definitionGroups(defs) {
		if hasBlock && group.startLine >= block.startLine {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: group.startLine, Character: 0},
				End:   protocol.Position{Line: group.endLine + 1, Character: 0},
			},
			NewText: "",
		})
	}

	final := sortDefinitions(filterDefinitions(defs, snapshot, opts))
	rendered := renderDefinitions(final)

	if hasBlock {
		if len(edits) == 0 && sameDefinitionList(final, defs) {
			// Already one sorted block: idempotence guarantee.
			return nil, nil
		}
		newText := rendered
		if block.startLine > 0 && strings.TrimSpace(doc.Line(int(block.startLine-1))) != "" {
			newText = "\n" + rendered
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: block.startLine, Character: 0},
				End:   protocol.Position{Line: block.endLine, Character: document.MaxCharacter},
			},
			NewText: newText,
		})
		return edits, nil
	}

	// No block: append after the last non-blank line following the
	// definitions, falling back to the last definition's own line.
	insertLine := int(defs[len(defs)-1].Range.Start.Line)
	for l := insertLine + 1; l < doc.LineCount(); l++ {
		if strings.TrimSpace(doc.Line(l)) != "" {
			insertLine = l
		}
	}
	prefix := "\n"
	if insertLine == doc.LineCount()-1 {
		prefix = "\n\n"
	}
	at := protocol.Position{
		Line:      protocol.UInteger(insertLine),
		Character: document.MaxCharacter,
	}
	edits = append(edits, protocol.TextEdit{
		Range:   protocol.Range{Start: at, End: at},
		NewText: prefix + rendered,
	})
	return edits, nil
}

// filterDefinitions applies the RemoveUnused policy against the snapshot's
// reference links.
func filterDefinitions(defs []links.Link, snapshot *links.Snapshot, opts OrganizeOptions) []links.Link {
	if !opts.RemoveUnused {
		return defs
	}
	used := make(map[string]bool)
	for _, link := range snapshot.Links {
		if link.Kind == links.LinkReference {
			used[links.NormalizeLabel(link.Href.Reference)] = true
		}
	}
	var kept []links.Link
	for _, def := range defs {
		if used[links.NormalizeLabel(def.Ref)] {
			kept = append(kept, def)
		}
	}
	return kept
}

// sortDefinitions orders definitions by label using a locale-aware collator.
func sortDefinitions(defs []links.Link) []links.Link {
	sorted := make([]links.Link, len(defs))
	copy(sorted, defs)
	collator := collate.New(language.Und)
	sort.SliceStable(sorted, func(i, j int) bool {
		return collator.CompareString(sorted[i].Ref, sorted[j].Ref) < 0
	})
	return sorted
}

// sameDefinitionList reports whether the final list matches the original
// document-order list position by position. The comparison is strict on
// length, so a removal pass never short-circuits as a no-op.
func sameDefinitionList(final, original []links.Link) bool {
	if len(final) != len(original) {
		return false
	}
	for i := range final {
		if links.NormalizeLabel(final[i].Ref) != links.NormalizeLabel(original[i].Ref) {
			return false
		}
	}
	return true
}

// renderDefinitions renders one definition per line, preserving each
// definition's literal target text.
func renderDefinitions(defs []links.Link) string {
	lines := make([]string, len(defs))
	for i, def := range defs {
		lines[i] = renderDefinition(def.Ref, def.HrefText)
	}
	return strings.Join(lines, "\n")
}

func renderDefinition(ref, target string) string {
	return fmt.Sprintf("[%s]: %s", ref, target)
}
