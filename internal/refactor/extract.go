package refactor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
	"mdref/internal/links"
)

// ExtractKind is the code action kind of the extract refactoring.
const ExtractKind = protocol.CodeActionKindRefactorExtract

// CommandRenameLinkDefinition is the follow-up command requesting a rename
// of the freshly inserted placeholder label. The host executes it; the
// engine only positions it.
const CommandRenameLinkDefinition = "mdref.renameLinkDefinition"

const extractTitle = "Extract to link definition"

// Action is one code action computed by the extractor. A non-empty
// DisabledReason marks a sentinel action that cannot run.
type Action struct {
	Title          string
	Kind           protocol.CodeActionKind
	Edits          []protocol.TextEdit
	Command        *protocol.Command
	DisabledReason string
}

var (
	notOnLinkAction = Action{
		Title:          extractTitle,
		Kind:           ExtractKind,
		DisabledReason: "Not on a link",
	}
	alreadyReferenceAction = Action{
		Title:          extractTitle,
		Kind:           ExtractKind,
		DisabledReason: "Link is already a reference",
	}
)

// Extractor turns an inline link into a link-reference definition,
// rewriting every occurrence of the same destination to the new reference.
type Extractor struct {
	provider links.Provider
}

func NewExtractor(provider links.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract computes the extract-to-definition action for the innermost link
// overlapping rng. When no work can be done it returns one of the disabled
// sentinel actions instead.
func (e *Extractor) Extract(ctx context.Context, doc *document.Document, rng protocol.Range, only []protocol.CodeActionKind) ([]Action, error) {
	if !kindAllowed(only) {
		return nil, nil
	}

	snapshot, err := e.provider.GetLinks(ctx, doc)
	if ctx.Err() != nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	var candidates []links.Link
	for _, link := range snapshot.Links {
		if link.Kind != links.LinkDefinition && rangesIntersect(link.Range, rng) {
			candidates = append(candidates, link)
		}
	}
	if len(candidates) == 0 {
		return []Action{notOnLinkAction}, nil
	}

	// Latest start wins: the innermost, most specific link under the range.
	sort.SliceStable(candidates, func(i, j int) bool {
		return document.ComparePositions(candidates[i].Range.Start, candidates[j].Range.Start) > 0
	})
	var target *links.Link
	for i := range candidates {
		kind := candidates[i].Href.Kind
		if kind == links.HrefExternal || kind == links.HrefInternal {
			target = &candidates[i]
			break
		}
	}
	if target == nil {
		return []Action{alreadyReferenceAction}, nil
	}

	label := placeholderLabel(snapshot.Definitions)

	// Collapse every occurrence of the same destination onto the one new
	// definition.
	var edits []protocol.TextEdit
	for _, link := range snapshot.Links {
		if link.Kind != links.LinkInline && link.Kind != links.LinkAuto {
			continue
		}
		if !hrefEqual(link.Href, target.Href) {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range:   link.TargetRange,
			NewText: "[" + label + "]",
		})
	}

	targetText := trimTargetDelimiters(doc.Text(target.TargetRange))
	edits = append(edits, buildInsertEdit(doc, snapshot.DefinitionLinks(), []NewDefinition{
		{Target: targetText, Label: label},
	}))

	// After the edits apply, this position sits just inside the brackets of
	// the rewritten link, on the placeholder label.
	renamePosition := protocol.Position{
		Line:      target.TargetRange.Start.Line,
		Character: target.TargetRange.Start.Character + 1,
	}

	return []Action{{
		Title: extractTitle,
		Kind:  ExtractKind,
		Edits: edits,
		Command: &protocol.Command{
			Title:     "Rename definition",
			Command:   CommandRenameLinkDefinition,
			Arguments: []any{doc.URI(), renamePosition},
		},
	}}, nil
}

// placeholderLabel allocates a label absent from the definition set: "def",
// then "def2", "def3", ...
func placeholderLabel(defs links.DefinitionSet) string {
	if !defs.Has("def") {
		return "def"
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("def%d", i)
		if !defs.Has(candidate) {
			return candidate
		}
	}
}

// kindAllowed reports whether the requested code action kinds admit the
// extract refactoring. An empty filter admits everything.
func kindAllowed(only []protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, kind := range only {
		if strings.HasPrefix(string(ExtractKind), string(kind)) {
			return true
		}
	}
	return false
}

// hrefEqual is structural destination equality: external links match on the
// resolved URI, internal links on resolved path and fragment.
func hrefEqual(a, b links.Href) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case links.HrefExternal:
		return a.External == b.External
	case links.HrefInternal:
		return a.Path == b.Path && a.Fragment == b.Fragment
	default:
		return false
	}
}

// trimTargetDelimiters strips the enclosing (...) or <...> from a written
// link target.
func trimTargetDelimiters(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '(' && last == ')') || (first == '<' && last == '>') {
			text = text[1 : len(text)-1]
		}
	}
	return strings.TrimSpace(text)
}

// rangesIntersect reports whether two ranges overlap or touch.
func rangesIntersect(a, b protocol.Range) bool {
	return document.ComparePositions(a.Start, b.End) <= 0 &&
		document.ComparePositions(b.Start, a.End) <= 0
}
