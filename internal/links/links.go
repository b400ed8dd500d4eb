// Package links defines the link model for Markdown documents and the
// provider that extracts links and link-reference definitions from them.
package links

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/text/cases"
)

// HrefKind discriminates the destination of a link.
type HrefKind int

const (
	// HrefExternal is an absolute target such as https://example.com.
	HrefExternal HrefKind = iota
	// HrefInternal is a path within the workspace, with an optional fragment.
	HrefInternal
	// HrefReference is a label resolved through a link-reference definition.
	HrefReference
)

// Href is the destination of a link. Exactly the fields for its kind are set.
type Href struct {
	Kind HrefKind

	// External is the absolute URI, for HrefExternal.
	External string

	// Path and Fragment describe a workspace target, for HrefInternal.
	Path     string
	Fragment string

	// Reference is the definition label, for HrefReference.
	Reference string
}

// LinkKind discriminates the syntactic form of a link construct.
type LinkKind int

const (
	// LinkInline is [text](destination).
	LinkInline LinkKind = iota
	// LinkAuto is <destination>.
	LinkAuto
	// LinkReference is [text][label] or [label][].
	LinkReference
	// LinkDefinition is [label]: destination.
	LinkDefinition
)

// Link is one link construct found in a document.
type Link struct {
	Kind LinkKind

	// Range is the full span of the construct.
	Range protocol.Range

	// TargetRange is the span of the written destination: for inline links
	// the parenthesized destination including the parens, for autolinks the
	// whole <...> construct, for reference links the [label] part. Unset for
	// definitions.
	TargetRange protocol.Range

	// HrefText is the destination exactly as authored, without delimiters.
	HrefText string

	Href Href

	// Ref is the definition label as authored and RefRange its span. Only
	// set for definitions.
	Ref      string
	RefRange protocol.Range
}

var labelFolder = cases.Fold()

// NormalizeLabel maps a reference label to its form used for matching:
// surrounding whitespace stripped, runs of whitespace collapsed, Unicode
// case folded. This follows CommonMark reference matching semantics.
func NormalizeLabel(label string) string {
	collapsed := strings.Join(strings.Fields(label), " ")
	return labelFolder.String(collapsed)
}

// DefinitionSet maps normalized labels to definitions. When a document
// repeats a label, the first occurrence wins.
type DefinitionSet struct {
	byLabel map[string]Link
}

// NewDefinitionSet builds a set from all definition links in document order.
func NewDefinitionSet(all []Link) DefinitionSet {
	set := DefinitionSet{byLabel: make(map[string]Link)}
	for _, link := range all {
		if link.Kind != LinkDefinition {
			continue
		}
		key := NormalizeLabel(link.Ref)
		if _, exists := set.byLabel[key]; !exists {
			set.byLabel[key] = link
		}
	}
	return set
}

// Lookup resolves a label to its definition.
func (s DefinitionSet) Lookup(label string) (Link, bool) {
	def, ok := s.byLabel[NormalizeLabel(label)]
	return def, ok
}

// Has reports whether a definition exists for the label.
func (s DefinitionSet) Has(label string) bool {
	_, ok := s.byLabel[NormalizeLabel(label)]
	return ok
}

// Len returns the number of distinct labels in the set.
func (s DefinitionSet) Len() int {
	return len(s.byLabel)
}

// Snapshot is the immutable result of extracting links from one document
// version.
type Snapshot struct {
	// Links holds every link construct, definitions included, in document
	// order.
	Links []Link

	// Definitions indexes the definition links by normalized label.
	Definitions DefinitionSet
}

// DefinitionLinks returns the definition links in document order.
func (s *Snapshot) DefinitionLinks() []Link {
	var defs []Link
	for _, link := range s.Links {
		if link.Kind == LinkDefinition {
			defs = append(defs, link)
		}
	}
	return defs
}
