package links

import (
	"context"
	"net/url"
	stdpath "path"
	"regexp"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"mdref/internal/document"
)

// Link-reference definitions allow up to three leading spaces, a bracketed
// label, a colon and the literal target text (which may include a title).
var definitionPattern = regexp.MustCompile(`^ {0,3}\[([^\[\]]+)\]:\s*(.+?)\s*$`)

var (
	inlinePattern    = regexp.MustCompile(`\[([^\[\]]*)\]\(([^()]*)\)`)
	referencePattern = regexp.MustCompile(`\[([^\[\]]*)\]\[([^\[\]]*)\]`)
	autoPattern      = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9+.-]*:[^<>\s]+)>`)
)

// Computer extracts links and link-reference definitions from a document by
// scanning it line by line. It implements Provider.
type Computer struct{}

func NewComputer() *Computer {
	return &Computer{}
}

// GetLinks scans the whole document and returns its links snapshot. Columns
// in the reported ranges are UTF-16 code units.
func (c *Computer) GetLinks(ctx context.Context, doc *document.Document) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []Link
	for i := 0; i < doc.LineCount(); i++ {
		line := doc.Line(i)
		if def, ok := scanDefinition(line, i); ok {
			all = append(all, def)
			continue
		}
		all = append(all, scanLine(line, i, doc.Path())...)
	}

	return &Snapshot{
		Links:       all,
		Definitions: NewDefinitionSet(all),
	}, nil
}

// scanDefinition matches a whole line against the definition form.
func scanDefinition(line string, lineNo int) (Link, bool) {
	m := definitionPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return Link{}, false
	}
	ref := line[m[2]:m[3]]
	target := line[m[4]:m[5]]
	return Link{
		Kind:     LinkDefinition,
		Range:    lineSpan(line, lineNo, 0, len(line)),
		RefRange: lineSpan(line, lineNo, m[2], m[3]),
		Ref:      ref,
		HrefText: target,
	}, true
}

// scanLine collects the inline, reference and auto links of one line in
// column order. Overlapping matches keep the leftmost one.
func scanLine(line string, lineNo int, docPath string) []Link {
	var found []Link

	for _, m := range inlinePattern.FindAllStringSubmatchIndex(line, -1) {
		dest := line[m[4]:m[5]]
		found = append(found, Link{
			Kind:        LinkInline,
			Range:       lineSpan(line, lineNo, m[0], m[1]),
			TargetRange: lineSpan(line, lineNo, m[4]-1, m[1]),
			HrefText:    strings.TrimSpace(dest),
			Href:        parseDestination(dest, docPath),
		})
	}
	for _, m := range autoPattern.FindAllStringSubmatchIndex(line, -1) {
		dest := line[m[2]:m[3]]
		found = append(found, Link{
			Kind:        LinkAuto,
			Range:       lineSpan(line, lineNo, m[0], m[1]),
			TargetRange: lineSpan(line, lineNo, m[0], m[1]),
			HrefText:    dest,
			Href:        parseDestination(dest, docPath),
		})
	}
	for _, m := range referencePattern.FindAllStringSubmatchIndex(line, -1) {
		label := line[m[4]:m[5]]
		if label == "" {
			// Collapsed form [label][]: the text is the label.
			label = line[m[2]:m[3]]
		}
		found = append(found, Link{
			Kind:        LinkReference,
			Range:       lineSpan(line, lineNo, m[0], m[1]),
			TargetRange: lineSpan(line, lineNo, m[3]+1, m[1]),
			HrefText:    label,
			Href:        Href{Kind: HrefReference, Reference: label},
		})
	}

	return dropOverlapping(found)
}

// dropOverlapping sorts links by start column and removes any link starting
// inside an earlier one.
func dropOverlapping(found []Link) []Link {
	if len(found) < 2 {
		return found
	}
	sorted := make([]Link, 0, len(found))
	for len(found) > 0 {
		best := 0
		for i := 1; i < len(found); i++ {
			if document.ComparePositions(found[i].Range.Start, found[best].Range.Start) < 0 {
				best = i
			}
		}
		link := found[best]
		found = append(found[:best], found[best+1:]...)
		if len(sorted) > 0 {
			prev := sorted[len(sorted)-1]
			if document.ComparePositions(link.Range.Start, prev.Range.End) < 0 {
				continue
			}
		}
		sorted = append(sorted, link)
	}
	return sorted
}

// lineSpan builds a single-line range from byte offsets within the line.
func lineSpan(line string, lineNo, startByte, endByte int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(lineNo),
			Character: document.ColumnUTF16(line, startByte),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(lineNo),
			Character: document.ColumnUTF16(line, endByte),
		},
	}
}

// parseDestination classifies a written destination as external or internal.
// Internal paths are resolved against the document's directory; fragments
// split at the first #. A leading token is taken so optional titles do not
// leak into resolution.
func parseDestination(dest, docPath string) Href {
	dest = strings.TrimSpace(dest)
	if i := strings.IndexAny(dest, " \t"); i >= 0 {
		dest = dest[:i]
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return Href{Kind: HrefExternal, External: u.String()}
	}
	path, fragment, _ := strings.Cut(dest, "#")
	switch {
	case path == "":
		path = docPath
	case !strings.HasPrefix(path, "/"):
		path = stdpath.Join(stdpath.Dir(docPath), path)
	}
	return Href{Kind: HrefInternal, Path: path, Fragment: fragment}
}
