// Package document provides a read-only, line-indexed view over the text of
// one open file, addressed with LSP positions (zero-based lines, UTF-16
// character columns).
package document

import (
	"math"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Sentinel bounds for "to end of line" and "to end of document" ranges.
// Positions are clamped, so a range ending at (MaxLine, MaxCharacter) always
// resolves to the end of the document.
const (
	MaxLine      protocol.UInteger = math.MaxUint32
	MaxCharacter protocol.UInteger = math.MaxUint32
)

// Document holds the content of a single open file together with precomputed
// line boundaries.
type Document struct {
	uri     string
	content string
	lines   []string
	starts  []int // byte offset of each line start
	version protocol.Integer
}

// New creates a document from its full content.
func New(uri string, content string, version protocol.Integer) *Document {
	d := &Document{uri: uri, version: version}
	d.setContent(content)
	return d
}

func (d *Document) setContent(content string) {
	d.content = content
	d.lines = strings.Split(content, "\n")
	d.starts = make([]int, len(d.lines))
	offset := 0
	for i, line := range d.lines {
		d.starts[i] = offset
		offset += len(line) + 1
	}
}

func (d *Document) URI() string {
	return d.uri
}

// Path returns the filesystem path behind a file:// URI.
func (d *Document) Path() string {
	return strings.TrimPrefix(d.uri, "file://")
}

func (d *Document) Content() string {
	return d.content
}

func (d *Document) Version() protocol.Integer {
	return d.version
}

func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the text of the given line without its trailing newline, or
// the empty string when the line is out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// EndPosition returns the position just past the last character of the
// document.
func (d *Document) EndPosition() protocol.Position {
	last := len(d.lines) - 1
	return protocol.Position{
		Line:      protocol.UInteger(last),
		Character: UTF16Len(d.lines[last]),
	}
}

// Offset converts a position to a byte offset into the content, clamping
// out-of-range lines and characters.
func (d *Document) Offset(pos protocol.Position) int {
	if int(pos.Line) >= len(d.lines) {
		return len(d.content)
	}
	line := d.lines[pos.Line]
	return d.starts[pos.Line] + byteOffsetForColumn(line, pos.Character)
}

// Text returns the content covered by the given range.
func (d *Document) Text(rng protocol.Range) string {
	start := d.Offset(rng.Start)
	end := d.Offset(rng.End)
	if end < start {
		start, end = end, start
	}
	return d.content[start:end]
}

// ApplyChange splices an incremental change into the document. A nil range
// replaces the whole content. The version is bumped on every change.
func (d *Document) ApplyChange(rng *protocol.Range, text string) {
	if rng == nil {
		d.setContent(text)
	} else {
		start := d.Offset(rng.Start)
		end := d.Offset(rng.End)
		if end < start {
			start, end = end, start
		}
		d.setContent(d.content[:start] + text + d.content[end:])
	}
	d.version++
}

// ApplyEdits applies a batch of non-overlapping edits as one atomic change.
// Edits are applied back to front so earlier offsets stay valid.
func (d *Document) ApplyEdits(edits []protocol.TextEdit) {
	if len(edits) == 0 {
		return
	}
	sorted := make([]protocol.TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ComparePositions(sorted[i].Range.Start, sorted[j].Range.Start) > 0
	})
	content := d.content
	for _, edit := range sorted {
		start := d.Offset(edit.Range.Start)
		end := d.Offset(edit.Range.End)
		if end < start {
			start, end = end, start
		}
		content = content[:start] + edit.NewText + content[end:]
		d.setContent(content)
	}
	d.version++
}

// ComparePositions orders two positions lexicographically on line, then
// character. It returns -1, 0 or 1.
func ComparePositions(a, b protocol.Position) int {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return -1
		}
		return 1
	}
	if a.Character != b.Character {
		if a.Character < b.Character {
			return -1
		}
		return 1
	}
	return 0
}

// UTF16Len returns the length of s in UTF-16 code units, the unit LSP
// character columns are measured in.
func UTF16Len(s string) protocol.UInteger {
	var n protocol.UInteger
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// ColumnUTF16 converts a byte offset within line into a UTF-16 column.
func ColumnUTF16(line string, byteOffset int) protocol.UInteger {
	if byteOffset > len(line) {
		byteOffset = len(line)
	}
	return UTF16Len(line[:byteOffset])
}

// byteOffsetForColumn converts a UTF-16 column into a byte offset within
// line, clamping past-the-end columns to the line length.
func byteOffsetForColumn(line string, col protocol.UInteger) int {
	var units protocol.UInteger
	for i, r := range line {
		if units >= col {
			return i
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return len(line)
}
