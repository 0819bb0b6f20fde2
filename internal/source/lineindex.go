package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// LineIndex resolves between byte offsets and (line, character) positions
// for one immutable document snapshot. Lines are split on '\n' only; a
// trailing newline opens a final empty line, matching how editors count.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex indexes a document snapshot.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// LineCount returns the number of lines in the snapshot.
func (ix *LineIndex) LineCount() int {
	return len(ix.starts)
}

// Line returns the text of line i without its trailing newline. Out-of-range
// lines yield "".
func (ix *LineIndex) Line(i int) string {
	if i < 0 || i >= len(ix.starts) {
		return ""
	}
	start := ix.starts[i]
	end := len(ix.text)
	if i+1 < len(ix.starts) {
		end = ix.starts[i+1] - 1
	}
	return ix.text[start:end]
}

// PositionFor converts a byte offset into a Position, clamping offsets
// outside the snapshot to its bounds.
func (ix *LineIndex) PositionFor(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.text) {
		offset = len(ix.text)
	}
	line := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	return Position{
		Line:      line,
		Character: utf8.RuneCountInString(ix.text[ix.starts[line]:offset]),
	}
}

// OffsetFor converts a Position into a byte offset. The position must name
// an existing line and a character no further than one past its last rune
// (the newline slot, or end of text on the final line).
func (ix *LineIndex) OffsetFor(p Position) (int, error) {
	if p.Line < 0 || p.Line >= len(ix.starts) {
		return 0, fmt.Errorf("line %d out of range (document has %d lines)", p.Line, len(ix.starts))
	}
	if p.Character < 0 {
		return 0, fmt.Errorf("negative character %d on line %d", p.Character, p.Line)
	}
	offset := ix.starts[p.Line]
	for c := 0; c < p.Character; c++ {
		if offset >= len(ix.text) || ix.text[offset] == '\n' {
			return 0, fmt.Errorf("character %d out of range on line %d", p.Character, p.Line)
		}
		_, size := utf8.DecodeRuneInString(ix.text[offset:])
		offset += size
	}
	return offset, nil
}
