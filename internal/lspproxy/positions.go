package lspproxy

import (
	"unicode/utf16"

	"go.trai.ch/graphql-lsp-router/internal/patch"
	"go.trai.ch/graphql-lsp-router/internal/source"
)

// toLSPPosition re-encodes a rune-counted position into UTF-16 units for
// the wire. Lines map one to one, only the column changes when the line
// holds characters outside the basic multilingual plane.
func toLSPPosition(idx *source.LineIndex, pos source.Position) Position {
	if pos.Line >= idx.LineCount() {
		return Position{Line: pos.Line, Character: pos.Character}
	}

	line := idx.Line(pos.Line)
	units := 0
	count := 0
	for _, r := range line {
		if count >= pos.Character {
			break
		}
		units += utf16.RuneLen(r)
		count++
	}
	return Position{Line: pos.Line, Character: units}
}

// toLSPEdits converts patch edits into wire edits against the given text.
// The result is never nil so an empty set marshals as [].
func toLSPEdits(text string, edits []patch.Edit) []TextEdit {
	idx := source.NewLineIndex(text)
	out := make([]TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, TextEdit{
			Range: Range{
				Start: toLSPPosition(idx, e.Start),
				End:   toLSPPosition(idx, e.End),
			},
			NewText: e.NewText,
		})
	}
	return out
}
