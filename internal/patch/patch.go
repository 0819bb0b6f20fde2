// Package patch applies position-addressed text edits to a document.
//
// Edits carry zero-based (line, character) coordinates into the original
// text. A batch is applied as a single transaction: every edit is resolved
// and validated against the untouched input first, so either all edits land
// or none do.
package patch

import (
	"fmt"
	"sort"
	"strings"

	"go.trai.ch/graphql-lsp-router/internal/source"
)

// Edit replaces the text between Start (inclusive) and End (exclusive)
// with NewText. Start and End address the original document.
type Edit struct {
	Start   source.Position
	End     source.Position
	NewText string
}

type span struct {
	start, end int
	text       string
}

// Apply runs all edits against text and returns the patched result.
// Edits may be given in any order but must not overlap. Touching ranges,
// where one edit ends exactly where the next begins, are allowed.
func Apply(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}

	idx := source.NewLineIndex(text)
	spans := make([]span, 0, len(edits))
	for i, e := range edits {
		start, err := idx.OffsetFor(e.Start)
		if err != nil {
			return "", fmt.Errorf("edit %d start: %w", i, err)
		}
		end, err := idx.OffsetFor(e.End)
		if err != nil {
			return "", fmt.Errorf("edit %d end: %w", i, err)
		}
		if end < start {
			return "", fmt.Errorf("edit %d: end %d:%d precedes start %d:%d",
				i, e.End.Line, e.End.Character, e.Start.Line, e.Start.Character)
		}
		spans = append(spans, span{start: start, end: end, text: e.NewText})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return "", fmt.Errorf("overlapping edits at offsets %d and %d",
				spans[i-1].start, spans[i].start)
		}
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		b.WriteString(s.text)
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
