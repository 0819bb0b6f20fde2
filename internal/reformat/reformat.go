// Package reformat pretty-prints GraphQL fragments embedded in editor
// documents and computes the text edits that swap the formatted text
// back in without disturbing the surrounding host code.
package reformat

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Prettify parses content as an executable GraphQL document and returns
// the canonical two-space-indented rendering, without a trailing newline.
func Prettify(content string) (string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: content})
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return strings.TrimSpace(buf.String()), nil
}

// RestoreOperationPadding re-wraps prettified text in the whitespace frame
// of the fragment it replaces. The result starts with a newline, indents
// every line with the fragment's original leading pad and keeps the
// original trailing whitespace, so the host file's delimiters stay where
// the author put them.
func RestoreOperationPadding(original, pretty string) string {
	pad := leadingPad(original)
	var b strings.Builder
	for _, line := range strings.Split(pretty, "\n") {
		b.WriteByte('\n')
		// The formatter emits no blank lines; should one ever appear it
		// stays empty instead of gaining trailing whitespace.
		if line != "" {
			b.WriteString(pad)
		}
		b.WriteString(line)
	}
	b.WriteString(trailingWhitespace(original))
	return b.String()
}

// leadingPad is the whitespace run directly before the first word character
// of the original, truncated to the segment after its last newline. A word
// character sitting right behind a non-whitespace rune, as in an anonymous
// "{ id }" shorthand, pads with whatever whitespace separates it from that
// rune, not with the opening line's indent.
func leadingPad(original string) string {
	end := strings.IndexFunc(original, isWordRune)
	if end <= 0 {
		return ""
	}
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(original[:start])
		if !unicode.IsSpace(r) {
			break
		}
		start -= size
	}
	run := original[start:end]
	if nl := strings.LastIndexByte(run, '\n'); nl >= 0 {
		return run[nl+1:]
	}
	return run
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

func trailingWhitespace(original string) string {
	trimmed := strings.TrimRightFunc(original, unicode.IsSpace)
	return original[len(trimmed):]
}
