// Package source discovers GraphQL fragments inside text documents. It is
// pure: extraction is a function of a language id and the full document text,
// with no filesystem or network access.
package source

import "fmt"

// Kind discriminates how a fragment is embedded in its host document.
type Kind int

const (
	// KindTag marks a fragment delimited by a recognized embedding tag,
	// such as Reason's [%graphql {| … |}] or a gql`…` tagged template.
	KindTag Kind = iota

	// KindFullDocument marks a document whose entire content is GraphQL
	// (.graphql / .gql files).
	KindFullDocument
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "tag"
	case KindFullDocument:
		return "full-document"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Position is a zero-based (line, character) location in a document.
// Character counts runes within the line; callers that speak a different
// encoding (LSP mandates UTF-16 code units) re-encode against the document
// text. Byte offsets are never exposed across package boundaries.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p is strictly before q in document order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// GraphQLSource is a located fragment of GraphQL text found inside a
// document. Content carries the fragment exactly as written, delimiters
// excluded, including any internal leading and trailing whitespace. A
// GraphQLSource is built fresh from the live text on every extraction and
// never cached.
type GraphQLSource struct {
	Kind    Kind
	Content string
	Start   Position
	End     Position
}
