package source

import "strings"

// reasonTag opens an embedded GraphQL block in Reason and OCaml sources:
// [%graphql {| … |}]. The percent extension carries one quoted-string
// payload; the payload is the fragment.
const reasonTag = "[%graphql"

// templateTags are the JS/TS tagged-template identifiers recognized as
// GraphQL embeddings. The backtick must directly follow the tag.
var templateTags = []string{"graphql", "gql"}

// Extract scans a document and returns its GraphQL fragments in document
// order. Pure GraphQL documents yield exactly one KindFullDocument fragment
// spanning the whole text; host-language documents yield one KindTag
// fragment per recognized embedding; unknown languages yield none.
//
// Whitespace-only fragments are extracted like any other: deciding whether a
// fragment is worth reformatting is the caller's concern.
func Extract(languageID, text string) []GraphQLSource {
	switch normalizeLanguage(languageID) {
	case LangGraphQL:
		ix := NewLineIndex(text)
		return []GraphQLSource{{
			Kind:    KindFullDocument,
			Content: text,
			Start:   Position{},
			End:     ix.PositionFor(len(text)),
		}}
	case LangReason, LangOCaml:
		return extractQuotedExtensions(text)
	case LangJavaScript, LangTypeScript:
		return extractTaggedTemplates(text)
	default:
		return nil
	}
}

// extractQuotedExtensions finds every [%graphql {| … |}] block. Content is
// the text between {| and |}, exclusive; an unterminated block ends the
// scan, mirroring how the host language treats the rest of the file as part
// of the string.
func extractQuotedExtensions(text string) []GraphQLSource {
	ix := NewLineIndex(text)
	var sources []GraphQLSource
	for i := 0; i < len(text); {
		at := strings.Index(text[i:], reasonTag)
		if at < 0 {
			break
		}
		rest := i + at + len(reasonTag)
		// A longer extension name ([%graphql_ppx, …) is someone else's tag.
		if rest < len(text) && isWordByte(text[rest]) {
			i = rest
			continue
		}
		open := strings.Index(text[rest:], "{|")
		if open < 0 {
			break
		}
		if strings.TrimSpace(text[rest:rest+open]) != "" {
			// Something other than whitespace sits between the tag and the
			// quoted string; not an embedding we understand.
			i = rest
			continue
		}
		contentStart := rest + open + 2
		closing := strings.Index(text[contentStart:], "|}")
		if closing < 0 {
			break
		}
		contentEnd := contentStart + closing
		sources = append(sources, GraphQLSource{
			Kind:    KindTag,
			Content: text[contentStart:contentEnd],
			Start:   ix.PositionFor(contentStart),
			End:     ix.PositionFor(contentEnd),
		})
		i = contentEnd + 2
	}
	return sources
}

// extractTaggedTemplates finds gql`…` and graphql`…` template literals.
// Templates carrying a ${…} interpolation are not extracted: they are not a
// standalone GraphQL document until the host evaluates them.
func extractTaggedTemplates(text string) []GraphQLSource {
	ix := NewLineIndex(text)
	var sources []GraphQLSource
	for i := 0; i < len(text); {
		tagAt, tagLen := nextTemplateTag(text, i)
		if tagAt < 0 {
			break
		}
		contentStart := tagAt + tagLen + 1
		contentEnd := -1
		interpolated := false
		for k := contentStart; k < len(text); k++ {
			c := text[k]
			if c == '\\' {
				k++
				continue
			}
			if c == '$' && k+1 < len(text) && text[k+1] == '{' {
				interpolated = true
				continue
			}
			if c == '`' {
				contentEnd = k
				break
			}
		}
		if contentEnd < 0 {
			break
		}
		if !interpolated {
			sources = append(sources, GraphQLSource{
				Kind:    KindTag,
				Content: text[contentStart:contentEnd],
				Start:   ix.PositionFor(contentStart),
				End:     ix.PositionFor(contentEnd),
			})
		}
		i = contentEnd + 1
	}
	return sources
}

// nextTemplateTag locates the earliest recognized tag at or after from whose
// backtick directly follows it and whose preceding character does not make
// it part of a longer identifier or member expression.
func nextTemplateTag(text string, from int) (pos, tagLen int) {
	best := -1
	bestLen := 0
	for _, tag := range templateTags {
		search := from
		for {
			at := strings.Index(text[search:], tag+"`")
			if at < 0 {
				break
			}
			at += search
			if at > 0 {
				prev := text[at-1]
				if isWordByte(prev) || prev == '$' || prev == '.' {
					search = at + len(tag)
					continue
				}
			}
			if best < 0 || at < best {
				best, bestLen = at, len(tag)
			}
			break
		}
	}
	return best, bestLen
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
