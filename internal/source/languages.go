package source

import (
	"path/filepath"
	"strings"
)

// Language ids the extractor understands. They follow the LSP languageId
// convention so values arriving in textDocument/didOpen can be passed
// through unchanged.
const (
	LangGraphQL    = "graphql"
	LangReason     = "reason"
	LangOCaml      = "ocaml"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
)

// LanguageForPath infers the language id from a file extension. Unknown
// extensions yield "".
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".gql":
		return LangGraphQL
	case ".re", ".rei":
		return LangReason
	case ".ml", ".mli":
		return LangOCaml
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LangTypeScript
	default:
		return ""
	}
}

// normalizeLanguage folds LSP dialect ids (e.g. typescriptreact) onto the
// extractor's canonical ids.
func normalizeLanguage(languageID string) string {
	switch languageID {
	case "javascriptreact":
		return LangJavaScript
	case "typescriptreact":
		return LangTypeScript
	default:
		return languageID
	}
}
