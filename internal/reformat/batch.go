package reformat

import (
	"strings"

	"go.trai.ch/graphql-lsp-router/internal/patch"
	"go.trai.ch/graphql-lsp-router/internal/source"
)

// Status says what happened to a single fragment during a format pass.
type Status int

const (
	// StatusFormatted means the fragment parsed and a replacement was built.
	StatusFormatted Status = iota
	// StatusSkippedEmpty means the fragment holds only whitespace.
	StatusSkippedEmpty
	// StatusSkippedInvalid means the fragment did not parse as GraphQL.
	StatusSkippedInvalid
)

func (s Status) String() string {
	switch s {
	case StatusFormatted:
		return "formatted"
	case StatusSkippedEmpty:
		return "skipped-empty"
	case StatusSkippedInvalid:
		return "skipped-invalid"
	default:
		return "unknown"
	}
}

// Result is the outcome for one extracted fragment.
type Result struct {
	Source  source.GraphQLSource
	Status  Status
	NewText string // replacement text, set when Status is StatusFormatted
	Err     error  // parse error, set when Status is StatusSkippedInvalid
}

// Batch holds the per-fragment outcomes of formatting one document.
type Batch struct {
	Results []Result
}

// Document extracts every GraphQL fragment from text and formats each one
// independently. A fragment that is empty or fails to parse never blocks
// the others; its outcome is reported on the Result instead.
func Document(languageID, text string) Batch {
	sources := source.Extract(languageID, text)
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		results = append(results, formatSource(src))
	}
	return Batch{Results: results}
}

func formatSource(src source.GraphQLSource) Result {
	if strings.TrimSpace(src.Content) == "" {
		return Result{Source: src, Status: StatusSkippedEmpty}
	}

	pretty, err := Prettify(src.Content)
	if err != nil {
		return Result{Source: src, Status: StatusSkippedInvalid, Err: err}
	}

	var newText string
	if src.Kind == source.KindFullDocument {
		newText = pretty + trailingWhitespace(src.Content)
	} else {
		newText = RestoreOperationPadding(src.Content, pretty)
	}
	return Result{Source: src, Status: StatusFormatted, NewText: newText}
}

// Edits returns the patch for every formatted fragment whose replacement
// differs from the original, ready for patch.Apply or an editor.
func (b Batch) Edits() []patch.Edit {
	var edits []patch.Edit
	for _, r := range b.Results {
		if r.Status != StatusFormatted || r.NewText == r.Source.Content {
			continue
		}
		edits = append(edits, patch.Edit{
			Start:   r.Source.Start,
			End:     r.Source.End,
			NewText: r.NewText,
		})
	}
	return edits
}

// Count reports how many results carry the given status.
func (b Batch) Count(status Status) int {
	n := 0
	for _, r := range b.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
