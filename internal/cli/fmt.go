package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.trai.ch/graphql-lsp-router/internal/patch"
	"go.trai.ch/graphql-lsp-router/internal/reformat"
	"go.trai.ch/graphql-lsp-router/internal/source"
)

func newFmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Reformat GraphQL operations in files",
		Long:  "Reformat the GraphQL operations in the given files: whole .graphql/.gql documents and operations embedded in Reason, OCaml, JavaScript or TypeScript sources. By default the result is printed to stdout; -w rewrites the files in place.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				if err := fmtFile(cmd, path, write, list); err != nil {
					failed = true
					color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				}
			}
			if failed {
				return fmt.Errorf("some files could not be formatted")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "only list files whose formatting would change")

	return cmd
}

func fmtFile(cmd *cobra.Command, path string, write, list bool) error {
	languageID := source.LanguageForPath(path)
	if languageID == "" {
		return fmt.Errorf("unrecognized file type")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)

	formatted, batch, err := formatText(languageID, text)
	if err != nil {
		return err
	}

	if n := batch.Count(reformat.StatusSkippedEmpty); n > 0 {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "%s: skipped %d empty fragment(s)\n", path, n)
	}
	if n := batch.Count(reformat.StatusSkippedInvalid); n > 0 {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "%s: skipped %d malformed fragment(s)\n", path, n)
	}

	changed := formatted != text

	switch {
	case list:
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
	case write:
		if !changed {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "%s: formatted\n", path)
	default:
		fmt.Fprint(cmd.OutOrStdout(), formatted)
	}

	return nil
}

// formatText runs one document through the extract-prettify-patch pipeline.
// Empty and malformed fragments survive unchanged; their outcomes are on
// the batch.
func formatText(languageID, text string) (string, reformat.Batch, error) {
	batch := reformat.Document(languageID, text)
	formatted, err := patch.Apply(text, batch.Edits())
	if err != nil {
		return "", batch, err
	}
	return formatted, batch, nil
}
