package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/discovery"
	"go.trai.ch/graphql-lsp-router/internal/logging"
	"go.trai.ch/graphql-lsp-router/internal/operation"
	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

func newOperationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operation",
		Short: "Inspect the discovered schema and generate operation templates",
	}

	cmd.PersistentFlags().String("schema-root", ".", "directory to run schema discovery in")

	cmd.AddCommand(newOperationListCmd())
	cmd.AddCommand(newOperationNewCmd())

	return cmd
}

func newOperationListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the root fields operations can be generated for",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, origin, err := resolveSchema(cmd)
			if err != nil {
				return err
			}
			color.New(color.Faint).Fprintf(cmd.ErrOrStderr(), "schema: %s\n", origin)

			kind := color.New(color.FgCyan)
			for _, d := range operation.List(schema) {
				kind.Fprintf(cmd.OutOrStdout(), "%-12s", d.Operation)
				fmt.Fprintf(cmd.OutOrStdout(), " %s: %s\n", d.Name, d.Type)
			}
			return nil
		},
	}
}

func newOperationNewCmd() *cobra.Command {
	var (
		opType string
		field  string
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print an operation template for a root field",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, origin, err := resolveSchema(cmd)
			if err != nil {
				return err
			}
			color.New(color.Faint).Fprintf(cmd.ErrOrStderr(), "schema: %s\n", origin)

			text, err := operation.Generate(schema, opType, field, operation.WithDepth(depth))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&opType, "type", "query", "operation type: query, mutation or subscription")
	cmd.Flags().StringVar(&field, "field", "", "root field to generate the operation for")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultTemplateDepth,
		"selection levels to descend into composite result types")
	_ = cmd.MarkFlagRequired("field")

	return cmd
}

// resolveSchema runs the discovery chain in the configured root and loads
// the first schema it finds.
func resolveSchema(cmd *cobra.Command) (*ast.Schema, string, error) {
	root, err := cmd.Flags().GetString("schema-root")
	if err != nil {
		return nil, "", err
	}

	log := logging.NewWithComponent("discovery")
	registry, err := schemaregistry.NewRegistry(log)
	if err != nil {
		return nil, "", err
	}

	d, found := discovery.DefaultChain(log, registry).Run(cmd.Context(), root)
	if !found {
		return nil, "", fmt.Errorf("no GraphQL schema found in %s", root)
	}

	schema, err := d.Load()
	if err != nil {
		return nil, "", err
	}
	return schema, d.Origin, nil
}
