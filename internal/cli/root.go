// Package cli wires the router's commands. The lsp command is what editors
// launch in place of the stock GraphQL language server; fmt and operation
// expose the same engine for offline use.
package cli

import (
	"github.com/spf13/cobra"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/logging"
)

// NewRootCmd returns the root command for graphql-lsp-router.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "graphql-lsp-router",
		Short:         "GraphQL LSP sidecar — formatting, operation templates and schema routing",
		Long:          "graphql-lsp-router sits between an editor and the GraphQL language server. It proxies LSP traffic, answers formatting for embedded GraphQL operations, inserts operation templates from the discovered schema and routes schema files to the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv(logging.New())
		},
	}

	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newFmtCmd())
	rootCmd.AddCommand(newOperationCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
