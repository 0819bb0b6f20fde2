package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/discovery"
	"go.trai.ch/graphql-lsp-router/internal/logging"
	"go.trai.ch/graphql-lsp-router/internal/lspproxy"
	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

func newLSPCmd() *cobra.Command {
	var (
		lspPath    string
		lspArgs    []string
		logFile    string
		schemaRoot string
	)

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the LSP proxy (stdio)",
		Long:  "Run the router as a language server on stdio. The real GraphQL language server is spawned as a subprocess and all traffic is proxied; logs go to a file because stdout carries the protocol.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log := logging.NewWithComponent("proxy")
			closer, err := logging.OpenLogFile(log, logFile)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()

			registry, err := schemaregistry.NewRegistry(log)
			if err != nil {
				return err
			}

			chain := discovery.DefaultChain(log, registry)
			proxy := lspproxy.NewProxy(log, lspPath, lspArgs, chain, registry)
			if schemaRoot != "" {
				proxy.PinWorkspace(schemaRoot)
			}

			return proxy.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&lspPath, "lsp-path", config.GetEnv("LSP_PATH", config.DefaultLSPServerPath),
		"path to the GraphQL language server executable")
	cmd.Flags().StringArrayVar(&lspArgs, "lsp-arg", config.DefaultLSPServerArgs(),
		"argument passed to the language server (repeatable)")
	cmd.Flags().StringVar(&logFile, "log-file", config.GetEnv("LOG_FILE", logging.DefaultLogPath()),
		"file to write logs to (stdout is the LSP wire)")
	cmd.Flags().StringVar(&schemaRoot, "schema-root", "",
		"pin schema discovery to this directory instead of the editor's workspace root")

	// Some LSP clients append --stdio unconditionally; accept and ignore it.
	cmd.Flags().Bool("stdio", true, "ignored, kept for LSP client compatibility")

	return cmd
}
