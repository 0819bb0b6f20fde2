// Package main is the entry point for graphql-lsp-router.
package main

import (
	"fmt"
	"os"

	"go.trai.ch/graphql-lsp-router/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
