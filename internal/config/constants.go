// Package config holds the application-wide configuration, default settings,
// and file permission constants for graphql-lsp-router.
package config

import (
	"os"
	"time"
)

const (
	// DefaultDirPerm represents standard directory permissions (rwxr-xr-x).
	DefaultDirPerm os.FileMode = 0o755

	// DefaultFilePerm represents standard file permissions (rw-rw-rw-).
	DefaultFilePerm os.FileMode = 0o666

	// DefaultConfigDirName is the folder name inside ~/.config/.
	DefaultConfigDirName = "graphql-lsp-router"

	// DefaultLSPServerPath is the GraphQL language server executable,
	// resolved against the system PATH when not absolute.
	DefaultLSPServerPath = "graphql-lsp"

	// DefaultIntrospectionTimeout bounds a single introspection request
	// against a remote GraphQL endpoint.
	DefaultIntrospectionTimeout = 15 * time.Second

	// DefaultTemplateDepth is how many selection levels an operation
	// template descends into composite result types.
	DefaultTemplateDepth = 2

	// EnvPrefix namespaces every environment variable the router reads.
	EnvPrefix = "GRAPHQL_LSP_ROUTER_"
)

// DefaultLSPServerArgs is the argument vector for the stock GraphQL language
// server (graphql-language-service-cli speaks LSP on stdio in stream mode).
func DefaultLSPServerArgs() []string {
	return []string{"server", "--method", "stream"}
}

// SchemaFileCandidates lists the schema files probed in the workspace root,
// in priority order. Introspection JSON comes first because the original
// ecosystem tooling writes graphql_schema.json next to the project manifest.
func SchemaFileCandidates() []string {
	return []string{
		"graphql_schema.json",
		"schema.json",
		"schema.graphql",
		"schema.gql",
	}
}

// ConfigFileCandidates lists the graphql-config style files probed after the
// direct schema candidates. The extensionless variants may hold JSON, which
// the YAML parser accepts as-is.
func ConfigFileCandidates() []string {
	return []string{
		".graphqlrc",
		".graphqlrc.yml",
		".graphqlrc.yaml",
		".graphqlconfig",
		".graphqlconfig.yml",
	}
}
