package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/introspection"
)

// SchemaFiles implements the discovery.Strategy interface for schema files
// sitting directly in the workspace root, introspection JSON and SDL alike.
type SchemaFiles struct{}

var _ Strategy = (*SchemaFiles)(nil)

// Name returns the unique string identifier for the schema file strategy.
func (s *SchemaFiles) Name() string {
	return "schema-file"
}

// Discover probes the well-known schema file names in priority order.
func (s *SchemaFiles) Discover(_ context.Context, dir string) (*Discovery, bool, error) {
	for _, name := range config.SchemaFileCandidates() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		sdl, err := loadSchemaFile(path)
		if err != nil {
			return nil, false, err
		}
		return &Discovery{SDL: sdl, Origin: path}, true, nil
	}

	return nil, false, nil
}

// loadSchemaFile reads a schema file and normalizes it to SDL. JSON files
// are treated as introspection dumps, everything else as SDL already.
func loadSchemaFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		schema, err := introspection.Parse(data)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return introspection.ToSDL(schema), nil
	}

	return string(data), nil
}
