package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

// graphqlConfig is a minimal view of a graphql-config file. Only the schema
// pointer matters for routing; the schema key takes a single string or a
// list, and schemaPath covers the legacy v2 layout.
type graphqlConfig struct {
	Schema     any    `yaml:"schema"`
	SchemaPath string `yaml:"schemaPath"`
}

// ConfigFiles implements the discovery.Strategy interface for graphql-config
// style project files. Remote endpoints are resolved through the registry so
// repeated lookups stay off the network.
type ConfigFiles struct {
	Registry *schemaregistry.Registry
}

var _ Strategy = (*ConfigFiles)(nil)

// Name returns the unique string identifier for the config file strategy.
func (s *ConfigFiles) Name() string {
	return "graphql-config"
}

// Discover reads the first config file that exists and resolves its schema
// pointer, either a file path relative to the workspace or an endpoint URL.
func (s *ConfigFiles) Discover(ctx context.Context, dir string) (*Discovery, bool, error) {
	for _, name := range config.ConfigFileCandidates() {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		target, err := schemaTarget(content)
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if target == "" {
			continue
		}

		if isRemote(target) {
			if s.Registry == nil {
				return nil, false, fmt.Errorf("%s points at %s but remote schemas are disabled", path, target)
			}
			sdl, err := s.Registry.SDLForEndpoint(ctx, target)
			if err != nil {
				return nil, false, err
			}
			return &Discovery{SDL: sdl, Origin: target}, true, nil
		}

		schemaPath := target
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(dir, schemaPath)
		}
		sdl, err := loadSchemaFile(schemaPath)
		if err != nil {
			return nil, false, err
		}
		return &Discovery{SDL: sdl, Origin: schemaPath}, true, nil
	}

	return nil, false, nil
}

func schemaTarget(content []byte) (string, error) {
	var cfg graphqlConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return "", err
	}

	switch v := cfg.Schema.(type) {
	case string:
		return v, nil
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s, nil
			}
		}
	}

	return cfg.SchemaPath, nil
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
