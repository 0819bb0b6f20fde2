// Package schemaregistry keeps a persistent disk cache of SDL rendered
// from remote introspection, so a GraphQL endpoint is only introspected
// when its schema is not already on disk.
package schemaregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"go.trai.ch/graphql-lsp-router/internal/config"
	"go.trai.ch/graphql-lsp-router/internal/introspection"
)

// Registry manages the on-disk SDL cache for introspected endpoints.
type Registry struct {
	baseDir string
	log     *logrus.Logger
}

// NewRegistry initializes the cache directory. GRAPHQL_LSP_ROUTER_CACHE_DIR
// overrides the default location under the user cache dir.
func NewRegistry(log *logrus.Logger) (*Registry, error) {
	baseDir := config.GetEnv("CACHE_DIR", "")
	if baseDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine user cache dir: %w", err)
		}
		baseDir = filepath.Join(userCache, config.DefaultConfigDirName, "schemas")
	}

	if err := os.MkdirAll(baseDir, config.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("could not create cache dir: %w", err)
	}

	return &Registry{baseDir: baseDir, log: log}, nil
}

// SDLForEndpoint returns the SDL for a GraphQL endpoint. The cached copy
// wins when present; otherwise the endpoint is introspected and the
// rendered SDL is written through to disk.
func (r *Registry) SDLForEndpoint(ctx context.Context, endpoint string) (string, error) {
	fullPath := r.pathFor(endpoint)

	if data, err := os.ReadFile(fullPath); err == nil {
		r.log.WithField("path", fullPath).Debug("Schema cache hit")
		return string(data), nil
	}

	r.log.WithField("endpoint", endpoint).Info("Schema cache miss, introspecting")

	schema, err := introspection.Fetch(ctx, endpoint, config.DefaultIntrospectionTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to introspect %s: %w", endpoint, err)
	}

	sdl := introspection.ToSDL(schema)
	if err := r.save(fullPath, sdl); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", fullPath, err)
	}

	return sdl, nil
}

// Invalidate drops the cached SDL for one endpoint.
func (r *Registry) Invalidate(endpoint string) error {
	err := os.Remove(r.pathFor(endpoint))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear empties the whole cache. The next lookup re-introspects.
func (r *Registry) Clear() error {
	if err := os.RemoveAll(r.baseDir); err != nil {
		return err
	}
	return os.MkdirAll(r.baseDir, config.DefaultDirPerm)
}

// Dir returns the cache directory.
func (r *Registry) Dir() string {
	return r.baseDir
}

func (r *Registry) pathFor(endpoint string) string {
	return filepath.Join(r.baseDir, cacheName(endpoint))
}

func (r *Registry) save(fullPath, sdl string) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), config.DefaultDirPerm); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(sdl), config.DefaultFilePerm)
}

// cacheName flattens an endpoint URL into a single safe file name.
func cacheName(endpoint string) string {
	name := endpoint
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return name + ".graphql"
}
