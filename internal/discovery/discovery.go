// Package discovery locates the GraphQL schema that applies to a workspace.
// Strategies are probed in priority order and every located schema is
// normalized to SDL, no matter whether it started as an introspection dump,
// an SDL file or a remote endpoint.
package discovery

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"go.trai.ch/graphql-lsp-router/internal/schemaregistry"
)

// Discovery is a located schema in SDL form plus where it came from.
type Discovery struct {
	SDL      string
	Origin   string // file path or endpoint URL
	Strategy string
}

// Load parses the discovered SDL into a queryable schema.
func (d *Discovery) Load() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: d.Origin, Input: d.SDL})
	if err != nil {
		return nil, fmt.Errorf("failed to load schema from %s: %w", d.Origin, err)
	}
	return schema, nil
}

// Strategy defines the contract for all schema discovery strategies.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, dir string) (*Discovery, bool, error)
}

// Chain manages a sequence of Strategies.
type Chain struct {
	strategies []Strategy
	log        *logrus.Logger
}

// NewChain creates a new Chain of Responsibility.
func NewChain(log *logrus.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		log:        log,
	}
}

// Run iterates through the strategies until one locates a schema for dir.
// A failing strategy never blocks the ones behind it.
func (c *Chain) Run(ctx context.Context, dir string) (*Discovery, bool) {
	for _, s := range c.strategies {
		d, found, err := s.Discover(ctx, dir)
		if err != nil {
			c.log.WithError(err).WithField("strategy", s.Name()).Warn("Schema discovery strategy failed")
			continue
		}
		if found {
			d.Strategy = s.Name()
			c.log.WithFields(logrus.Fields{
				"strategy": s.Name(),
				"origin":   d.Origin,
			}).Debug("Schema located")
			return d, true
		}
	}

	// No strategy located a schema for this workspace.
	return nil, false
}

// DefaultChain assembles the standard strategy order: direct schema files in
// the workspace root first, then graphql-config files, which may point at a
// local file or a remote endpoint.
func DefaultChain(log *logrus.Logger, registry *schemaregistry.Registry) *Chain {
	return NewChain(log,
		&SchemaFiles{},
		&ConfigFiles{Registry: registry},
	)
}
