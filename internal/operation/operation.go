// Package operation builds executable operation templates from a schema.
// A template selects the requested root field, declares a variable for each
// required argument and descends a few levels into the result type so the
// generated text is immediately runnable.
package operation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"go.trai.ch/graphql-lsp-router/internal/config"
)

// Descriptor names one root field of the schema.
type Descriptor struct {
	Operation string `json:"operation"` // query, mutation or subscription
	Name      string `json:"name"`
	Type      string `json:"type"` // rendered return type
}

// List enumerates every root field of the schema in declaration order.
func List(schema *ast.Schema) []Descriptor {
	var out []Descriptor
	appendRoot := func(opType string, def *ast.Definition) {
		if def == nil {
			return
		}
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			out = append(out, Descriptor{Operation: opType, Name: f.Name, Type: f.Type.String()})
		}
	}
	appendRoot("query", schema.Query)
	appendRoot("mutation", schema.Mutation)
	appendRoot("subscription", schema.Subscription)
	return out
}

// Option adjusts how a template is generated.
type Option func(*options)

type options struct {
	depth int
}

// WithDepth sets how many selection levels the template descends into
// composite result types.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// Generate renders an operation template for one root field. The result
// ends with a single newline so it can be appended to a document as-is.
func Generate(schema *ast.Schema, opType, fieldName string, opts ...Option) (string, error) {
	o := options{depth: config.DefaultTemplateDepth}
	for _, opt := range opts {
		opt(&o)
	}

	root, err := rootType(schema, opType)
	if err != nil {
		return "", err
	}

	field := root.Fields.ForName(fieldName)
	if field == nil {
		return "", fmt.Errorf("field %s not found on type %s", fieldName, root.Name)
	}

	op := &ast.OperationDefinition{
		Operation: ast.Operation(opType),
		Name:      Capitalize(fieldName),
	}

	sel := &ast.Field{Name: field.Name}
	for _, arg := range field.Arguments {
		if !arg.Type.NonNull || arg.DefaultValue != nil {
			continue
		}
		op.VariableDefinitions = append(op.VariableDefinitions, &ast.VariableDefinition{
			Variable: arg.Name,
			Type:     arg.Type,
		})
		sel.Arguments = append(sel.Arguments, &ast.Argument{
			Name:  arg.Name,
			Value: &ast.Value{Kind: ast.Variable, Raw: arg.Name},
		})
	}

	sel.SelectionSet = selectionFor(schema, field.Type, o.depth, map[string]bool{})
	op.SelectionSet = ast.SelectionSet{sel}

	doc := &ast.QueryDocument{Operations: ast.OperationList{op}}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func rootType(schema *ast.Schema, opType string) (*ast.Definition, error) {
	switch opType {
	case "query":
		if schema.Query != nil {
			return schema.Query, nil
		}
	case "mutation":
		if schema.Mutation != nil {
			return schema.Mutation, nil
		}
	case "subscription":
		if schema.Subscription != nil {
			return schema.Subscription, nil
		}
	default:
		return nil, fmt.Errorf("unknown operation type: %s", opType)
	}
	return nil, fmt.Errorf("schema has no %s type", opType)
}

// selectionFor picks the fields a template selects on a result type.
// Scalars and enums need no selection, unions collapse to __typename, and
// composite types contribute their leaf fields until depth runs out. Types
// already on the path never recurse, so self-referential schemas terminate.
func selectionFor(schema *ast.Schema, typ *ast.Type, depth int, visited map[string]bool) ast.SelectionSet {
	def := schema.Types[typ.Name()]
	if def == nil {
		return nil
	}

	switch def.Kind {
	case ast.Scalar, ast.Enum:
		return nil
	case ast.Union:
		return ast.SelectionSet{typenameField()}
	}

	if depth <= 0 || visited[def.Name] {
		return ast.SelectionSet{typenameField()}
	}
	visited[def.Name] = true
	defer delete(visited, def.Name)

	var sel ast.SelectionSet
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") || hasRequiredArgs(f) {
			continue
		}
		fieldDef := schema.Types[f.Type.Name()]
		if fieldDef == nil {
			continue
		}

		switch fieldDef.Kind {
		case ast.Scalar, ast.Enum:
			sel = append(sel, &ast.Field{Name: f.Name})
		default:
			child := selectionFor(schema, f.Type, depth-1, visited)
			if len(child) == 0 {
				continue
			}
			sel = append(sel, &ast.Field{Name: f.Name, SelectionSet: child})
		}
	}

	if len(sel) == 0 {
		return ast.SelectionSet{typenameField()}
	}
	return sel
}

// hasRequiredArgs reports whether a field demands an argument a template
// cannot invent a value for.
func hasRequiredArgs(f *ast.FieldDefinition) bool {
	for _, arg := range f.Arguments {
		if arg.Type.NonNull && arg.DefaultValue == nil {
			return true
		}
	}
	return false
}

func typenameField() *ast.Field {
	return &ast.Field{Name: "__typename"}
}
