// Package introspection models the result of a GraphQL introspection query
// and converts it into SDL so the rest of the router can treat every schema
// source the same way.
package introspection

import "github.com/vektah/gqlparser/v2/ast"

// Result is the response envelope of a GraphQL introspection request.
type Result struct {
	Data   Data    `json:"data"`
	Errors []Error `json:"errors,omitempty"`
}

// Error represents a GraphQL error.
type Error struct {
	Message string `json:"message"`
}

// Data holds the __schema field.
type Data struct {
	Schema Schema `json:"__schema"`
}

// Schema is the GraphQL schema as returned by introspection.
type Schema struct {
	QueryType        *TypeName  `json:"queryType"`
	MutationType     *TypeName  `json:"mutationType"`
	SubscriptionType *TypeName  `json:"subscriptionType"`
	Types            []FullType `json:"types"`
}

// TypeName is a simple name reference.
type TypeName struct {
	Name string `json:"name"`
}

// FullType represents a complete GraphQL type definition.
type FullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Fields        []Field      `json:"fields,omitempty"`
	InputFields   []InputValue `json:"inputFields,omitempty"`
	Interfaces    []TypeRef    `json:"interfaces,omitempty"`
	EnumValues    []EnumValue  `json:"enumValues,omitempty"`
	PossibleTypes []TypeRef    `json:"possibleTypes,omitempty"`
}

// Field represents a field on an object or interface type.
type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	Args              []InputValue `json:"args,omitempty"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason string       `json:"deprecationReason,omitempty"`
}

// InputValue represents an argument or input field.
type InputValue struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue,omitempty"`
}

// TypeRef is a recursive type reference (handles NON_NULL, LIST wrappers).
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name,omitempty"`
	OfType *TypeRef `json:"ofType,omitempty"`
}

// EnumValue represents a value in an enum type.
type EnumValue struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	IsDeprecated      bool   `json:"isDeprecated"`
	DeprecationReason string `json:"deprecationReason,omitempty"`
}

// GetTypeName returns the full type name including wrappers (e.g., "[String!]!").
func (t TypeRef) GetTypeName() string {
	switch t.Kind {
	case "NON_NULL":
		if t.OfType != nil {
			return t.OfType.GetTypeName() + "!"
		}
	case "LIST":
		if t.OfType != nil {
			return "[" + t.OfType.GetTypeName() + "]"
		}
	default:
		if t.Name != nil {
			return *t.Name
		}
	}
	return "Unknown"
}

// ASTType converts the reference into the equivalent gqlparser type node.
func (t TypeRef) ASTType() *ast.Type {
	switch t.Kind {
	case "NON_NULL":
		if t.OfType != nil {
			inner := t.OfType.ASTType()
			inner.NonNull = true
			return inner
		}
	case "LIST":
		if t.OfType != nil {
			return ast.ListType(t.OfType.ASTType(), nil)
		}
	default:
		if t.Name != nil {
			return ast.NamedType(*t.Name, nil)
		}
	}
	return ast.NamedType("Unknown", nil)
}
