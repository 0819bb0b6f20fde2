package introspection

import (
	"bytes"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

var builtinScalars = map[string]bool{
	"ID":      true,
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
}

// ToSDL renders the introspected schema as SDL. Types come out sorted by
// name so repeated introspections of the same endpoint yield identical
// files. Reserved __ types and built-in scalars are dropped, and a schema
// block is only written when a root type carries a non-default name.
func ToSDL(s *Schema) string {
	doc := &ast.SchemaDocument{}

	if def := schemaDefinition(s); def != nil {
		doc.Schema = append(doc.Schema, def)
	}

	types := make([]FullType, 0, len(s.Types))
	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") || builtinScalars[t.Name] {
			continue
		}
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	for i := range types {
		if def := definition(&types[i]); def != nil {
			doc.Definitions = append(doc.Definitions, def)
		}
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchemaDocument(doc)
	return buf.String()
}

func schemaDefinition(s *Schema) *ast.SchemaDefinition {
	deviates := (s.QueryType != nil && s.QueryType.Name != "Query") ||
		(s.MutationType != nil && s.MutationType.Name != "Mutation") ||
		(s.SubscriptionType != nil && s.SubscriptionType.Name != "Subscription")
	if !deviates {
		return nil
	}

	def := &ast.SchemaDefinition{}
	if s.QueryType != nil {
		def.OperationTypes = append(def.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Query,
			Type:      s.QueryType.Name,
		})
	}
	if s.MutationType != nil {
		def.OperationTypes = append(def.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Mutation,
			Type:      s.MutationType.Name,
		})
	}
	if s.SubscriptionType != nil {
		def.OperationTypes = append(def.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Subscription,
			Type:      s.SubscriptionType.Name,
		})
	}
	return def
}

func definition(t *FullType) *ast.Definition {
	def := &ast.Definition{Name: t.Name}

	switch t.Kind {
	case "OBJECT":
		def.Kind = ast.Object
		def.Interfaces = interfaceNames(t.Interfaces)
		def.Fields = fieldList(t.Fields)
	case "INTERFACE":
		def.Kind = ast.Interface
		def.Interfaces = interfaceNames(t.Interfaces)
		def.Fields = fieldList(t.Fields)
	case "UNION":
		def.Kind = ast.Union
		for _, ref := range t.PossibleTypes {
			def.Types = append(def.Types, ref.GetTypeName())
		}
	case "ENUM":
		def.Kind = ast.Enum
		for _, ev := range t.EnumValues {
			evd := &ast.EnumValueDefinition{Name: ev.Name}
			if ev.IsDeprecated {
				evd.Directives = append(evd.Directives, deprecatedDirective(ev.DeprecationReason))
			}
			def.EnumValues = append(def.EnumValues, evd)
		}
	case "INPUT_OBJECT":
		def.Kind = ast.InputObject
		def.Fields = inputFieldList(t.InputFields)
	case "SCALAR":
		def.Kind = ast.Scalar
	default:
		return nil
	}

	return def
}

func interfaceNames(refs []TypeRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.GetTypeName())
	}
	return names
}

func fieldList(fields []Field) ast.FieldList {
	list := make(ast.FieldList, 0, len(fields))
	for _, f := range fields {
		fd := &ast.FieldDefinition{
			Name: f.Name,
			Type: f.Type.ASTType(),
		}
		for _, arg := range f.Args {
			fd.Arguments = append(fd.Arguments, &ast.ArgumentDefinition{
				Name: arg.Name,
				Type: arg.Type.ASTType(),
			})
		}
		if f.IsDeprecated {
			fd.Directives = append(fd.Directives, deprecatedDirective(f.DeprecationReason))
		}
		list = append(list, fd)
	}
	return list
}

func inputFieldList(values []InputValue) ast.FieldList {
	list := make(ast.FieldList, 0, len(values))
	for _, v := range values {
		list = append(list, &ast.FieldDefinition{
			Name: v.Name,
			Type: v.Type.ASTType(),
		})
	}
	return list
}

func deprecatedDirective(reason string) *ast.Directive {
	d := &ast.Directive{Name: "deprecated"}
	if reason != "" {
		d.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: reason},
		}}
	}
	return d
}
