package formatenforcer

import "fmt"

// parseContext is threaded explicitly through every newSchemaParserState
// call instead of letting sub-parsers hold a pointer back to whatever
// constructed them (see DESIGN.md's Open Question decisions): it carries
// only read-only, already-resolved configuration, never a reference to an
// in-progress parent parser.
type parseContext struct {
	config *CharacterLevelParserConfig
}

// newSchemaParserState builds the character-level parser for one schema
// node, dispatching on its keywords in the order spec §4.E's JsonSchemaParser
// evaluates them. schema == nil means "no schema constraint": any JSON
// value.
func newSchemaParserState(schema *Schema, ctx *parseContext) (CharacterLevelParser, error) {
	if schema == nil {
		return newAnyValueParser(ctx)
	}

	if schema.Ref != "" {
		target, err := schema.resolveRef(schema.Ref)
		if err != nil {
			return nil, err
		}
		return newSchemaParserState(target, ctx)
	}

	if len(schema.AllOf) > 0 {
		merged, err := mergeAllOf(schema.AllOf)
		if err != nil {
			return nil, err
		}
		return newSchemaParserState(merged, ctx)
	}

	if schema.Const != nil && schema.Const.IsSet {
		return literalValueParser(schema.Const.Value)
	}

	if len(schema.Enum) > 0 {
		return enumParser(schema.Enum)
	}

	if len(schema.AnyOf) > 0 {
		return unionOfSchemas(schema.AnyOf, ctx)
	}
	if len(schema.OneOf) > 0 {
		return unionOfSchemas(schema.OneOf, ctx)
	}

	if len(schema.Type) > 1 {
		alts := make([]*Schema, len(schema.Type))
		for i, t := range schema.Type {
			clone := *schema
			clone.Type = SchemaType{t}
			clone.AnyOf, clone.OneOf, clone.AllOf = nil, nil, nil
			alts[i] = &clone
		}
		return unionOfSchemas(alts, ctx)
	}

	typeName := ""
	if len(schema.Type) == 1 {
		typeName = schema.Type[0]
	}

	switch typeName {
	case "object":
		return newObjectParserState(schema, ctx)
	case "array":
		return newArrayParserState(schema, ctx)
	case "string":
		return newStringParserState(ctx.config, nil, schema.MinLength, schema.MaxLength, schema.Pattern)
	case "integer":
		return newNumberParserState(false), nil
	case "number":
		return newNumberParserState(true), nil
	case "boolean":
		return NewUnionParser(NewStringParser("true"), NewStringParser("false")), nil
	case "null":
		return NewStringParser("null"), nil
	case "":
		switch {
		case schema.Properties != nil || schema.AdditionalProperties != nil:
			return newObjectParserState(schema, ctx)
		case schema.Items != nil:
			return newArrayParserState(schema, ctx)
		default:
			return newAnyValueParser(ctx)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSchemaType, typeName)
	}
}

func unionOfSchemas(schemas []*Schema, ctx *parseContext) (CharacterLevelParser, error) {
	children := make([]CharacterLevelParser, 0, len(schemas))
	for _, s := range schemas {
		child, err := newSchemaParserState(s, ctx)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return NewUnionParser(children...), nil
}

// mergeAllOf shallow-merges a list of object schemas into one: properties
// and required lists are unioned, and the first explicit
// additionalProperties found wins. Non-object members (anyOf/oneOf/enum
// branches combined via allOf) are not supported beyond this shallow
// merge, matching spec §4.E's stated scope.
func mergeAllOf(schemas []*Schema) (*Schema, error) {
	merged := &Schema{Properties: map[string]*Schema{}}
	for _, s := range schemas {
		for name, prop := range s.Properties {
			merged.Properties[name] = prop
		}
		merged.Required = append(merged.Required, s.Required...)
		if merged.AdditionalProperties == nil {
			merged.AdditionalProperties = s.AdditionalProperties
		}
		if len(s.Type) > 0 {
			merged.Type = s.Type
		}
	}
	if len(merged.Type) == 0 {
		merged.Type = SchemaType{"object"}
	}
	return merged, nil
}

// newAnyValueParser builds the unconstrained-JSON-value parser used for an
// empty schema ({}) or a missing value schema: any object, array, string,
// number, boolean or null.
func newAnyValueParser(ctx *parseContext) (CharacterLevelParser, error) {
	str, err := newStringParserState(ctx.config, nil, nil, nil, "")
	if err != nil {
		return nil, err
	}
	obj, err := newObjectParserState(&Schema{}, ctx)
	if err != nil {
		return nil, err
	}
	arr, err := newArrayParserState(&Schema{Items: &Schema{}}, ctx)
	if err != nil {
		return nil, err
	}
	return NewUnionParser(
		obj,
		arr,
		str,
		newNumberParserState(true),
		NewStringParser("true"),
		NewStringParser("false"),
		NewStringParser("null"),
	), nil
}

func literalValueParser(value any) (CharacterLevelParser, error) {
	switch v := value.(type) {
	case nil:
		return NewStringParser("null"), nil
	case bool:
		if v {
			return NewStringParser("true"), nil
		}
		return NewStringParser("false"), nil
	case string:
		return quotedLiteralParser(v), nil
	default:
		return NewStringParser(formatJSONNumber(value)), nil
	}
}

func quotedLiteralParser(s string) CharacterLevelParser {
	return NewStringParser(`"` + s + `"`)
}

// enumParser builds a union of literal parsers, one per enum member. A
// member that is itself a composite JSON value (array or object) cannot be
// expressed as a single literal acceptor and is rejected with
// ErrEnumMixedTypes.
func enumParser(values []any) (CharacterLevelParser, error) {
	children := make([]CharacterLevelParser, 0, len(values))
	for _, v := range values {
		switch v.(type) {
		case []any, map[string]any:
			return nil, ErrEnumMixedTypes
		}
		child, err := literalValueParser(v)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return NewUnionParser(children...), nil
}

func formatJSONNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return trimFloat(n)
	case int:
		return fmt.Sprintf("%d", n)
	case int64:
		return fmt.Sprintf("%d", n)
	default:
		return fmt.Sprint(v)
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
