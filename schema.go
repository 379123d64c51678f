package formatenforcer

import (
	"github.com/goccy/go-json"
)

// Schema is the structured view of a JSON Schema fragment this package
// understands — the subset named in spec §6. Unsupported keywords
// (format, not, if/then/else, multipleOf, patternProperties, ...) are
// simply never populated; schema.go never attempts to recognize them.
type Schema struct {
	Type       SchemaType           `json:"type,omitempty"`
	Properties map[string]*Schema   `json:"properties,omitempty"`
	Required   []string             `json:"required,omitempty"`

	// AdditionalProperties, when set on a schema that declares Properties,
	// admits extra keys whose values must match it; when nil there, only
	// the declared property names are accepted as keys. For a dictionary
	// schema (no Properties) it types every value, and nil means any JSON
	// value, so dispatch.go never raises a construction error for it.
	AdditionalProperties *Schema `json:"additionalProperties,omitempty"`

	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	MinLength *int    `json:"minLength,omitempty"`
	MaxLength *int    `json:"maxLength,omitempty"`
	Pattern   string  `json:"pattern,omitempty"`

	Enum  []any     `json:"enum,omitempty"`
	Const *ConstValue `json:"const,omitempty"`

	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	Ref string `json:"$ref,omitempty"`

	// Defs merges $defs (2020-12) and definitions (Draft-7); only the
	// root schema's Defs table is consulted during $ref resolution.
	Defs map[string]*Schema `json:"-"`

	root *Schema
}

// ConstValue distinguishes "const not present" from "const: null".
type ConstValue struct {
	Value any
	IsSet bool
}

func (c *ConstValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value)
}

func (c *ConstValue) UnmarshalJSON(data []byte) error {
	c.IsSet = true
	return json.Unmarshal(data, &c.Value)
}

// SchemaType is a single type name or a list of them ("type": "string" or
// "type": ["string", "null"]).
type SchemaType []string

func (t SchemaType) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *SchemaType) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = SchemaType{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = SchemaType(list)
	return nil
}

// rawSchema mirrors Schema's JSON-visible fields, plus both spellings of
// the definitions table, for UnmarshalJSON.
type rawSchema struct {
	Type                 SchemaType         `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Const                *ConstValue        `json:"const,omitempty"`
	AnyOf                []*Schema          `json:"anyOf,omitempty"`
	OneOf                []*Schema          `json:"oneOf,omitempty"`
	AllOf                []*Schema          `json:"allOf,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

// UnmarshalJSON parses a schema document, folding Draft-7's "definitions"
// into the same table as 2020-12's "$defs", and wiring the root pointer
// into every nested Schema so $ref can resolve against it later.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw rawSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Type = raw.Type
	s.Properties = raw.Properties
	s.Required = raw.Required
	s.AdditionalProperties = raw.AdditionalProperties
	s.Items = raw.Items
	s.MinItems = raw.MinItems
	s.MaxItems = raw.MaxItems
	s.MinLength = raw.MinLength
	s.MaxLength = raw.MaxLength
	s.Pattern = raw.Pattern
	s.Enum = raw.Enum
	s.Const = raw.Const
	s.AnyOf = raw.AnyOf
	s.OneOf = raw.OneOf
	s.AllOf = raw.AllOf
	s.Ref = raw.Ref

	s.Defs = make(map[string]*Schema, len(raw.Defs)+len(raw.Definitions))
	for k, v := range raw.Definitions {
		s.Defs[k] = v
	}
	for k, v := range raw.Defs {
		s.Defs[k] = v
	}

	s.setRoot(s)
	return nil
}

// setRoot stamps every schema reachable from s (excluding through $ref,
// which is resolved lazily) with a pointer back to the document root, so
// resolveRef can find the root's Defs table from any nested schema.
func (s *Schema) setRoot(root *Schema) {
	s.root = root
	for _, child := range s.Properties {
		if child != nil {
			child.setRoot(root)
		}
	}
	if s.AdditionalProperties != nil {
		s.AdditionalProperties.setRoot(root)
	}
	if s.Items != nil {
		s.Items.setRoot(root)
	}
	for _, child := range s.AnyOf {
		if child != nil {
			child.setRoot(root)
		}
	}
	for _, child := range s.OneOf {
		if child != nil {
			child.setRoot(root)
		}
	}
	for _, child := range s.AllOf {
		if child != nil {
			child.setRoot(root)
		}
	}
	for _, child := range s.Defs {
		if child != nil {
			child.setRoot(root)
		}
	}
}

// validateRefs eagerly resolves every $ref reachable from s, so a schema
// with a dangling reference fails at NewJSONSchemaParser construction time
// (spec §7's usage-error class) rather than surfacing as a silent dead end
// only once generation happens to reach that branch. Node identity guards
// against infinite recursion on a schema that legitimately refers back to
// itself (a recursive tree/list shape via $ref).
func validateRefs(s *Schema, seen map[*Schema]bool) error {
	if s == nil || seen[s] {
		return nil
	}
	seen[s] = true

	if s.Ref != "" {
		target, err := s.resolveRef(s.Ref)
		if err != nil {
			return err
		}
		return validateRefs(target, seen)
	}
	for _, p := range s.Properties {
		if err := validateRefs(p, seen); err != nil {
			return err
		}
	}
	if err := validateRefs(s.AdditionalProperties, seen); err != nil {
		return err
	}
	if err := validateRefs(s.Items, seen); err != nil {
		return err
	}
	for _, list := range [][]*Schema{s.AnyOf, s.OneOf, s.AllOf} {
		for _, child := range list {
			if err := validateRefs(child, seen); err != nil {
				return err
			}
		}
	}
	for _, d := range s.Defs {
		if err := validateRefs(d, seen); err != nil {
			return err
		}
	}
	return nil
}

// ParseSchema decodes a JSON Schema document into a Schema ready for
// NewJSONSchemaParser.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
