package formatenforcer

import "errors"

// === Reference resolution errors ===
var (
	// ErrReferenceResolution is returned when a $ref points at a definition
	// that does not exist under the root schema's definitions/$defs table.
	ErrReferenceResolution = errors.New("$ref resolution failed: definition not found")

	// ErrUnsupportedReferenceForm is returned for $ref forms this package
	// does not resolve (anything other than #/definitions/NAME or
	// #/$defs/NAME).
	ErrUnsupportedReferenceForm = errors.New("unsupported $ref form")
)

// === Schema construction errors ===
var (
	// ErrEnumMixedTypes is returned when a schema's enum array mixes value
	// types this package cannot express as a single character-level parser.
	ErrEnumMixedTypes = errors.New("enum mixes unsupported value types")

	// ErrArrayWithoutItemType is returned when an array schema omits items.
	ErrArrayWithoutItemType = errors.New("array schema has no items")

	// ErrPatternWithLengthBounds is returned when a string schema combines
	// pattern with minLength/maxLength; this package cannot prove length
	// bounds hold across an arbitrary regular expression, so it rejects the
	// combination rather than silently picking one constraint over the
	// other.
	ErrPatternWithLengthBounds = errors.New("string schema combines pattern with minLength/maxLength")

	// ErrInvalidSchemaType is returned when a schema's type keyword names
	// something outside the subset this package supports.
	ErrInvalidSchemaType = errors.New("unsupported schema type")

	// ErrEmptyMultiChoiceLevel is returned when a MultiChoicesParser level
	// has no alternatives to offer at all.
	ErrEmptyMultiChoiceLevel = errors.New("multi-choice level has no alternatives")
)

// === Regex compilation errors ===
var (
	// ErrRegexSyntax is returned when a pattern cannot be compiled into an
	// NFA by this package's regex engine.
	ErrRegexSyntax = errors.New("regex syntax error")

	// ErrRegexUnsupportedConstruct is returned for constructs explicitly out
	// of scope: backreferences and lookaround assertions.
	ErrRegexUnsupportedConstruct = errors.New("regex construct not supported (backreferences and lookaround are out of scope)")
)

// === Token enforcer errors ===
var (
	// ErrParserDeadEnd is returned by a parser's Advance when the character
	// cannot be accepted from the current state, i.e. the path dead-ends
	// there. The token enforcer does not return it: it logs such cases and
	// falls back to a ForceStopParser or to end-of-sequence only.
	ErrParserDeadEnd = errors.New("parser reached a dead end: no allowed tokens")
)
