package formatenforcer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectParserState_RequiredAndAdditional(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {"a": {"type": "integer"}},
		"required": ["a"],
		"additionalProperties": {"type": "string"}
	}`))
	require.NoError(t, err)

	ctx := &parseContext{config: DefaultConfig()}
	obj, err := newObjectParserState(schema, ctx)
	require.NoError(t, err)

	final := driveParser(t, obj, `{"a": 1, "extra": "hi"}`)
	assert.True(t, final.AcceptsEnd())
}

func TestObjectParserState_ForceFieldOrder(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {"a": {"type": "integer"}, "b": {"type": "integer"}},
		"required": ["a", "b"]
	}`))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ForceJSONFieldOrder = true
	ctx := &parseContext{config: cfg}
	obj, err := newObjectParserState(schema, ctx)
	require.NoError(t, err)

	mid := driveParser(t, obj, `{`)
	_, ok := mid.AllowedCharacters()['"']
	assert.True(t, ok)

	afterQuote, err := mid.Advance('"')
	require.NoError(t, err)
	_, bAllowed := afterQuote.AllowedCharacters()['b']
	assert.False(t, bAllowed, "field order is forced, 'b' cannot start before required 'a'")
}

func TestObjectParserState_ClosedObjectDoesNotOfferDeadEndComma(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {"a": {"type": "integer"}},
		"required": ["a"]
	}`))
	require.NoError(t, err)

	ctx := &parseContext{config: DefaultConfig()}
	obj, err := newObjectParserState(schema, ctx)
	require.NoError(t, err)

	mid := driveParser(t, obj, `{"a": 1`)
	_, commaAllowed := mid.AllowedCharacters()[',']
	assert.False(t, commaAllowed, "no schema property remains, ',' has no valid completion")
	_, closeAllowed := mid.AllowedCharacters()['}']
	assert.True(t, closeAllowed)

	final, err := mid.Advance('}')
	require.NoError(t, err)
	assert.True(t, final.AcceptsEnd())
}

func TestObjectParserState_ShortcutKeyForwardsFromNestedStringValue(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type": "object",
		"properties": {"message": {"type": "string"}},
		"required": ["message"]
	}`))
	require.NoError(t, err)

	ctx := &parseContext{config: DefaultConfig()}
	obj, err := newObjectParserState(schema, ctx)
	require.NoError(t, err)

	mid := driveParser(t, obj, `{"message": "hi`)
	sk, ok := mid.(ShortcutKeyer)
	require.True(t, ok, "objectParserState must implement ShortcutKeyer")
	key, ok := sk.ShortcutKey()
	require.True(t, ok, "mid-string value should surface the nested string's freetext shortcut key")
	ft, ok := key.(freetextShortcut)
	require.True(t, ok)
	assert.Equal(t, 2, ft.curLen)
}

func TestObjectParserState_DictionaryWithoutProperties(t *testing.T) {
	schema, err := ParseSchema([]byte(`{"type": "object", "additionalProperties": {"type": "boolean"}}`))
	require.NoError(t, err)

	ctx := &parseContext{config: DefaultConfig()}
	obj, err := newObjectParserState(schema, ctx)
	require.NoError(t, err)

	final := driveParser(t, obj, `{"anything": true}`)
	assert.True(t, final.AcceptsEnd())
}
