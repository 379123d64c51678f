package formatenforcer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexParser_PhoneNumber(t *testing.T) {
	cfg := DefaultConfig()
	parser, err := newRegexParser(`\d{3}-\d{3}-\d{4}`, cfg)
	require.NoError(t, err)

	var cur CharacterLevelParser = parser
	for _, ch := range "555-123-4567" {
		_, ok := cur.AllowedCharacters()[ch]
		require.Truef(t, ok, "char %q should be allowed", ch)
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())

	parser2, err := newRegexParser(`\d{3}-\d{3}-\d{4}`, cfg)
	require.NoError(t, err)
	_, ok := parser2.AllowedCharacters()['a']
	assert.False(t, ok, "a letter must not be allowed as the first character of a digit class")
}

func TestRegexParser_Alternation(t *testing.T) {
	cfg := DefaultConfig()
	parser, err := newRegexParser(`cat|dog`, cfg)
	require.NoError(t, err)

	var cur CharacterLevelParser = parser
	for _, ch := range "dog" {
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())
}

func TestRegexParser_CacheKeyStable(t *testing.T) {
	cfg := DefaultConfig()
	p1, err := newRegexParser(`a+b`, cfg)
	require.NoError(t, err)
	p2, err := newRegexParser(`a+b`, cfg)
	require.NoError(t, err)

	n1, err := p1.Advance('a')
	require.NoError(t, err)
	n2, err := p2.Advance('a')
	require.NoError(t, err)

	k1, ok1 := n1.(*regexParser).CacheKey()
	k2, ok2 := n2.(*regexParser).CacheKey()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, k1, k2)
}

func TestRegexParser_RejectsBackreference(t *testing.T) {
	cfg := DefaultConfig()
	_, err := newRegexParser(`(a)\1`, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexUnsupportedConstruct)
}

func TestRegexParser_RejectsLookaround(t *testing.T) {
	cfg := DefaultConfig()
	_, err := newRegexParser(`foo(?=bar)`, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexUnsupportedConstruct)

	_, err = newRegexParser(`(?<!baz)foo`, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegexUnsupportedConstruct)
}
