package formatenforcer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringParserState_FreeformRoundTrip(t *testing.T) {
	s, err := newStringParserState(DefaultConfig(), nil, nil, nil, "")
	require.NoError(t, err)

	var cur CharacterLevelParser = s
	for _, ch := range `"hi"` {
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())
	text, closed := cur.(*stringParserState).CompletedString()
	assert.True(t, closed)
	assert.Equal(t, "hi", text)
}

func TestStringParserState_EnumRestrictsAlternatives(t *testing.T) {
	s, err := newStringParserState(DefaultConfig(), []string{"red", "green"}, nil, nil, "")
	require.NoError(t, err)

	cur, err := s.Advance('"')
	require.NoError(t, err)
	_, ok := cur.AllowedCharacters()['b']
	assert.False(t, ok, "only 'r' (red) or 'g' (green) may start the body")
}

func TestStringParserState_LengthBounds(t *testing.T) {
	min, max := 2, 3
	s, err := newStringParserState(DefaultConfig(), nil, &min, &max, "")
	require.NoError(t, err)

	cur, err := s.Advance('"')
	require.NoError(t, err)
	cur, err = cur.Advance('a')
	require.NoError(t, err)
	_, closeAllowedTooShort := cur.AllowedCharacters()['"']
	assert.False(t, closeAllowedTooShort)

	cur, err = cur.Advance('b')
	require.NoError(t, err)
	_, closeAllowedNow := cur.AllowedCharacters()['"']
	assert.True(t, closeAllowedNow)

	cur, err = cur.Advance('c')
	require.NoError(t, err)
	_, moreBodyAllowed := cur.AllowedCharacters()['d']
	assert.False(t, moreBodyAllowed, "string at maxLength must not accept another body character")
}

func TestStringParserState_PatternWithLengthBoundsRejected(t *testing.T) {
	min := 2
	_, err := newStringParserState(DefaultConfig(), nil, &min, nil, "^[a-z]+$")
	assert.ErrorIs(t, err, ErrPatternWithLengthBounds)
}

func TestStringParserState_EscapeSequence(t *testing.T) {
	s, err := newStringParserState(DefaultConfig(), nil, nil, nil, "")
	require.NoError(t, err)

	var cur CharacterLevelParser = s
	for _, ch := range `"a\nb"` {
		_, ok := cur.AllowedCharacters()[ch]
		require.Truef(t, ok, "char %q should be allowed", ch)
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())
}
