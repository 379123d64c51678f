package formatenforcer

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiChoicesParser_DateGrammar(t *testing.T) {
	levels := [][]string{
		{"Jan", "Feb", "Mar"},
		{" "},
		{"1", "2", "3", "..."},
		{", 2024"},
	}
	parser, err := NewMultiChoicesParser(levels)
	require.NoError(t, err)

	var cur CharacterLevelParser = parser
	for _, ch := range "Feb 2, 2024" {
		_, ok := cur.AllowedCharacters()[ch]
		require.Truef(t, ok, "char %q should be allowed", ch)
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())
}

func TestMultiChoicesParser_RejectsAlternativeNotInLevel(t *testing.T) {
	levels := [][]string{{"Mon", "Tue"}, {"day"}}
	parser, err := NewMultiChoicesParser(levels)
	require.NoError(t, err)

	_, ok := parser.AllowedCharacters()['W']
	assert.False(t, ok, "Wed is not a member of the first level")
}

func TestMultiChoicesParser_EmptyLevelRejected(t *testing.T) {
	_, err := NewMultiChoicesParser([][]string{{"a"}, {}})
	assert.ErrorIs(t, err, ErrEmptyMultiChoiceLevel)
}

// TestMultiChoicesParser_DateOfBirthGrammar drives spec §8's seed scenario 6:
// day/month/year alternation lists joined by literal "/" separators.
func TestMultiChoicesParser_DateOfBirthGrammar(t *testing.T) {
	days := make([]string, 0, 31)
	for d := 1; d <= 31; d++ {
		days = append(days, twoDigit(d))
	}
	months := make([]string, 0, 12)
	for m := 1; m <= 12; m++ {
		months = append(months, twoDigit(m))
	}
	years := make([]string, 0, 3000)
	for y := 0; y <= 2999; y++ {
		years = append(years, fourDigit(y))
	}
	levels := [][]string{days, {"/"}, months, {"/"}, years}

	accepted, err := NewMultiChoicesParser(levels)
	require.NoError(t, err)
	var cur CharacterLevelParser = accepted
	for _, ch := range "29/04/1986" {
		_, ok := cur.AllowedCharacters()[ch]
		require.Truef(t, ok, "char %q should be allowed", ch)
		next, err := cur.Advance(ch)
		require.NoError(t, err)
		cur = next
	}
	assert.True(t, cur.AcceptsEnd())

	rejected, err := NewMultiChoicesParser(levels)
	require.NoError(t, err)
	cur = rejected
	for _, ch := range "001/01/2020" {
		_, ok := cur.AllowedCharacters()[ch]
		if !ok {
			return // rejected partway through, as spec.md requires
		}
		next, err := cur.Advance(ch)
		if err != nil {
			return
		}
		cur = next
	}
	t.Fatal("\"001/01/2020\" should have been rejected before completion")
}

func twoDigit(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}

func fourDigit(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
