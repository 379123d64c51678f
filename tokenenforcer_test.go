package formatenforcer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleRuneTokenizer is a minimal Tokenizer fake: every vocabulary token
// decodes to exactly one rune, so GetAllowedTokens can be checked against
// AllowedCharacters() directly without needing multi-character decode
// reconstruction.
type singleRuneTokenizer struct {
	idByRune map[rune]int
	runeByID map[int]rune
	eos      int
}

func newSingleRuneTokenizer(alphabet map[rune]struct{}) *singleRuneTokenizer {
	tok := &singleRuneTokenizer{idByRune: map[rune]int{}, runeByID: map[int]rune{}}
	id := 0
	for r := range alphabet {
		tok.idByRune[r] = id
		tok.runeByID[id] = r
		id++
	}
	tok.eos = id
	return tok
}

func (t *singleRuneTokenizer) Tokens() []Token {
	out := make([]Token, 0, len(t.idByRune))
	for r, id := range t.idByRune {
		out = append(out, Token{ID: id, Decoded: string(r), IsNewWord: true})
	}
	return out
}

func (t *singleRuneTokenizer) Decode(ids []int) string {
	runes := make([]rune, 0, len(ids))
	for _, id := range ids {
		if r, ok := t.runeByID[id]; ok {
			runes = append(runes, r)
		}
	}
	return string(runes)
}

func (t *singleRuneTokenizer) EOSTokenIDs() []int { return []int{t.eos} }

// fixedVocabTokenizer is a Tokenizer fake whose vocabulary is given
// verbatim, for exercising multi-character tokens (e.g. a token whose text
// begins with a closing '"' and continues past it) that singleRuneTokenizer
// cannot represent.
type fixedVocabTokenizer struct {
	tokens []Token
	eos    int
}

func (t *fixedVocabTokenizer) Tokens() []Token { return t.tokens }

func (t *fixedVocabTokenizer) Decode(ids []int) string {
	byID := map[int]string{}
	for _, tok := range t.tokens {
		byID[tok.ID] = tok.Decoded
	}
	var s string
	for _, id := range ids {
		s += byID[id]
	}
	return s
}

func (t *fixedVocabTokenizer) EOSTokenIDs() []int { return []int{t.eos} }

// TestTokenEnforcer_ClosingQuoteNotReopenedAsBodyText drives the freetext
// shortcut branch of walkFromRoot through a vocabulary token whose text
// starts with the closing '"' and continues past it. A bare top-level
// string schema accepts nothing after that quote closes, so this token
// must not be offered, even though its second character ('a') would be a
// legal string-body character if the quote were (wrongly) treated as still
// open.
func TestTokenEnforcer_ClosingQuoteNotReopenedAsBodyText(t *testing.T) {
	schema, err := ParseSchema([]byte(`{"type": "string"}`))
	require.NoError(t, err)

	cfg := DefaultConfig()
	parser, err := NewJSONSchemaParser(schema, cfg)
	require.NoError(t, err)

	const (
		quoteID  = 0
		quoteAID = 1
		eosID    = 2
	)
	tok := &fixedVocabTokenizer{
		tokens: []Token{
			{ID: quoteID, Decoded: `"`, IsNewWord: true},
			{ID: quoteAID, Decoded: `"a`, IsNewWord: true},
		},
		eos: eosID,
	}
	enforcer := NewTokenEnforcer(tok, parser)

	afterOpen := enforcer.GetAllowedTokens([]int{quoteID})
	assert.Contains(t, afterOpen, quoteID, "closing quote must still be offered to end the string")
	assert.NotContains(t, afterOpen, quoteAID, "a token that reopens closed-string text as body text must not be offered")
}

func TestTokenEnforcer_EnumStringSchema(t *testing.T) {
	schema, err := ParseSchema([]byte(`{"enum": ["cat", "dog"]}`))
	require.NoError(t, err)

	cfg := DefaultConfig()
	parser, err := NewJSONSchemaParser(schema, cfg)
	require.NoError(t, err)

	tok := newSingleRuneTokenizer(cfg.Alphabet)
	enforcer := NewTokenEnforcer(tok, parser)

	allowed := enforcer.GetAllowedTokens(nil)
	assert.ElementsMatch(t, []int{tok.idByRune['"']}, allowed)

	afterQuote := enforcer.GetAllowedTokens([]int{tok.idByRune['"']})
	assert.Contains(t, afterQuote, tok.idByRune['c'])
	assert.Contains(t, afterQuote, tok.idByRune['d'])
	assert.NotContains(t, afterQuote, tok.idByRune['x'])

	full := []int{
		tok.idByRune['"'], tok.idByRune['c'], tok.idByRune['a'], tok.idByRune['t'], tok.idByRune['"'],
	}
	finalAllowed := enforcer.GetAllowedTokens(full)
	assert.Contains(t, finalAllowed, tok.eos)
}
