package formatenforcer

import "strconv"

type enforcerState struct {
	parser            CharacterLevelParser
	currentWordTokens []int
}

// TokenEnforcer is spec §4.F's TokenEnforcer: given the token ids
// generated so far, it returns every token id legal to generate next,
// combining a CharacterLevelParser's character-level constraint with the
// tokenizer's prefix tree so the check runs once per generation step
// rather than once per vocabulary entry per step.
type TokenEnforcer struct {
	tok  Tokenizer
	tree *TokenizerPrefixTree
	eos  []int
	root CharacterLevelParser

	stateForPrefix map[string]enforcerState
	allowedCache   map[any][]int
}

// NewTokenEnforcer builds a TokenEnforcer for the given tokenizer and root
// parser (typically the result of NewJSONSchemaParser, NewRegexParser, or
// NewMultiChoicesParser).
func NewTokenEnforcer(tok Tokenizer, root CharacterLevelParser) *TokenEnforcer {
	return &TokenEnforcer{
		tok:            tok,
		tree:           NewTokenizerPrefixTree(tok),
		eos:            tok.EOSTokenIDs(),
		root:           root,
		stateForPrefix: map[string]enforcerState{},
		allowedCache:   map[any][]int{},
	}
}

func prefixKey(ids []int) string {
	b := make([]byte, 0, len(ids)*4)
	for _, id := range ids {
		b = strconv.AppendInt(b, int64(id), 10)
		b = append(b, ',')
	}
	return string(b)
}

// GetAllowedTokens returns every token id legal to generate immediately
// after the given sequence of previously generated token ids.
func (e *TokenEnforcer) GetAllowedTokens(prefix []int) []int {
	if len(prefix) == 0 {
		root := enforcerState{parser: e.root}
		e.stateForPrefix[prefixKey(nil)] = root
		return e.computeAllowed(prefix, root)
	}

	parentKey := prefixKey(prefix[:len(prefix)-1])
	parent, ok := e.stateForPrefix[parentKey]
	if !ok {
		parent = enforcerState{parser: e.root}
		for i := 0; i < len(prefix)-1; i++ {
			parent = e.advance(parent, prefix[:i+1])
			e.stateForPrefix[prefixKey(prefix[:i+1])] = parent
		}
	}

	next := e.advance(parent, prefix)
	e.stateForPrefix[prefixKey(prefix)] = next
	return e.computeAllowed(prefix, next)
}

// advance folds one more generated token into parent's state, following
// spec §4.F's new-word-token reconstruction protocol: a token flagged as
// starting a new word is trusted to decode to its own text standalone;
// any other token's contributed text is recovered by diffing the decode
// of the word-so-far against the decode of the word-so-far plus this
// token.
func (e *TokenEnforcer) advance(parent enforcerState, prefixThroughNew []int) enforcerState {
	newID := prefixThroughNew[len(prefixThroughNew)-1]

	var contributed string
	var word []int
	if _, isNewWord := e.tree.newWordTokens[newID]; isNewWord {
		contributed = e.tree.decodedByID[newID]
		word = []int{newID}
	} else {
		before := e.tok.Decode(parent.currentWordTokens)
		after := e.tok.Decode(append(append([]int{}, parent.currentWordTokens...), newID))
		if len(after) >= len(before) && after[:len(before)] == before {
			contributed = after[len(before):]
		} else {
			contributed = after
		}
		word = append(append([]int{}, parent.currentWordTokens...), newID)
	}

	parser := parent.parser
	for _, ch := range contributed {
		parser = e.safeAdvance(parser, ch)
	}
	return enforcerState{parser: parser, currentWordTokens: word}
}

// safeAdvance implements spec §7's second logged-not-raised case: a
// character the sampler actually emitted, but which the parser no longer
// allows (the sampler ignored the mask, or a lower-probability token won
// out). This is not treated as a bug: it is logged at debug level and the
// parser is replaced with a ForceStopParser so generation degrades
// gracefully instead of panicking.
func (e *TokenEnforcer) safeAdvance(p CharacterLevelParser, ch rune) CharacterLevelParser {
	if _, ok := p.AllowedCharacters()[ch]; ok {
		if next, err := p.Advance(ch); err == nil {
			return next
		}
	}
	logger.Debug("sampler emitted a character outside the allowed set; forcing stop", "char", string(ch))
	return NewForceStopParser(false)
}

func (e *TokenEnforcer) computeAllowed(prefix []int, state enforcerState) []int {
	allowed := e.collectAllowedTokens(state.parser)
	if state.parser.AcceptsEnd() {
		allowed = append(allowed, e.eos...)
	}
	if len(allowed) == 0 {
		logger.Error("parser reached a dead end with no allowed tokens", "prefixLength", len(prefix), "text", e.tok.Decode(prefix))
		return append([]int{}, e.eos...)
	}
	return allowed
}

func (e *TokenEnforcer) collectAllowedTokens(parser CharacterLevelParser) []int {
	if ck, ok := parser.(CacheKeyer); ok {
		if key, ok := ck.CacheKey(); ok {
			if cached, found := e.allowedCache[key]; found {
				return append([]int{}, cached...)
			}
			result := e.walkFromRoot(parser)
			e.allowedCache[key] = result
			return append([]int{}, result...)
		}
	}
	return e.walkFromRoot(parser)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}

func (e *TokenEnforcer) walkFromRoot(parser CharacterLevelParser) []int {
	if sk, ok := parser.(ShortcutKeyer); ok {
		if key, ok := sk.ShortcutKey(); ok {
			if ft, ok := key.(freetextShortcut); ok {
				minRemaining := clampInt(ft.minLen-ft.curLen, 0, e.tree.maxTokenLen)
				maxLen := ft.maxLen
				if maxLen >= 0 {
					maxLen = clampInt(maxLen-ft.curLen, 0, e.tree.maxTokenLen)
				}
				out := append([]int{}, e.tree.freetext.Allowed(minRemaining, maxLen)...)
				if child, ok := e.tree.root.children['"']; ok {
					if closed, err := parser.Advance('"'); err == nil {
						out = append(out, e.walkNode(child, closed)...)
					}
				}
				return out
			}
		}
	}
	return e.walkNode(e.tree.root, parser)
}

func (e *TokenEnforcer) walkNode(node *prefixTreeNode, parser CharacterLevelParser) []int {
	out := append([]int{}, node.tokens...)
	allowed := parser.AllowedCharacters()
	for ch, child := range node.children {
		if _, ok := allowed[ch]; !ok {
			continue
		}
		next, err := parser.Advance(ch)
		if err != nil {
			continue
		}
		out = append(out, e.walkNode(child, next)...)
	}
	return out
}
