package formatenforcer

// CharacterLevelParser is an immutable acceptor: advancing it never mutates
// the receiver, it only returns a successor value. Implementations must
// satisfy spec.md §3's invariants: Advance is defined for c iff c is a
// member of AllowedCharacters(); the allowed set never names a character
// outside the configured alphabet.
type CharacterLevelParser interface {
	// Advance returns the successor parser after consuming ch. Callers
	// must check that ch is in AllowedCharacters() first; advancing on a
	// character outside that set is undefined (implementations return an
	// error rather than panic, but the caller is expected never to do it
	// in the first place, per the immutability/closure invariants).
	Advance(ch rune) (CharacterLevelParser, error)

	// AllowedCharacters returns the set of characters that keep some
	// completion of the declared format reachable from this state.
	AllowedCharacters() map[rune]struct{}

	// AcceptsEnd reports whether the format may legally end here.
	AcceptsEnd() bool
}

// ShortcutKeyer is implemented by parsers that can signal the token
// enforcer to skip the generic trie walk in favor of a precomputed token
// set (spec §4.F). The zero value (ok == false) means no shortcut applies.
type ShortcutKeyer interface {
	ShortcutKey() (key any, ok bool)
}

// CacheKeyer is implemented by parsers that can declare that two states
// with an equal cache key yield the same allowed-token set (spec §4.F
// property 6, cache soundness).
type CacheKeyer interface {
	CacheKey() (key any, ok bool)
}

// StringParser matches a fixed literal, one character at a time. It is the
// simplest primitive in spec §4.B.
type StringParser struct {
	literal string
	pos     int
}

// NewStringParser returns a parser that accepts exactly the given literal.
func NewStringParser(literal string) *StringParser {
	return &StringParser{literal: literal}
}

func (p *StringParser) Advance(ch rune) (CharacterLevelParser, error) {
	runes := []rune(p.literal)
	if p.pos >= len(runes) || runes[p.pos] != ch {
		return nil, ErrParserDeadEnd
	}
	return &StringParser{literal: p.literal, pos: p.pos + 1}, nil
}

func (p *StringParser) AllowedCharacters() map[rune]struct{} {
	runes := []rune(p.literal)
	if p.pos >= len(runes) {
		return map[rune]struct{}{}
	}
	return map[rune]struct{}{runes[p.pos]: {}}
}

func (p *StringParser) AcceptsEnd() bool {
	return p.pos >= len([]rune(p.literal))
}

func (p *StringParser) CacheKey() (any, bool) {
	return [3]any{"string", p.literal, p.pos}, true
}

// ForceStopParser is a safe sink: it accepts only whitespace (or nothing,
// when allowWhitespace is false) and always accepts end. The token
// enforcer switches to it when the upstream sampler has already emitted
// an illegal character (spec §7). Arrays and objects do not use it: they
// close through their own stages.
type ForceStopParser struct {
	allowWhitespace bool
}

// NewForceStopParser returns a ForceStopParser. When allowWhitespace is
// true, runs of JSON whitespace are still accepted (but nothing else);
// when false, nothing further is accepted at all.
func NewForceStopParser(allowWhitespace bool) *ForceStopParser {
	return &ForceStopParser{allowWhitespace: allowWhitespace}
}

func (p *ForceStopParser) Advance(ch rune) (CharacterLevelParser, error) {
	if p.allowWhitespace && isJSONWhitespace(ch) {
		return p, nil
	}
	return nil, ErrParserDeadEnd
}

func (p *ForceStopParser) AllowedCharacters() map[rune]struct{} {
	if !p.allowWhitespace {
		return map[rune]struct{}{}
	}
	return map[rune]struct{}{' ': {}, '\t': {}, '\n': {}, '\r': {}}
}

func (p *ForceStopParser) AcceptsEnd() bool { return true }

func isJSONWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// CharSetParser accepts exactly one rune drawn from set, then is done. Used
// to build fixed-width primitives like \uXXXX hex digits inside string
// escape sequences (string.go).
type CharSetParser struct {
	set      map[rune]struct{}
	consumed bool
}

func NewCharSetParser(set map[rune]struct{}) *CharSetParser {
	return &CharSetParser{set: set}
}

func (p *CharSetParser) Advance(ch rune) (CharacterLevelParser, error) {
	if p.consumed {
		return nil, ErrParserDeadEnd
	}
	if _, ok := p.set[ch]; !ok {
		return nil, ErrParserDeadEnd
	}
	return &CharSetParser{set: p.set, consumed: true}, nil
}

func (p *CharSetParser) AllowedCharacters() map[rune]struct{} {
	if p.consumed {
		return map[rune]struct{}{}
	}
	return p.set
}

func (p *CharSetParser) AcceptsEnd() bool { return p.consumed }

// UnionParser holds several alternative parsers in parallel. Its allowed
// set is their union; advancing keeps only the children that accept the
// character, and collapses to that single child when only one remains
// (spec §4.B).
type UnionParser struct {
	children []CharacterLevelParser
}

// NewUnionParser builds a UnionParser over the given alternatives.
func NewUnionParser(children ...CharacterLevelParser) CharacterLevelParser {
	if len(children) == 1 {
		return children[0]
	}
	return &UnionParser{children: children}
}

func (p *UnionParser) Advance(ch rune) (CharacterLevelParser, error) {
	var next []CharacterLevelParser
	for _, c := range p.children {
		if _, ok := c.AllowedCharacters()[ch]; !ok {
			continue
		}
		advanced, err := c.Advance(ch)
		if err != nil {
			continue
		}
		next = append(next, advanced)
	}
	if len(next) == 0 {
		return nil, ErrParserDeadEnd
	}
	if len(next) == 1 {
		return next[0], nil
	}
	return &UnionParser{children: next}, nil
}

func (p *UnionParser) AllowedCharacters() map[rune]struct{} {
	allowed := map[rune]struct{}{}
	for _, c := range p.children {
		for r := range c.AllowedCharacters() {
			allowed[r] = struct{}{}
		}
	}
	return allowed
}

func (p *UnionParser) AcceptsEnd() bool {
	for _, c := range p.children {
		if c.AcceptsEnd() {
			return true
		}
	}
	return false
}

func (p *UnionParser) CacheKey() (any, bool) {
	keys := make([]any, 0, len(p.children))
	for _, c := range p.children {
		ck, ok := c.(CacheKeyer)
		if !ok {
			return nil, false
		}
		k, ok := ck.CacheKey()
		if !ok {
			return nil, false
		}
		keys = append(keys, k)
	}
	return [2]any{"union", keys}, true
}

// SequenceParser chains parsers head-to-tail. It delegates to the head
// child; when the head also accepts end, it forks into an alternative
// where the head is dropped and the next child receives the character,
// making a sequence whose head can end transparently "skippable"
// (spec §4.B).
type SequenceParser struct {
	children []CharacterLevelParser
}

// NewSequenceParser builds a SequenceParser over the given children in order.
func NewSequenceParser(children ...CharacterLevelParser) CharacterLevelParser {
	if len(children) == 1 {
		return children[0]
	}
	return &SequenceParser{children: children}
}

func (p *SequenceParser) Advance(ch rune) (CharacterLevelParser, error) {
	head := p.children[0]
	tail := p.children[1:]

	var alternatives []CharacterLevelParser

	if _, ok := head.AllowedCharacters()[ch]; ok {
		advancedHead, err := head.Advance(ch)
		if err == nil {
			merged := append([]CharacterLevelParser{advancedHead}, tail...)
			alternatives = append(alternatives, NewSequenceParser(merged...))
		}
	}

	if head.AcceptsEnd() && len(tail) > 0 {
		rest := NewSequenceParser(tail...)
		if _, ok := rest.AllowedCharacters()[ch]; ok {
			advancedRest, err := rest.Advance(ch)
			if err == nil {
				alternatives = append(alternatives, advancedRest)
			}
		}
	}

	if len(alternatives) == 0 {
		return nil, ErrParserDeadEnd
	}
	if len(alternatives) == 1 {
		return alternatives[0], nil
	}
	return &UnionParser{children: alternatives}, nil
}

func (p *SequenceParser) AllowedCharacters() map[rune]struct{} {
	allowed := map[rune]struct{}{}
	head := p.children[0]
	for r := range head.AllowedCharacters() {
		allowed[r] = struct{}{}
	}
	if head.AcceptsEnd() && len(p.children) > 1 {
		for r := range NewSequenceParser(p.children[1:]...).AllowedCharacters() {
			allowed[r] = struct{}{}
		}
	}
	return allowed
}

func (p *SequenceParser) AcceptsEnd() bool {
	for _, c := range p.children {
		if !c.AcceptsEnd() {
			return false
		}
	}
	return true
}
