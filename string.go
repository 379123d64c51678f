package formatenforcer

import "strings"

var hexDigitSet = func() map[rune]struct{} {
	set := map[rune]struct{}{}
	for _, r := range "0123456789abcdefABCDEF" {
		set[r] = struct{}{}
	}
	return set
}()

func newEscapeParser() CharacterLevelParser {
	simple := make([]CharacterLevelParser, 0, 8)
	for _, c := range []string{`"`, `\`, "/", "b", "f", "n", "r", "t"} {
		simple = append(simple, NewStringParser(c))
	}
	unicodeEscape := NewSequenceParser(
		NewStringParser("u"),
		NewCharSetParser(hexDigitSet),
		NewCharSetParser(hexDigitSet),
		NewCharSetParser(hexDigitSet),
		NewCharSetParser(hexDigitSet),
	)
	simple = append(simple, unicodeEscape)
	return NewUnionParser(simple...)
}

// stringParserState is the acceptor for a JSON string literal (spec §4.E's
// StringParsingState): an opening quote, a body of plain characters,
// backslash escapes, and a closing quote. The body may additionally be
// constrained to a fixed set of literal values (enum members, or the
// legal remaining keys of an object), to a length range, or to a regular
// expression pattern — never more than one of length-range and pattern,
// see ErrPatternWithLengthBounds.
type stringParserState struct {
	cfg *CharacterLevelParserConfig

	seenOpen  bool
	seenClose bool
	parsed    []rune

	// allowed, when non-nil, restricts the string to exactly one of these
	// literal values (their raw, unescaped text — quotes are not included).
	allowed []string

	minLength *int
	maxLength *int
	pattern   *regexParser

	escape CharacterLevelParser // non-nil while mid backslash-escape
}

func newStringParserState(cfg *CharacterLevelParserConfig, allowed []string, minLength, maxLength *int, pattern string) (*stringParserState, error) {
	if pattern != "" && (minLength != nil || maxLength != nil) {
		return nil, ErrPatternWithLengthBounds
	}
	s := &stringParserState{cfg: cfg, allowed: allowed, minLength: minLength, maxLength: maxLength}
	if pattern != "" {
		rp, err := newRegexParser(pattern, cfg)
		if err != nil {
			return nil, err
		}
		s.pattern = rp
	}
	return s, nil
}

func (p *stringParserState) clone() *stringParserState {
	ns := *p
	ns.parsed = append([]rune{}, p.parsed...)
	return &ns
}

func (p *stringParserState) CompletedString() (string, bool) {
	return string(p.parsed), p.seenClose
}

func (p *stringParserState) canCloseNow() bool {
	current := string(p.parsed)
	if p.allowed != nil {
		for _, candidate := range p.allowed {
			if candidate == current {
				return true
			}
		}
		return false
	}
	if p.minLength != nil && len(p.parsed) < *p.minLength {
		return false
	}
	if p.pattern != nil && !p.pattern.AcceptsEnd() {
		return false
	}
	return true
}

func (p *stringParserState) Advance(ch rune) (CharacterLevelParser, error) {
	if !p.seenOpen {
		if ch != '"' {
			return nil, ErrParserDeadEnd
		}
		ns := p.clone()
		ns.seenOpen = true
		return ns, nil
	}
	if p.seenClose {
		return nil, ErrParserDeadEnd
	}

	if p.escape != nil {
		if _, ok := p.escape.AllowedCharacters()[ch]; !ok {
			return nil, ErrParserDeadEnd
		}
		advanced, err := p.escape.Advance(ch)
		if err != nil {
			return nil, err
		}
		ns := p.clone()
		ns.parsed = append(ns.parsed, ch)
		if advanced.AcceptsEnd() {
			ns.escape = nil
		} else {
			ns.escape = advanced
		}
		return ns, nil
	}

	if ch == '"' && p.canCloseNow() {
		ns := p.clone()
		ns.seenClose = true
		return ns, nil
	}
	if ch == '\\' && p.allowed == nil {
		ns := p.clone()
		ns.parsed = append(ns.parsed, ch)
		ns.escape = newEscapeParser()
		return ns, nil
	}

	if _, ok := p.AllowedCharacters()[ch]; !ok {
		return nil, ErrParserDeadEnd
	}
	if p.pattern != nil {
		advanced, err := p.pattern.Advance(ch)
		if err != nil {
			return nil, err
		}
		ns := p.clone()
		ns.parsed = append(ns.parsed, ch)
		ns.pattern = advanced.(*regexParser)
		return ns, nil
	}
	ns := p.clone()
	ns.parsed = append(ns.parsed, ch)
	return ns, nil
}

func (p *stringParserState) AllowedCharacters() map[rune]struct{} {
	if !p.seenOpen {
		return map[rune]struct{}{'"': {}}
	}
	if p.seenClose {
		return map[rune]struct{}{}
	}
	if p.escape != nil {
		return p.escape.AllowedCharacters()
	}

	allowed := map[rune]struct{}{}
	current := string(p.parsed)

	if p.allowed != nil {
		for _, candidate := range p.allowed {
			if !strings.HasPrefix(candidate, current) || len(candidate) <= len(current) {
				continue
			}
			remainder := []rune(candidate[len(current):])
			allowed[remainder[0]] = struct{}{}
		}
	} else {
		atMax := p.maxLength != nil && len(p.parsed) >= *p.maxLength
		if !atMax {
			if p.pattern != nil {
				for r := range p.pattern.AllowedCharacters() {
					allowed[r] = struct{}{}
				}
			} else {
				for r := range p.cfg.Alphabet {
					if r != '"' && r != '\\' {
						allowed[r] = struct{}{}
					}
				}
				allowed['\\'] = struct{}{}
			}
		}
	}

	if p.canCloseNow() {
		allowed['"'] = struct{}{}
	}
	return allowed
}

func (p *stringParserState) AcceptsEnd() bool { return p.seenClose }

// ShortcutKey lets the token enforcer skip the per-character trie walk for
// unconstrained free text (no enum restriction, no pattern) and instead
// consult the precomputed JSONFreetextTokenCache (spec §4.A, §4.F).
func (p *stringParserState) ShortcutKey() (any, bool) {
	if p.seenClose || !p.seenOpen || p.allowed != nil || p.pattern != nil {
		return nil, false
	}
	min := 0
	if p.minLength != nil {
		min = *p.minLength
	}
	max := -1
	if p.maxLength != nil {
		max = *p.maxLength
	}
	return freetextShortcut{curLen: len(p.parsed), minLen: min, maxLen: max}, true
}

type freetextShortcut struct {
	curLen, minLen, maxLen int
}
