package formatenforcer

// JSONSchemaParser is the top-level entry point for spec §4.E: it wraps
// the schema-dispatched parser tree with the one piece of state that is
// genuinely document-global rather than owned by a single sub-parser —
// the running count of consecutive whitespace characters, capped at
// MaxConsecutiveWhitespace. Enforcing the cap here, as a post-filter on
// whatever the inner parser already allows, means no inner parser needs
// to know the cap exists.
type JSONSchemaParser struct {
	inner CharacterLevelParser
	cfg   *CharacterLevelParserConfig
	wsRun int
}

// NewJSONSchemaParser builds a parser that accepts exactly the JSON
// documents matching schema (or, for schema == nil, any JSON document),
// under cfg. Pass DefaultConfig() for the documented defaults.
func NewJSONSchemaParser(schema *Schema, cfg *CharacterLevelParserConfig) (*JSONSchemaParser, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := validateRefs(schema, map[*Schema]bool{}); err != nil {
		return nil, err
	}
	ctx := &parseContext{config: cfg}
	inner, err := newSchemaParserState(schema, ctx)
	if err != nil {
		return nil, err
	}
	return &JSONSchemaParser{inner: inner, cfg: cfg}, nil
}

func (p *JSONSchemaParser) Advance(ch rune) (CharacterLevelParser, error) {
	if _, ok := p.AllowedCharacters()[ch]; !ok {
		return nil, ErrParserDeadEnd
	}
	next, err := p.inner.Advance(ch)
	if err != nil {
		return nil, err
	}
	run := p.wsRun
	if isJSONWhitespace(ch) {
		run++
	} else {
		run = 0
	}
	return &JSONSchemaParser{inner: next, cfg: p.cfg, wsRun: run}, nil
}

func (p *JSONSchemaParser) AllowedCharacters() map[rune]struct{} {
	allowed := p.inner.AllowedCharacters()
	if p.wsRun >= p.cfg.MaxConsecutiveWhitespace {
		filtered := make(map[rune]struct{}, len(allowed))
		for r := range allowed {
			if !isJSONWhitespace(r) {
				filtered[r] = struct{}{}
			}
		}
		return filtered
	}
	return allowed
}

func (p *JSONSchemaParser) AcceptsEnd() bool { return p.inner.AcceptsEnd() }

func (p *JSONSchemaParser) ShortcutKey() (any, bool) {
	if sk, ok := p.inner.(ShortcutKeyer); ok {
		return sk.ShortcutKey()
	}
	return nil, false
}

func (p *JSONSchemaParser) CacheKey() (any, bool) {
	ck, ok := p.inner.(CacheKeyer)
	if !ok {
		return nil, false
	}
	key, ok := ck.CacheKey()
	if !ok {
		return nil, false
	}
	return [2]any{"json", key}, true
}
