package formatenforcer

// objectStage enumerates the JSON-object state machine spec §4.E names:
// StartObject → ParsingKeyOrEnd → ParsingKeyValueSeparator → ParsingValue
// → ParsingSeparatorOrEnd → EndObject.
type objectStage int

const (
	stageStart objectStage = iota
	stageKeyOrEnd
	stageKeyOnly // after a comma: a key must follow, '}' is not legal here
	stageParsingKey
	stageAfterKey
	stageBeforeValue
	stageParsingValue
	stageAfterValue
	stageDone
)

// objectParserState is the character-level acceptor for a JSON object
// matching one schema's properties/required/additionalProperties. It owns
// its key and value sub-parsers as plain fields rather than pushing them
// onto any shared stack, so it never needs a back-pointer to an owning
// parser (see DESIGN.md's Open Question decisions).
type objectParserState struct {
	ctx *parseContext

	properties           map[string]*Schema
	required             []string
	additionalProperties *Schema
	isDictionary         bool

	stage        objectStage
	existingKeys map[string]bool
	currentKey   string
	keyParser    *stringParserState
	valueParser  CharacterLevelParser
}

func newObjectParserState(schema *Schema, ctx *parseContext) (*objectParserState, error) {
	return &objectParserState{
		ctx:                  ctx,
		properties:           schema.Properties,
		required:             schema.Required,
		additionalProperties: schema.AdditionalProperties,
		isDictionary:         schema.Properties == nil,
		stage:                stageStart,
		existingKeys:         map[string]bool{},
	}, nil
}

func (p *objectParserState) clone() *objectParserState {
	ns := *p
	ns.existingKeys = make(map[string]bool, len(p.existingKeys))
	for k, v := range p.existingKeys {
		ns.existingKeys[k] = v
	}
	return &ns
}

func (p *objectParserState) requiredSatisfied() bool {
	return p.requiredSatisfiedExcept("")
}

// requiredSatisfiedExcept reports whether every required key other than
// except is already present. It lets AllowedCharacters() compute, while
// still inside the value for currentKey, whether '}' will become legal the
// instant that value closes.
func (p *objectParserState) requiredSatisfiedExcept(except string) bool {
	for _, r := range p.required {
		if r == except {
			continue
		}
		if !p.existingKeys[r] {
			return false
		}
	}
	return true
}

// remainingKeys returns the property names still available to be used as
// the next object key, honoring ForceJSONFieldOrder when configured.
func (p *objectParserState) remainingKeys() []string {
	if p.ctx.config.ForceJSONFieldOrder {
		for _, r := range p.required {
			if !p.existingKeys[r] {
				return []string{r}
			}
		}
	}
	var out []string
	for name := range p.properties {
		if !p.existingKeys[name] {
			out = append(out, name)
		}
	}
	return out
}

func (p *objectParserState) canStartKey() bool {
	return p.canStartKeyExcept("")
}

// canStartKeyExcept reports whether a key other than except can still be
// added, treating except as already used. It lets the parser decide, while
// still inside except's value, whether a ',' would have anywhere to go.
func (p *objectParserState) canStartKeyExcept(except string) bool {
	if p.isDictionary || p.additionalProperties != nil {
		return true
	}
	for name := range p.properties {
		if name == except {
			continue
		}
		if !p.existingKeys[name] {
			return true
		}
	}
	return false
}

func (p *objectParserState) newKeyParser() *stringParserState {
	if p.isDictionary {
		s, _ := newStringParserState(p.ctx.config, nil, nil, nil, "")
		return s
	}
	keys := p.remainingKeys()
	if p.additionalProperties != nil && !(p.ctx.config.ForceJSONFieldOrder && !p.requiredSatisfied()) {
		// extra keys are admitted, so any key text is legal here
		keys = nil
	}
	s, _ := newStringParserState(p.ctx.config, keys, nil, nil, "")
	return s
}

func (p *objectParserState) schemaForKey(key string) *Schema {
	if p.properties != nil {
		if s, ok := p.properties[key]; ok {
			return s
		}
	}
	return p.additionalProperties
}

func (p *objectParserState) Advance(ch rune) (CharacterLevelParser, error) {
	switch p.stage {
	case stageStart:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == '{' {
			ns := p.clone()
			ns.stage = stageKeyOrEnd
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	case stageKeyOrEnd, stageKeyOnly:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == '}' && p.stage == stageKeyOrEnd && p.requiredSatisfied() {
			ns := p.clone()
			ns.stage = stageDone
			return ns, nil
		}
		if ch == '"' && p.canStartKey() {
			ns := p.clone()
			kp := ns.newKeyParser()
			advanced, err := kp.Advance('"')
			if err != nil {
				return nil, err
			}
			ns.keyParser = advanced
			ns.stage = stageParsingKey
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	case stageParsingKey:
		if _, ok := p.keyParser.AllowedCharacters()[ch]; !ok {
			return nil, ErrParserDeadEnd
		}
		advanced, err := p.keyParser.Advance(ch)
		if err != nil {
			return nil, err
		}
		sp := advanced.(*stringParserState)
		ns := p.clone()
		if sp.AcceptsEnd() && ch == '"' {
			key, _ := sp.CompletedString()
			ns.currentKey = key
			ns.keyParser = nil
			ns.stage = stageAfterKey
		} else {
			ns.keyParser = sp
		}
		return ns, nil

	case stageAfterKey:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == ':' {
			ns := p.clone()
			ns.stage = stageBeforeValue
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	case stageBeforeValue:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		vp, err := newSchemaParserState(p.schemaForKey(p.currentKey), p.ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := vp.AllowedCharacters()[ch]; !ok {
			return nil, ErrParserDeadEnd
		}
		advanced, err := vp.Advance(ch)
		if err != nil {
			return nil, err
		}
		ns := p.clone()
		ns.valueParser = advanced
		ns.stage = stageParsingValue
		return ns, nil

	case stageParsingValue:
		if _, ok := p.valueParser.AllowedCharacters()[ch]; ok {
			advanced, err := p.valueParser.Advance(ch)
			if err != nil {
				return nil, err
			}
			ns := p.clone()
			ns.valueParser = advanced
			return ns, nil
		}
		if !p.valueParser.AcceptsEnd() {
			return nil, ErrParserDeadEnd
		}
		ns := p.clone()
		ns.existingKeys[p.currentKey] = true
		ns.currentKey = ""
		ns.valueParser = nil
		ns.stage = stageAfterValue
		return ns.Advance(ch)

	case stageAfterValue:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == ',' && p.canStartKey() {
			ns := p.clone()
			ns.stage = stageKeyOnly
			return ns, nil
		}
		if ch == '}' && p.requiredSatisfied() {
			ns := p.clone()
			ns.stage = stageDone
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	default:
		return nil, ErrParserDeadEnd
	}
}

func (p *objectParserState) AllowedCharacters() map[rune]struct{} {
	allowed := map[rune]struct{}{}
	add := func(rs ...rune) {
		for _, r := range rs {
			allowed[r] = struct{}{}
		}
	}
	ws := func() { add(' ', '\t', '\n', '\r') }

	switch p.stage {
	case stageStart:
		ws()
		add('{')
	case stageKeyOrEnd:
		ws()
		if p.requiredSatisfied() {
			add('}')
		}
		if p.canStartKey() {
			add('"')
		}
	case stageKeyOnly:
		ws()
		if p.canStartKey() {
			add('"')
		}
	case stageParsingKey:
		for r := range p.keyParser.AllowedCharacters() {
			allowed[r] = struct{}{}
		}
	case stageAfterKey:
		ws()
		add(':')
	case stageBeforeValue:
		ws()
		vp, err := newSchemaParserState(p.schemaForKey(p.currentKey), p.ctx)
		if err == nil {
			for r := range vp.AllowedCharacters() {
				allowed[r] = struct{}{}
			}
		}
	case stageParsingValue:
		for r := range p.valueParser.AllowedCharacters() {
			allowed[r] = struct{}{}
		}
		if p.valueParser.AcceptsEnd() {
			ws()
			if p.canStartKeyExcept(p.currentKey) {
				add(',')
			}
			if p.requiredSatisfiedExcept(p.currentKey) {
				add('}')
			}
		}
	case stageAfterValue:
		ws()
		if p.canStartKey() {
			add(',')
		}
		if p.requiredSatisfied() {
			add('}')
		}
	}
	return allowed
}

func (p *objectParserState) AcceptsEnd() bool {
	return p.stage == stageDone
}

// ShortcutKey forwards to the value currently being parsed, so a string
// property nested inside an object (the canonical case) still reaches the
// freetext token cache instead of falling back to the per-character trie
// walk just because it isn't the top-level parser.
func (p *objectParserState) ShortcutKey() (any, bool) {
	if p.stage != stageParsingValue {
		return nil, false
	}
	if sk, ok := p.valueParser.(ShortcutKeyer); ok {
		return sk.ShortcutKey()
	}
	return nil, false
}
