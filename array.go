package formatenforcer

type arrayStage int

const (
	arrStart arrayStage = iota
	arrBeforeItemOrEnd
	arrParsingItem
	arrAfterItem
	arrDone
)

// arrayParserState is the acceptor for a JSON array (spec §4.E's
// ListParsingState): an opening bracket, zero or more items separated by
// commas, respecting MinItems/MaxItems (MaxItems defaults to the
// configured MaxJSONArrayLength when the schema doesn't set one), and a
// closing bracket.
type arrayParserState struct {
	ctx *parseContext

	items    *Schema
	minItems int
	maxItems int

	stage        arrayStage
	numItemsSeen int
	itemParser   CharacterLevelParser
}

func newArrayParserState(schema *Schema, ctx *parseContext) (*arrayParserState, error) {
	if schema.Items == nil {
		return nil, ErrArrayWithoutItemType
	}
	minItems := 0
	if schema.MinItems != nil {
		minItems = *schema.MinItems
	}
	maxItems := ctx.config.MaxJSONArrayLength
	if schema.MaxItems != nil {
		maxItems = *schema.MaxItems
	}
	return &arrayParserState{
		ctx:      ctx,
		items:    schema.Items,
		minItems: minItems,
		maxItems: maxItems,
		stage:    arrStart,
	}, nil
}

func (p *arrayParserState) clone() *arrayParserState {
	ns := *p
	return &ns
}

func (p *arrayParserState) canEnd() bool     { return p.numItemsSeen >= p.minItems }
func (p *arrayParserState) canAddMore() bool { return p.numItemsSeen < p.maxItems }

// canEndAfterOneMore and canAddMoreAfterOneMore answer canEnd/canAddMore as
// of the instant the in-progress item closes, for AllowedCharacters() to
// expose ',' or ']' the moment the item parser itself accepts end.
func (p *arrayParserState) canEndAfterOneMore() bool     { return p.numItemsSeen+1 >= p.minItems }
func (p *arrayParserState) canAddMoreAfterOneMore() bool { return p.numItemsSeen+1 < p.maxItems }

func (p *arrayParserState) Advance(ch rune) (CharacterLevelParser, error) {
	switch p.stage {
	case arrStart:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == '[' {
			ns := p.clone()
			ns.stage = arrBeforeItemOrEnd
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	case arrBeforeItemOrEnd:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == ']' && p.canEnd() {
			ns := p.clone()
			ns.stage = arrDone
			return ns, nil
		}
		if p.canAddMore() {
			ip, err := newSchemaParserState(p.items, p.ctx)
			if err != nil {
				return nil, err
			}
			if _, ok := ip.AllowedCharacters()[ch]; !ok {
				return nil, ErrParserDeadEnd
			}
			advanced, err := ip.Advance(ch)
			if err != nil {
				return nil, err
			}
			ns := p.clone()
			ns.itemParser = advanced
			ns.stage = arrParsingItem
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	case arrParsingItem:
		if _, ok := p.itemParser.AllowedCharacters()[ch]; ok {
			advanced, err := p.itemParser.Advance(ch)
			if err != nil {
				return nil, err
			}
			ns := p.clone()
			ns.itemParser = advanced
			return ns, nil
		}
		if !p.itemParser.AcceptsEnd() {
			return nil, ErrParserDeadEnd
		}
		ns := p.clone()
		ns.numItemsSeen++
		ns.itemParser = nil
		ns.stage = arrAfterItem
		return ns.Advance(ch)

	case arrAfterItem:
		if isJSONWhitespace(ch) {
			return p, nil
		}
		if ch == ',' && p.canAddMore() {
			ns := p.clone()
			ns.stage = arrBeforeItemOrEnd
			return ns, nil
		}
		if ch == ']' && p.canEnd() {
			ns := p.clone()
			ns.stage = arrDone
			return ns, nil
		}
		return nil, ErrParserDeadEnd

	default:
		return nil, ErrParserDeadEnd
	}
}

func (p *arrayParserState) AllowedCharacters() map[rune]struct{} {
	allowed := map[rune]struct{}{}
	add := func(rs ...rune) {
		for _, r := range rs {
			allowed[r] = struct{}{}
		}
	}
	ws := func() { add(' ', '\t', '\n', '\r') }

	switch p.stage {
	case arrStart:
		ws()
		add('[')
	case arrBeforeItemOrEnd:
		ws()
		if p.canEnd() {
			add(']')
		}
		if p.canAddMore() {
			ip, err := newSchemaParserState(p.items, p.ctx)
			if err == nil {
				for r := range ip.AllowedCharacters() {
					allowed[r] = struct{}{}
				}
			}
		}
	case arrParsingItem:
		for r := range p.itemParser.AllowedCharacters() {
			allowed[r] = struct{}{}
		}
		if p.itemParser.AcceptsEnd() {
			ws()
			if p.canAddMoreAfterOneMore() {
				add(',')
			}
			if p.canEndAfterOneMore() {
				add(']')
			}
		}
	case arrAfterItem:
		ws()
		if p.canAddMore() {
			add(',')
		}
		if p.canEnd() {
			add(']')
		}
	}
	return allowed
}

func (p *arrayParserState) AcceptsEnd() bool { return p.stage == arrDone }

// ShortcutKey forwards to the item currently being parsed, so a string item
// inside an array also reaches the freetext token cache.
func (p *arrayParserState) ShortcutKey() (any, bool) {
	if p.stage != arrParsingItem {
		return nil, false
	}
	if sk, ok := p.itemParser.(ShortcutKeyer); ok {
		return sk.ShortcutKey()
	}
	return nil, false
}
