package formatenforcer

import "sort"

type freetextEntry struct {
	id      int
	decoded string
}

// JSONFreetextTokenCache precomputes, for every vocabulary token whose
// decoded text is legal to appear verbatim inside an unconstrained JSON
// string body, which length bucket it falls into — so that unconstrained
// string generation (spec §4.A's ShortcutKey path) can answer "what
// tokens are allowed here" by a couple of sorted-slice lookups instead of
// a character-by-character trie walk.
type JSONFreetextTokenCache struct {
	regular         []freetextEntry // decoded bodies with no trailing quote
	quoteTerminated []freetextEntry // decoded text with the trailing '"' stripped off before storing

	regularLenIndex []int
	quoteLenIndex   []int

	memo map[[2]int][]int
}

func newJSONFreetextTokenCache() *JSONFreetextTokenCache {
	return &JSONFreetextTokenCache{memo: map[[2]int][]int{}}
}

// isLegalJSONStringBodyFragment reports whether s could appear, verbatim,
// somewhere strictly inside an open JSON string: no raw newline/carriage
// return, no unescaped quote, and every backslash starting a complete
// escape sequence (a backslash left dangling at the end could not be
// safely completed by whatever token follows).
func isLegalJSONStringBodyFragment(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n', '\r', '"':
			return false
		case '\\':
			if i == len(s)-1 {
				return false
			}
			switch s[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				if i+5 >= len(s) {
					return false
				}
				for _, h := range s[i+2 : i+6] {
					if _, ok := hexDigitSet[h]; !ok {
						return false
					}
				}
			default:
				return false
			}
			i++
		}
	}
	return true
}

func (c *JSONFreetextTokenCache) maybeAdd(id int, decoded string) {
	if decoded == "" {
		return
	}
	if len(decoded) > 1 && decoded[len(decoded)-1] == '"' {
		body := decoded[:len(decoded)-1]
		if isLegalJSONStringBodyFragment(body) {
			c.quoteTerminated = append(c.quoteTerminated, freetextEntry{id: id, decoded: body})
		}
		return
	}
	if isLegalJSONStringBodyFragment(decoded) {
		c.regular = append(c.regular, freetextEntry{id: id, decoded: decoded})
	}
}

func buildLenIndex(entries []freetextEntry) []int {
	maxLen := 0
	for _, e := range entries {
		if len(e.decoded) > maxLen {
			maxLen = len(e.decoded)
		}
	}
	idx := make([]int, maxLen+2)
	pos := 0
	for length := 0; length <= maxLen+1; length++ {
		for pos < len(entries) && len(entries[pos].decoded) < length {
			pos++
		}
		idx[length] = pos
	}
	return idx
}

func (c *JSONFreetextTokenCache) finalize() {
	sort.Slice(c.regular, func(i, j int) bool { return len(c.regular[i].decoded) < len(c.regular[j].decoded) })
	sort.Slice(c.quoteTerminated, func(i, j int) bool {
		return len(c.quoteTerminated[i].decoded) < len(c.quoteTerminated[j].decoded)
	})
	c.regularLenIndex = buildLenIndex(c.regular)
	c.quoteLenIndex = buildLenIndex(c.quoteTerminated)
}

func lenIndexAt(idx []int, length int) int {
	if length < 0 {
		return 0
	}
	if length >= len(idx) {
		if len(idx) == 0 {
			return 0
		}
		return idx[len(idx)-1]
	}
	return idx[length]
}

// Allowed returns every token id legal to emit next inside an
// unconstrained string body that has already consumed curLen characters,
// given minRemaining more characters are still required (to satisfy
// minLength) and maxLen more characters may still be consumed (to respect
// maxLength, or no cap when maxLen < 0).
func (c *JSONFreetextTokenCache) Allowed(minRemaining, maxLen int) []int {
	key := [2]int{minRemaining, maxLen}
	if cached, ok := c.memo[key]; ok {
		return cached
	}

	var out []int
	if maxLen < 0 {
		for _, e := range c.regular {
			out = append(out, e.id)
		}
	} else {
		end := lenIndexAt(c.regularLenIndex, maxLen+1)
		for _, e := range c.regular[:end] {
			out = append(out, e.id)
		}
	}

	start := lenIndexAt(c.quoteLenIndex, minRemaining)
	end := len(c.quoteTerminated)
	if maxLen >= 0 {
		end = lenIndexAt(c.quoteLenIndex, maxLen+1)
	}
	if start < end {
		for _, e := range c.quoteTerminated[start:end] {
			out = append(out, e.id)
		}
	}

	c.memo[key] = out
	return out
}
