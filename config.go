package formatenforcer

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

const (
	envDefaultAlphabet         = "LMFE_DEFAULT_ALPHABET"
	envMaxConsecutiveWS        = "LMFE_MAX_CONSECUTIVE_WHITESPACES"
	envStrictJSONFieldOrder    = "LMFE_STRICT_JSON_FIELD_ORDER"
	envMaxJSONArrayLength      = "LMFE_MAX_JSON_ARRAY_LENGTH"
	defaultMaxConsecutiveWS    = 12
	defaultMaxJSONArrayLength  = 20
	defaultForceJSONFieldOrder = false
)

// completeAlphabet is the built-in default: ASCII printables plus whitespace.
func completeAlphabet() map[rune]struct{} {
	alphabet := make(map[rune]struct{}, 100)
	for r := rune(0x20); r <= 0x7e; r++ {
		alphabet[r] = struct{}{}
	}
	for _, r := range " \t\n\r" {
		alphabet[r] = struct{}{}
	}
	return alphabet
}

// CharacterLevelParserConfig holds the knobs every parser in this package
// consults: the universe of characters an "any character" position may
// produce, and the JSON-specific bounds spec.md names explicitly.
type CharacterLevelParserConfig struct {
	Alphabet                 map[rune]struct{}
	MaxConsecutiveWhitespace int
	ForceJSONFieldOrder      bool
	MaxJSONArrayLength       int

	regexMu    sync.Mutex
	regexCache map[string]*nfaGraph
}

// compiledRegex compiles pattern on first use and reuses the result for
// every subsequent string parser built against the same pattern under
// this config, which is what lets CacheKeyer comparisons across distinct
// parser instances hold (spec §8, cache soundness).
func (c *CharacterLevelParserConfig) compiledRegex(pattern string) (*nfaGraph, error) {
	c.regexMu.Lock()
	defer c.regexMu.Unlock()
	if c.regexCache == nil {
		c.regexCache = map[string]*nfaGraph{}
	}
	if g, ok := c.regexCache[pattern]; ok {
		return g, nil
	}
	g, err := compileRegex(pattern)
	if err != nil {
		return nil, err
	}
	c.regexCache[pattern] = g
	return g, nil
}

// DefaultConfig returns the configuration spec.md documents as defaults,
// with any LMFE_* environment variable overriding its field.
func DefaultConfig() *CharacterLevelParserConfig {
	cfg := &CharacterLevelParserConfig{
		Alphabet:                 completeAlphabet(),
		MaxConsecutiveWhitespace: defaultMaxConsecutiveWS,
		ForceJSONFieldOrder:      defaultForceJSONFieldOrder,
		MaxJSONArrayLength:       defaultMaxJSONArrayLength,
	}
	cfg.applyEnv()
	return cfg
}

func (c *CharacterLevelParserConfig) applyEnv() {
	if v, ok := os.LookupEnv(envDefaultAlphabet); ok {
		alphabet := make(map[rune]struct{}, len(v))
		for _, r := range v {
			alphabet[r] = struct{}{}
		}
		c.Alphabet = alphabet
	}
	if v, ok := os.LookupEnv(envMaxConsecutiveWS); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.MaxConsecutiveWhitespace = n
		}
	}
	if v, ok := os.LookupEnv(envStrictJSONFieldOrder); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.ForceJSONFieldOrder = b
		}
	}
	if v, ok := os.LookupEnv(envMaxJSONArrayLength); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.MaxJSONArrayLength = n
		}
	}
}

// fileConfig mirrors CharacterLevelParserConfig's scalar fields for YAML
// decoding; the alphabet is stored as a plain string there.
type fileConfig struct {
	Alphabet                 string `yaml:"alphabet"`
	MaxConsecutiveWhitespace *int   `yaml:"maxConsecutiveWhitespace"`
	ForceJSONFieldOrder      *bool  `yaml:"forceJsonFieldOrder"`
	MaxJSONArrayLength       *int   `yaml:"maxJsonArrayLength"`
}

// LoadConfig builds a CharacterLevelParserConfig starting from the
// documented defaults, applying a YAML override file when path is
// non-empty and exists, and finally letting LMFE_* environment
// variables win over both.
func LoadConfig(path string) (*CharacterLevelParserConfig, error) {
	cfg := &CharacterLevelParserConfig{
		Alphabet:                 completeAlphabet(),
		MaxConsecutiveWhitespace: defaultMaxConsecutiveWS,
		ForceJSONFieldOrder:      defaultForceJSONFieldOrder,
		MaxJSONArrayLength:       defaultMaxJSONArrayLength,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, err
			}
			if fc.Alphabet != "" {
				alphabet := make(map[rune]struct{}, len(fc.Alphabet))
				for _, r := range fc.Alphabet {
					alphabet[r] = struct{}{}
				}
				cfg.Alphabet = alphabet
			}
			if fc.MaxConsecutiveWhitespace != nil {
				cfg.MaxConsecutiveWhitespace = *fc.MaxConsecutiveWhitespace
			}
			if fc.ForceJSONFieldOrder != nil {
				cfg.ForceJSONFieldOrder = *fc.ForceJSONFieldOrder
			}
			if fc.MaxJSONArrayLength != nil {
				cfg.MaxJSONArrayLength = *fc.MaxJSONArrayLength
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Contains reports whether r is a member of the configured alphabet.
func (c *CharacterLevelParserConfig) Contains(r rune) bool {
	_, ok := c.Alphabet[r]
	return ok
}
