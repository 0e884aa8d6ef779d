// Package speller checks words against a dictionary automaton and suggests
// corrections.
//
// Suggestions are found by walking the automaton and an edit distance table
// together, so the word list is never expanded in memory. Distances count
// characters, not bytes: with a UTF-8 dictionary "Rzękunia" is one edit away
// from "Rzekunia", just like with an ISO-8859-2 one.
package speller

import (
	"bytes"
	"context"
	"strconv"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/smhanov/fsa/dictionary"
)

// Option adjusts the Config a Speller is created with.
type Option func(*Config)

// WithMaxDistance sets the default edit distance budget.
func WithMaxDistance(n int) Option {
	return func(c *Config) { c.MaxDistance = n }
}

// WithCacheSize keeps the suggestions for up to n recent queries.
func WithCacheSize(n int) Option {
	return func(c *Config) { c.CacheSize = n }
}

// Speller answers spelling queries against one dictionary. It holds no
// per-query state and is safe for concurrent use.
type Speller struct {
	dict        *dictionary.Dictionary
	maxDistance int
	workers     int
	cache       *lru.Cache[string, []string]
}

// New creates a Speller with DefaultConfig adjusted by opts.
func New(d *dictionary.Dictionary, opts ...Option) (*Speller, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(d, cfg)
}

// NewWithConfig creates a Speller from cfg.
func NewWithConfig(d *dictionary.Dictionary, cfg Config) (*Speller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Speller{
		dict:        d,
		maxDistance: cfg.MaxDistance,
		workers:     cfg.Workers,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []string](cfg.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "speller: creating cache")
		}
		s.cache = cache
	}
	return s, nil
}

// MaxDistance returns the default edit distance budget.
func (s *Speller) MaxDistance() int {
	return s.maxDistance
}

// Dictionary returns the dictionary the Speller checks against.
func (s *Speller) Dictionary() *dictionary.Dictionary {
	return s.dict
}

// IsInDictionary reports whether word is a dictionary word.
func (s *Speller) IsInDictionary(word string) bool {
	return s.dict.Contains(word)
}

// FindReplacements returns the dictionary words within the default edit
// distance of word, nearest first. Words already in the dictionary get no
// replacements.
func (s *Speller) FindReplacements(word string) []string {
	out, _ := s.FindReplacementsContext(context.Background(), word, s.maxDistance)
	return out
}

// FindReplacementsWithin is FindReplacements with an explicit budget.
func (s *Speller) FindReplacementsWithin(word string, maxDistance int) []string {
	out, _ := s.FindReplacementsContext(context.Background(), word, maxDistance)
	return out
}

// FindReplacementsContext is FindReplacementsWithin that stops early with the
// context's error when ctx is done.
func (s *Speller) FindReplacementsContext(ctx context.Context, word string, maxDistance int) ([]string, error) {
	if maxDistance < 0 || word == "" || s.IsInDictionary(word) {
		return nil, nil
	}

	key := strconv.Itoa(maxDistance) + "\x00" + word
	if s.cache != nil {
		if out, ok := s.cache.Get(key); ok {
			return append([]string(nil), out...), nil
		}
	}

	query, ok := s.encodeQuery(word)
	if !ok {
		return nil, nil
	}

	found, err := newSearcher(s.dict, query, maxDistance).run(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, c := range found {
		out = append(out, c.word)
	}
	if s.cache != nil {
		s.cache.Add(key, append([]string(nil), out...))
	}
	return out, nil
}

// encodeQuery splits word into encoded characters. It fails for text the
// dictionary cannot hold: control characters, characters outside the
// dictionary's encoding and the field separator.
func (s *Speller) encodeQuery(word string) ([][]byte, bool) {
	for _, r := range word {
		if unicode.IsControl(r) {
			return nil, false
		}
	}

	query, err := s.dict.EncodeRunes(word)
	if err != nil {
		return nil, false
	}
	if sep := s.dict.Separator(); sep != 0 {
		for _, ch := range query {
			if bytes.IndexByte(ch, sep) >= 0 {
				return nil, false
			}
		}
	}
	return query, true
}

// ReplaceRunOnWords splits text into two dictionary words where possible and
// returns every "left right" pair in split order. Text that is itself a word
// is left alone.
func (s *Speller) ReplaceRunOnWords(text string) []string {
	if text == "" || s.IsInDictionary(text) {
		return nil
	}

	var out []string
	for i := range text {
		if i == 0 {
			continue
		}
		left, right := text[:i], text[i:]
		if s.IsInDictionary(left) && s.IsInDictionary(right) {
			out = append(out, left+" "+right)
		}
	}
	return out
}
