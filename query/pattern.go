package query

import (
	"regexp"
	"strings"

	"github.com/KilimcininKorOglu/bptree/cache"
)

// PatternCache memoizes the translation of a SQL-style LIKE pattern
// (`%` → any run, `_` → any single char, anchored, case-insensitive) into
// a compiled, case-insensitive regular expression. Reuses the same bounded
// LRU the node cache is built on (cache.LRU[string, *regexp.Regexp]).
type PatternCache struct {
	lru *cache.LRU[string, *regexp.Regexp]
}

// NewPatternCache creates a PatternCache bounded to capacity entries.
func NewPatternCache(capacity int) *PatternCache {
	return &PatternCache{lru: cache.New[string, *regexp.Regexp](capacity)}
}

// Capacity returns the configured capacity.
func (p *PatternCache) Capacity() int { return p.lru.Capacity() }

// Compile translates pattern to a regular expression, using the cached
// translation if one exists.
func (p *PatternCache) Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := p.lru.Get(pattern); ok {
		return re, nil
	}

	re, err := regexp.Compile(translateLikePattern(pattern))
	if err != nil {
		return nil, err
	}

	p.lru.Put(pattern, re)
	return re, nil
}

// translateLikePattern turns a SQL LIKE pattern into an anchored,
// case-insensitive regular expression: `%` becomes `.*`, `_` becomes `.`,
// every other rune is escaped verbatim.
func translateLikePattern(pattern string) string {
	var b strings.Builder
	b.WriteString("(?is)^")

	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")
	return b.String()
}
