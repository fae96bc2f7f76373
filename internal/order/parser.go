package order

import (
	"strings"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

const (
	// defaultWindow is the neighbourhood width, in runes, scanned on each
	// side of a matched keyword for quantity phrases. Ten runes is enough
	// for every phrase in the built-in lexicons while keeping quantity
	// words from drifting to an unrelated item in multi-item utterances.
	defaultWindow = 10

	// Result confidence weights: a base of 0.7, +0.1 per matched item
	// capped at 0.95, and 0.5 for degraded fallback results.
	baseConfidence     = 0.7
	perMatchConfidence = 0.1
	maxConfidence      = 0.95
	fallbackConfidence = 0.5
)

// Match method values recorded on a [Candidate].
const (
	MethodSubstring = "substring"
	MethodFuzzy     = "fuzzy"
	MethodFallback  = "fallback"
)

// Candidate is a tentative (entry, quantity) match produced by a single
// parse call, before merging into the running order.
type Candidate struct {
	// Entry is the resolved menu entry. Nil for degraded fallback
	// candidates, which carry the raw spoken name in Unresolved instead.
	Entry *menu.Entry

	// Quantity is the extracted quantity, at least 1.
	Quantity int

	// Keyword is the surface form that matched (empty for fallback).
	Keyword string

	// Unresolved is the raw item name guessed by the degraded fallback.
	Unresolved string

	// Confidence is the per-candidate match confidence. Substring matches
	// are 1.0; fuzzy matches carry the matcher's similarity score.
	Confidence float64

	// Ambiguous is set when more than one distinct quantity phrase was
	// found near the keyword and the last-match tie-break had to decide.
	Ambiguous bool

	// Method records which stage produced this candidate: one of
	// [MethodSubstring], [MethodFuzzy], [MethodFallback].
	Method string
}

// Resolved reports whether the candidate references a real catalog entry.
func (c Candidate) Resolved() bool {
	return c.Entry != nil
}

// Result is the outcome of one [Parser.Parse] call.
type Result struct {
	// Candidates lists the matches in the order they were first found.
	Candidates []Candidate

	// Confidence is the overall parse confidence in [0,1].
	Confidence float64

	// Degraded is set when no catalog keyword matched and the token-level
	// fallback produced the candidates. Degraded candidates are unresolved
	// and must not be merged into an order without explicit caller intent.
	Degraded bool
}

// KeywordMatcher is the seam for approximate keyword matching. The substring
// scan is authoritative; a matcher only runs as a second chance when the
// scan finds nothing, so swapping implementations (edit distance, phonetic,
// tokenizer-based) cannot change the merge contract.
type KeywordMatcher interface {
	// Match tests phrase against keywords and returns the best-matching
	// keyword. When matched is false, keyword must be returned unchanged as
	// phrase and confidence must be 0.
	Match(phrase string, keywords []string) (keyword string, confidence float64, matched bool)
}

// Option is a functional option for configuring a [Parser].
type Option func(*Parser)

// WithWindow sets the quantity scan window width in runes on each side of a
// matched keyword. Values below 1 are ignored. Default: 10.
func WithWindow(runes int) Option {
	return func(p *Parser) {
		if runes >= 1 {
			p.window = runes
		}
	}
}

// WithLexicons replaces the built-in quantity lexicons.
func WithLexicons(lx Lexicons) Option {
	return func(p *Parser) {
		p.lexicons = lx
	}
}

// WithFuzzyMatcher attaches a [KeywordMatcher] that runs when the substring
// scan yields no candidates. When nil (the default) the stage is skipped and
// a miss goes straight to the degraded token fallback.
func WithFuzzyMatcher(m KeywordMatcher) Option {
	return func(p *Parser) {
		p.fuzzy = m
	}
}

// Parser converts final speech transcripts into order candidates.
// It is read-only after construction and safe for concurrent use.
type Parser struct {
	window   int
	lexicons Lexicons
	fuzzy    KeywordMatcher
}

// NewParser returns a Parser with the built-in lexicons and defaults,
// adjusted by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		window:   defaultWindow,
		lexicons: DefaultLexicons(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Normalize lower-cases the transcript, strips sentence punctuation and
// trims surrounding whitespace. Parse applies it internally; it is exported
// so callers can display what was actually matched against.
func Normalize(transcript string) string {
	s := strings.ToLower(transcript)
	s = punctuationReplacer.Replace(s)
	return strings.TrimSpace(s)
}

var punctuationReplacer = strings.NewReplacer(".", "", ",", "", "!", "", "?", "")

// Parse scans transcript for menu items in the given language and returns
// the candidates found, in first-match order.
//
// The scan walks the catalog in declaration order and each entry's keyword
// list in declaration order; that double order is the documented tie-break
// for overlapping matches. Quantities come from a bounded rune window on
// each side of the matched keyword: a bare number wins, otherwise the last
// lexicon phrase found wins. When several keyword variants of the same entry
// match in one call their quantities are summed into a single candidate.
//
// A transcript that matches nothing is not an error: the degraded token
// fallback produces an unresolved low-confidence candidate (or none at all
// for empty input). The only error condition is a language without
// registered tables, reported as [ErrUnsupportedLanguage].
func (p *Parser) Parse(transcript string, lang menu.Lang, catalog *menu.Catalog) (*Result, error) {
	if !lang.IsValid() {
		return nil, unsupportedLanguage(lang)
	}
	lex, ok := p.lexicons[lang]
	if !ok {
		return nil, unsupportedLanguage(lang)
	}

	norm := Normalize(transcript)

	candidates := p.scanCatalog(norm, lang, lex, catalog)

	if len(candidates) == 0 && p.fuzzy != nil && norm != "" {
		candidates = p.scanFuzzy(norm, lang, lex, catalog)
	}

	if len(candidates) == 0 {
		return p.fallback(norm, lex), nil
	}

	conf := baseConfidence + perMatchConfidence*float64(len(candidates))
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return &Result{Candidates: candidates, Confidence: conf}, nil
}

// scanCatalog runs the authoritative substring scan.
func (p *Parser) scanCatalog(norm string, lang menu.Lang, lex Lexicon, catalog *menu.Catalog) []Candidate {
	if norm == "" {
		return nil
	}

	var candidates []Candidate
	byID := make(map[string]int)

	entries := catalog.Entries()
	for i := range entries {
		e := &entries[i]
		if !e.Available {
			continue
		}
		for _, kw := range e.Keywords[lang] {
			k := strings.ToLower(kw)
			at := strings.Index(norm, k)
			if at < 0 {
				continue
			}

			qty, ambiguous := p.quantityNear(norm, at, len(k), lex)

			if j, ok := byID[e.ID]; ok {
				// A second keyword variant of an already-found entry
				// contributes its quantity to the existing candidate.
				candidates[j].Quantity += qty
				candidates[j].Ambiguous = candidates[j].Ambiguous || ambiguous
				continue
			}
			byID[e.ID] = len(candidates)
			candidates = append(candidates, Candidate{
				Entry:      e,
				Quantity:   qty,
				Keyword:    kw,
				Confidence: 1,
				Ambiguous:  ambiguous,
				Method:     MethodSubstring,
			})
		}
	}

	return candidates
}

// quantityNear extracts the quantity for a keyword occurrence at byte offset
// at with byte length klen. Both neighbourhood windows are scanned: a bare
// number anywhere in a window wins first (before-side takes precedence),
// otherwise the lexicon decides with its last-match tie-break. The default
// is 1.
func (p *Parser) quantityNear(text string, at, klen int, lex Lexicon) (quantity int, ambiguous bool) {
	before := lastRunes(text[:at], p.window)
	after := firstRunes(text[at+klen:], p.window)

	if n, ok := firstDigits(before); ok {
		return n, false
	}
	if n, ok := firstDigits(after); ok {
		return n, false
	}

	q, distinct := lex.scanWindows(before, after)
	if distinct == 0 {
		return 1, false
	}
	return q, distinct > 1
}

// fallback is the degraded heuristic applied when nothing matched: scan
// tokens for a quantity and treat the first token longer than one rune that
// is not itself a quantity word as a raw, unresolved item name. The result
// is flagged Degraded and is never merged automatically.
func (p *Parser) fallback(norm string, lex Lexicon) *Result {
	if norm == "" {
		return &Result{Candidates: []Candidate{}, Confidence: 0}
	}

	quantity := 1
	item := ""
	for _, tok := range strings.Fields(norm) {
		if n, ok := firstDigits(tok); ok {
			quantity = n
			continue
		}
		if n, ok := lex.matchToken(tok); ok {
			quantity = n
			continue
		}
		if item == "" && len([]rune(tok)) > 1 {
			item = tok
		}
	}

	if item == "" {
		return &Result{Candidates: []Candidate{}, Confidence: 0}
	}
	return &Result{
		Candidates: []Candidate{{
			Unresolved: item,
			Quantity:   quantity,
			Confidence: fallbackConfidence,
			Method:     MethodFallback,
		}},
		Confidence: fallbackConfidence,
		Degraded:   true,
	}
}

// lastRunes returns the suffix of s containing at most n runes.
func lastRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// firstRunes returns the prefix of s containing at most n runes.
func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
