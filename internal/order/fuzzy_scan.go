package order

import (
	"strings"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

// scanFuzzy is the second-chance pass: when the substring scan found
// nothing, token n-grams of the transcript are tested against the keyword
// catalog through the configured [KeywordMatcher]. Longer n-grams are tried
// first so multi-word keywords win over partial single-word matches, and the
// cursor advances past a match so one spoken phrase cannot produce two
// candidates.
func (p *Parser) scanFuzzy(norm string, lang menu.Lang, lex Lexicon, catalog *menu.Catalog) []Candidate {
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return nil
	}

	keywords, owner, maxWords := keywordIndex(catalog, lang)
	if len(keywords) == 0 {
		return nil
	}

	var candidates []Candidate
	byID := make(map[string]int)

	i := 0
	for i < len(tokens) {
		maxN := maxWords
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}

		advanced := false
		for n := maxN; n >= 1; n-- {
			window := strings.Join(tokens[i:i+n], " ")
			kw, conf, ok := p.fuzzy.Match(window, keywords)
			if !ok {
				continue
			}
			e := owner[kw]

			qty, ambiguous := p.quantityTokens(tokens, i, i+n, lex)

			if j, found := byID[e.ID]; found {
				candidates[j].Quantity += qty
				candidates[j].Ambiguous = candidates[j].Ambiguous || ambiguous
			} else {
				byID[e.ID] = len(candidates)
				candidates = append(candidates, Candidate{
					Entry:      e,
					Quantity:   qty,
					Keyword:    kw,
					Confidence: conf,
					Ambiguous:  ambiguous,
					Method:     MethodFuzzy,
				})
			}

			i += n
			advanced = true
			break
		}

		if !advanced {
			i++
		}
	}

	return candidates
}

// quantityTokens extracts the quantity for a fuzzy match spanning
// tokens[start:end) by examining the immediately neighbouring tokens.
// Precedence mirrors quantityNear: digits first, then the lexicon's
// last-match tie-break.
func (p *Parser) quantityTokens(tokens []string, start, end int, lex Lexicon) (quantity int, ambiguous bool) {
	before, after := "", ""
	if start > 0 {
		before = tokens[start-1]
	}
	if end < len(tokens) {
		after = tokens[end]
	}

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

// keywordIndex flattens the catalog's keyword lists for one language into a
// lookup list plus an owner map, preserving catalog/keyword declaration
// order. When two entries declare the same lowercase keyword the earlier
// declaration owns it, consistent with the substring scan's tie-break.
func keywordIndex(catalog *menu.Catalog, lang menu.Lang) (keywords []string, owner map[string]*menu.Entry, maxWords int) {
	owner = make(map[string]*menu.Entry)
	maxWords = 1

	entries := catalog.Entries()
	for i := range entries {
		e := &entries[i]
		if !e.Available {
			continue
		}
		for _, kw := range e.Keywords[lang] {
			k := strings.ToLower(kw)
			if _, taken := owner[k]; taken {
				continue
			}
			owner[k] = e
			keywords = append(keywords, k)
			if n := len(strings.Fields(k)); n > maxWords {
				maxWords = n
			}
		}
	}
	return keywords, owner, maxWords
}
