// Package fuzzy implements the [order.KeywordMatcher] interface using
// Double Metaphone phonetic encoding combined with Jaro-Winkler string
// similarity for ranked candidate selection.
//
// The algorithm proceeds in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     each word of the input and each keyword. A keyword whose codes overlap
//     with the input's becomes a phonetic candidate. Metaphone only encodes
//     latin script, so for CJK keywords this stage is inert and matching
//     falls through to stage 2.
//
//  2. Jaro-Winkler ranking: among phonetic candidates the keyword with the
//     highest Jaro-Winkler similarity wins, provided it clears the phonetic
//     threshold. Without phonetic candidates a stricter pure-similarity
//     fallback applies.
//
// This mops up recognition misspellings ("bibimbop", "bulgoki") that the
// kiosk's authoritative substring scan cannot see. It never overrides a
// substring match — the parser only consults it when the scan comes up
// empty.
package fuzzy

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/hanwoori/sorikiosk/internal/order"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultSimilarThreshold  = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched keyword to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithSimilarThreshold sets the minimum Jaro-Winkler score required when no
// phonetic candidate exists and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithSimilarThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.similarThreshold = threshold
	}
}

// Matcher is a phonetic keyword matcher. It is read-only after construction
// and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	similarThreshold  float64
}

// Compile-time interface check.
var _ order.KeywordMatcher = (*Matcher)(nil)

// New returns a Matcher configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		similarThreshold:  defaultSimilarThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match tests phrase against keywords and returns the best-matching keyword
// per the [order.KeywordMatcher] contract: when matched is false, keyword
// equals phrase unchanged and confidence is 0.
func (m *Matcher) Match(phrase string, keywords []string) (keyword string, confidence float64, matched bool) {
	phrase = strings.TrimSpace(strings.ToLower(phrase))
	if phrase == "" || len(keywords) == 0 {
		return phrase, 0, false
	}

	phraseTokens := strings.Fields(phrase)
	phraseCodes := codesForTokens(phraseTokens)

	type candidate struct {
		keyword  string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, kw := range keywords {
		kwLower := strings.ToLower(strings.TrimSpace(kw))
		if kwLower == "" {
			continue
		}
		kwTokens := strings.Fields(kwLower)

		phonetic := codesOverlap(phraseCodes, codesForTokens(kwTokens))
		score := bestJWScore(phraseTokens, kwTokens, phrase, kwLower)

		if phonetic {
			if score >= m.phoneticThreshold {
				if !best.phonetic || score > best.score {
					best = candidate{keyword: kw, score: score, phonetic: true}
				}
			}
		} else if !best.phonetic {
			if score >= m.similarThreshold && score > best.score {
				best = candidate{keyword: kw, score: score, phonetic: false}
			}
		}
	}

	if best.keyword != "" {
		return best.keyword, best.score, true
	}
	return phrase, 0, false
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded (short words, non-latin script).
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore computes the highest Jaro-Winkler similarity between the
// phrase and the keyword across three strategies: full strings,
// space-stripped strings, and the best pairwise token score.
func bestJWScore(phraseTokens, kwTokens []string, phraseFull, kwFull string) float64 {
	score := matchr.JaroWinkler(phraseFull, kwFull, false)

	if len(phraseTokens) > 1 || len(kwTokens) > 1 {
		concat1 := strings.Join(phraseTokens, "")
		concat2 := strings.Join(kwTokens, "")
		if s := matchr.JaroWinkler(concat1, concat2, false); s > score {
			score = s
		}
	}

	for _, pt := range phraseTokens {
		for _, kt := range kwTokens {
			if s := matchr.JaroWinkler(pt, kt, false); s > score {
				score = s
			}
		}
	}

	return score
}
