package order

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

// QuantityPhrase maps one spoken surface form to an integer quantity.
type QuantityPhrase struct {
	// Phrase is the exact substring searched for, lower-case.
	Phrase string

	// Quantity is the positive integer the phrase resolves to.
	Quantity int
}

// Lexicon is the ordered quantity vocabulary for one language. Order is
// significant: when several phrases match near a keyword, the last match in
// declaration order wins. The ambiguous-quantity counter in internal/observe
// tracks how often that tie-break actually bites.
type Lexicon []QuantityPhrase

// Lexicons maps each supported language to its quantity lexicon.
type Lexicons map[menu.Lang]Lexicon

// DefaultLexicons returns the built-in quantity vocabularies for all
// supported languages.
func DefaultLexicons() Lexicons {
	return Lexicons{
		menu.Korean: {
			{"하나", 1}, {"한개", 1}, {"한 개", 1}, {"일개", 1},
			{"둘", 2}, {"두개", 2}, {"두 개", 2}, {"이개", 2},
			{"셋", 3}, {"세개", 3}, {"세 개", 3}, {"삼개", 3},
			{"넷", 4}, {"네개", 4}, {"네 개", 4}, {"사개", 4},
			{"다섯", 5}, {"다섯개", 5}, {"오개", 5},
			{"여섯", 6}, {"여섯개", 6},
			{"일곱", 7}, {"일곱개", 7},
			{"여덟", 8}, {"여덟개", 8},
			{"아홉", 9}, {"아홉개", 9},
			{"열", 10}, {"열개", 10},
		},
		menu.English: {
			{"one", 1}, {"two", 2}, {"three", 3}, {"four", 4}, {"five", 5},
			{"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
		},
		menu.Chinese: {
			{"一个", 1}, {"两个", 2}, {"三个", 3}, {"四个", 4}, {"五个", 5},
			{"一", 1}, {"二", 2}, {"两", 2}, {"三", 3}, {"四", 4}, {"五", 5},
		},
		menu.Japanese: {
			{"一つ", 1}, {"二つ", 2}, {"三つ", 3}, {"四つ", 4}, {"五つ", 5},
			{"ひとつ", 1}, {"ふたつ", 2}, {"みっつ", 3}, {"よっつ", 4}, {"いつつ", 5},
		},
	}
}

// scanWindows searches both neighbourhood windows for lexicon phrases and
// returns the quantity of the LAST phrase (in declaration order) found.
// distinct counts how many different quantities matched: distinct > 1 means
// the windows were genuinely ambiguous (several phrases resolving to the
// same number, like "다섯" inside "다섯개", are not).
func (l Lexicon) scanWindows(before, after string) (quantity int, distinct int) {
	seen := make(map[int]struct{}, 2)
	for _, p := range l {
		if strings.Contains(before, p.Phrase) || strings.Contains(after, p.Phrase) {
			quantity = p.Quantity
			seen[p.Quantity] = struct{}{}
		}
	}
	return quantity, len(seen)
}

// matchToken reports the quantity for an exact token match ("two" but not
// "twofold"). Used by the degraded fallback, which works token-wise rather
// than substring-wise.
func (l Lexicon) matchToken(token string) (int, bool) {
	for _, p := range l {
		if token == p.Phrase {
			return p.Quantity, true
		}
	}
	return 0, false
}

// firstDigits extracts the first run of ASCII digits in text as an integer.
// Returns ok=false when text contains no digits or the run does not parse.
func firstDigits(text string) (int, bool) {
	start := -1
	for i, r := range text {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return parseDigits(text[start:i])
		}
	}
	if start >= 0 {
		return parseDigits(text[start:])
	}
	return 0, false
}

func parseDigits(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
