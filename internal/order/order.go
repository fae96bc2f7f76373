// Package order implements the voice-order core: parsing final
// speech-recognition transcripts into candidate order lines against a menu
// catalog, and the pure list operations on a running order.
//
// All operations are deterministic pure functions over their inputs. The
// running order is owned by the kiosk session (see internal/session); this
// package never persists or shares state.
package order

import (
	"slices"

	"github.com/hanwoori/sorikiosk/internal/menu"
)

// Line is one row of a running order: a menu entry with an accumulated
// quantity. Lines are keyed by Entry.ID — an order never holds two lines for
// the same entry.
type Line struct {
	// Entry references the matched menu entry. Shared and read-only.
	Entry *menu.Entry `json:"entry"`

	// Quantity is the accumulated positive quantity.
	Quantity int `json:"quantity"`

	// Options is reserved for future modifiers ("no onions"). Currently
	// always empty, carried so the wire shape is stable.
	Options []string `json:"options,omitempty"`
}

// Merge folds candidates into current and returns the resulting order.
//
// Lines already present keep their relative order and have matching
// candidate quantities added; unmatched candidates are appended as new lines
// in the order they were discovered. Unresolved candidates (no entry) are
// skipped — accepting them is an explicit caller decision, not a merge
// side effect. The input slices are not modified.
func Merge(current []Line, candidates []Candidate) []Line {
	result := slices.Clone(current)

	for _, c := range candidates {
		if c.Entry == nil || c.Quantity <= 0 {
			continue
		}
		if i := indexByID(result, c.Entry.ID); i >= 0 {
			result[i].Quantity += c.Quantity
			continue
		}
		result = append(result, Line{Entry: c.Entry, Quantity: c.Quantity, Options: []string{}})
	}

	return result
}

// RemoveLine returns the order without the line for id. Removing an absent
// id is a no-op, not an error.
func RemoveLine(current []Line, id string) []Line {
	i := indexByID(current, id)
	if i < 0 {
		return slices.Clone(current)
	}
	return slices.Delete(slices.Clone(current), i, i+1)
}

// SetQuantity returns the order with the line for id set to quantity
// (replace, not add). A quantity of zero or below removes the line. Setting
// a quantity for an absent id is a no-op.
func SetQuantity(current []Line, id string, quantity int) []Line {
	if quantity <= 0 {
		return RemoveLine(current, id)
	}
	result := slices.Clone(current)
	if i := indexByID(result, id); i >= 0 {
		result[i].Quantity = quantity
	}
	return result
}

// TotalPrice sums price*quantity over all lines. An empty order totals 0.
func TotalPrice(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Entry.Price * l.Quantity
	}
	return total
}

func indexByID(lines []Line, id string) int {
	return slices.IndexFunc(lines, func(l Line) bool {
		return l.Entry != nil && l.Entry.ID == id
	})
}
