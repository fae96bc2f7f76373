// Package menu defines the multi-language menu catalog the voice-order
// pipeline matches transcripts against. A [Catalog] is read-only after
// construction and is owned by the application — there are no package-level
// singletons holding menu data.
package menu

import (
	"errors"
	"fmt"
)

// Lang identifies one of the kiosk's supported recognition languages.
type Lang string

const (
	Korean   Lang = "ko"
	English  Lang = "en"
	Chinese  Lang = "zh"
	Japanese Lang = "ja"
)

// SupportedLangs lists every language the kiosk ships keyword and quantity
// tables for, in display order.
var SupportedLangs = []Lang{Korean, English, Chinese, Japanese}

// IsValid reports whether l is a recognised language code.
func (l Lang) IsValid() bool {
	switch l {
	case Korean, English, Chinese, Japanese:
		return true
	}
	return false
}

// Entry describes a single orderable menu item.
type Entry struct {
	// ID is the stable unique identifier used to merge order lines.
	ID string `yaml:"id"`

	// Name maps language codes to the localized display name.
	Name map[Lang]string `yaml:"name"`

	// Description maps language codes to an optional localized description.
	Description map[Lang]string `yaml:"description,omitempty"`

	// Keywords maps language codes to the ordered list of surface forms a
	// speaker might use for this item. Declaration order is significant: it
	// is the tie-break when several keywords overlap in a transcript.
	// Common quantity-fused variants (e.g. "비빔밥하나") belong here too.
	Keywords map[Lang][]string `yaml:"keywords"`

	// Price is the item price in whole currency units (KRW).
	Price int `yaml:"price"`

	// Category is a free-form grouping tag ("main", "stew", "side", ...).
	Category string `yaml:"category"`

	// Available marks the item as currently orderable. Unavailable entries
	// stay in the catalog (so the admin screen can list them) but are
	// skipped by the parser.
	Available bool `yaml:"available"`

	// Popular marks the item for the recommendation seed ranking.
	Popular bool `yaml:"popular,omitempty"`
}

// LocalName returns the display name for lang, falling back to Korean and
// then to the entry ID when no localized name exists.
func (e *Entry) LocalName(lang Lang) string {
	if n, ok := e.Name[lang]; ok && n != "" {
		return n
	}
	if n, ok := e.Name[Korean]; ok && n != "" {
		return n
	}
	return e.ID
}

// Catalog is an ordered, validated collection of menu entries with an ID
// index. Entry order is significant: the parser scans entries in catalog
// order, which makes catalog order the tie-break for overlapping matches.
//
// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	entries []Entry
	byID    map[string]*Entry
}

// NewCatalog builds a Catalog from entries, validating them first.
// The input slice is copied; callers may reuse it afterwards.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byID:    make(map[string]*Entry, len(entries)),
	}
	copy(c.entries, entries)
	for i := range c.entries {
		c.byID[c.entries[i].ID] = &c.entries[i]
	}
	return c, nil
}

// Entries returns the catalog entries in declaration order. The returned
// slice must not be modified.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// ByID returns the entry with the given ID, or nil when absent.
func (c *Catalog) ByID(id string) *Entry {
	return c.byID[id]
}

// Len returns the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// validateEntries checks catalog-wide invariants and returns a joined error
// listing every violation found.
func validateEntries(entries []Entry) error {
	var errs []error
	seen := make(map[string]int, len(entries))

	for i, e := range entries {
		prefix := fmt.Sprintf("entries[%d]", i)
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else {
			if prev, ok := seen[e.ID]; ok {
				errs = append(errs, fmt.Errorf("%s.id %q is a duplicate of entries[%d]", prefix, e.ID, prev))
			}
			seen[e.ID] = i
		}
		if e.Price < 0 {
			errs = append(errs, fmt.Errorf("%s.price %d is negative", prefix, e.Price))
		}
		if len(e.Name) == 0 {
			errs = append(errs, fmt.Errorf("%s.name must have at least one language", prefix))
		}
		for lang := range e.Name {
			if !lang.IsValid() {
				errs = append(errs, fmt.Errorf("%s.name has unsupported language %q", prefix, lang))
			}
		}
		// Every language an entry declares keywords for must have at least
		// one non-empty phrase, otherwise the item is silently unorderable
		// in that language.
		for lang, kws := range e.Keywords {
			if !lang.IsValid() {
				errs = append(errs, fmt.Errorf("%s.keywords has unsupported language %q", prefix, lang))
				continue
			}
			if len(kws) == 0 {
				errs = append(errs, fmt.Errorf("%s.keywords[%s] is empty", prefix, lang))
			}
			for j, kw := range kws {
				if kw == "" {
					errs = append(errs, fmt.Errorf("%s.keywords[%s][%d] is empty", prefix, lang, j))
				}
			}
		}
	}

	return errors.Join(errs...)
}
