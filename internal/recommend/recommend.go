// Package recommend ranks menu items for the kiosk's suggestion rail.
// Rankings blend a static popularity seed from the catalog with live
// counts from recently archived orders, so the rail tracks what the
// restaurant actually sells without any offline training step.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hanwoori/sorikiosk/internal/config"
	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/orderstore"
)

const (
	// popularSeedBonus is the order-count equivalent granted to entries
	// flagged Popular in the catalog, so a fresh deployment with an empty
	// archive still shows a sensible rail.
	popularSeedBonus = 3

	defaultWindow      = 24 * time.Hour
	defaultRecentLimit = 500
)

// Item is one ranked recommendation.
type Item struct {
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Score   int    `json:"score"`
}

// SetItem is one component of a resolved set menu.
type SetItem struct {
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
}

// SetMenu is a curated bundle with its discount applied.
type SetMenu struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Items           []SetItem `json:"items"`
	OriginalPrice   int       `json:"original_price"`
	DiscountPercent int       `json:"discount_percent"`
	Price           int       `json:"price"`
}

// Recommender ranks catalog entries and resolves configured set menus.
// It is read-only over the order archive and safe for concurrent use.
type Recommender struct {
	store       orderstore.Store
	sets        []config.SetMenuConfig
	window      time.Duration
	recentLimit int
}

// Option configures a [Recommender].
type Option func(*Recommender)

// WithWindow sets how far back archived orders count towards popularity.
// The default is 24 hours.
func WithWindow(d time.Duration) Option {
	return func(r *Recommender) {
		if d > 0 {
			r.window = d
		}
	}
}

// New creates a Recommender over the given order archive and configured
// set menus.
func New(store orderstore.Store, sets []config.SetMenuConfig, opts ...Option) *Recommender {
	r := &Recommender{
		store:       store,
		sets:        sets,
		window:      defaultWindow,
		recentLimit: defaultRecentLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Popular returns up to limit available entries ranked by recent order
// volume plus the catalog's popularity seed. Ties keep catalog order.
func (r *Recommender) Popular(ctx context.Context, cat *menu.Catalog, lang menu.Lang, limit int) ([]Item, error) {
	counts, err := r.orderCounts(ctx, "")
	if err != nil {
		return nil, err
	}
	return r.rank(cat, lang, limit, counts), nil
}

// Frequent returns up to limit available entries the given kiosk has
// ordered most often within the window. It personalises the rail for
// regulars at a table-side kiosk; an empty history yields an empty slice.
func (r *Recommender) Frequent(ctx context.Context, kioskID string, cat *menu.Catalog, lang menu.Lang, limit int) ([]Item, error) {
	counts, err := r.orderCounts(ctx, kioskID)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return []Item{}, nil
	}

	items := r.rank(cat, lang, limit, counts)
	// Keep only entries this kiosk actually ordered; the seed alone is
	// not personal history.
	frequent := items[:0]
	for _, it := range items {
		if counts[it.EntryID] > 0 {
			frequent = append(frequent, it)
		}
	}
	return frequent, nil
}

// Sets resolves the configured set menus against the current catalog.
// Sets referencing missing or unavailable items are skipped so a menu
// edit never surfaces an unorderable bundle.
func (r *Recommender) Sets(cat *menu.Catalog, lang menu.Lang) []SetMenu {
	sets := make([]SetMenu, 0, len(r.sets))

setLoop:
	for _, sc := range r.sets {
		set := SetMenu{
			ID:              sc.ID,
			Title:           sc.Title[lang],
			Items:           make([]SetItem, 0, len(sc.ItemIDs)),
			DiscountPercent: sc.DiscountPercent,
		}
		if set.Title == "" {
			set.Title = sc.Title[menu.Korean]
		}
		for _, id := range sc.ItemIDs {
			e := cat.ByID(id)
			if e == nil || !e.Available {
				continue setLoop
			}
			set.Items = append(set.Items, SetItem{
				EntryID: e.ID,
				Name:    e.LocalName(lang),
				Price:   e.Price,
			})
			set.OriginalPrice += e.Price
		}
		set.Price = set.OriginalPrice * (100 - sc.DiscountPercent) / 100
		sets = append(sets, set)
	}
	return sets
}

// orderCounts tallies ordered quantities per entry ID from the recent
// archive, optionally filtered to one kiosk.
func (r *Recommender) orderCounts(ctx context.Context, kioskID string) (map[string]int, error) {
	records, err := r.store.Recent(ctx, r.window, r.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recommend: load recent orders: %w", err)
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if kioskID != "" && rec.KioskID != kioskID {
			continue
		}
		for _, line := range rec.Lines {
			counts[line.EntryID] += line.Quantity
		}
	}
	return counts, nil
}

// rank scores every available catalog entry and returns the top entries.
func (r *Recommender) rank(cat *menu.Catalog, lang menu.Lang, limit int, counts map[string]int) []Item {
	entries := cat.Entries()
	items := make([]Item, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if !e.Available {
			continue
		}
		score := counts[e.ID]
		if e.Popular {
			score += popularSeedBonus
		}
		items = append(items, Item{
			EntryID: e.ID,
			Name:    e.LocalName(lang),
			Price:   e.Price,
			Score:   score,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
