package order_test

import (
	"testing"

	"github.com/hanwoori/sorikiosk/internal/menu"
	"github.com/hanwoori/sorikiosk/internal/order"
)

func entry(t *testing.T, c *menu.Catalog, id string) *menu.Entry {
	t.Helper()
	e := c.ByID(id)
	if e == nil {
		t.Fatalf("entry %q missing from catalog", id)
	}
	return e
}

func TestMerge_Accumulates(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	rice := entry(t, cat, "rice")

	lines := order.Merge(nil, []order.Candidate{{Entry: rice, Quantity: 1}})
	lines = order.Merge(lines, []order.Candidate{{Entry: rice, Quantity: 2}})

	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (quantities merge by ID)", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", lines[0].Quantity)
	}
}

func TestMerge_PreservesOrderAppendsNew(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	lines := order.Merge(nil, []order.Candidate{
		{Entry: entry(t, cat, "bulgogi"), Quantity: 1},
		{Entry: entry(t, cat, "rice"), Quantity: 1},
	})
	lines = order.Merge(lines, []order.Candidate{
		{Entry: entry(t, cat, "rice"), Quantity: 1},
		{Entry: entry(t, cat, "bibimbap"), Quantity: 1},
	})

	wantIDs := []string{"bulgogi", "rice", "bibimbap"}
	if len(lines) != len(wantIDs) {
		t.Fatalf("got %d lines, want %d", len(lines), len(wantIDs))
	}
	for i, id := range wantIDs {
		if lines[i].Entry.ID != id {
			t.Errorf("lines[%d] = %s, want %s", i, lines[i].Entry.ID, id)
		}
	}
	if lines[1].Quantity != 2 {
		t.Errorf("rice quantity = %d, want 2", lines[1].Quantity)
	}
}

func TestMerge_SkipsUnresolvedCandidates(t *testing.T) {
	t.Parallel()

	lines := order.Merge(nil, []order.Candidate{{Unresolved: "tteokbokki", Quantity: 2}})
	if len(lines) != 0 {
		t.Fatalf("unresolved candidates must not merge, got %d lines", len(lines))
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	current := []order.Line{{Entry: entry(t, cat, "rice"), Quantity: 1}}
	_ = order.Merge(current, []order.Candidate{{Entry: entry(t, cat, "rice"), Quantity: 5}})

	if current[0].Quantity != 1 {
		t.Errorf("input order mutated: quantity = %d, want 1", current[0].Quantity)
	}
}

func TestRemoveLine(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	lines := order.Merge(nil, []order.Candidate{
		{Entry: entry(t, cat, "bulgogi"), Quantity: 1},
		{Entry: entry(t, cat, "rice"), Quantity: 2},
	})

	got := order.RemoveLine(lines, "bulgogi")
	if len(got) != 1 || got[0].Entry.ID != "rice" {
		t.Fatalf("RemoveLine result = %+v, want just rice", got)
	}

	// Removing an absent ID is a no-op, not an error.
	got = order.RemoveLine(got, "nope")
	if len(got) != 1 {
		t.Errorf("removing absent ID changed the order: %+v", got)
	}
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	lines := order.Merge(nil, []order.Candidate{{Entry: entry(t, cat, "rice"), Quantity: 2}})

	got := order.SetQuantity(lines, "rice", 5)
	if got[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5 (replace, not add)", got[0].Quantity)
	}
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	t.Parallel()

	cat := testCatalog(t)
	lines := order.Merge(nil, []order.Candidate{
		{Entry: entry(t, cat, "rice"), Quantity: 2},
		{Entry: entry(t, cat, "bulgogi"), Quantity: 1},
	})

	viaSet := order.SetQuantity(lines, "rice", 0)
	viaRemove := order.RemoveLine(lines, "rice")

	if len(viaSet) != len(viaRemove) {
		t.Fatalf("SetQuantity(0) and RemoveLine differ: %+v vs %+v", viaSet, viaRemove)
	}
	for i := range viaSet {
		if viaSet[i].Entry.ID != viaRemove[i].Entry.ID || viaSet[i].Quantity != viaRemove[i].Quantity {
			t.Errorf("line %d differs: %+v vs %+v", i, viaSet[i], viaRemove[i])
		}
	}

	if got := order.SetQuantity(lines, "bulgogi", -1); len(got) != 1 {
		t.Errorf("negative quantity should remove the line, got %+v", got)
	}
}

func TestTotalPrice(t *testing.T) {
	t.Parallel()

	if got := order.TotalPrice(nil); got != 0 {
		t.Errorf("TotalPrice(empty) = %d, want 0", got)
	}

	cat := testCatalog(t)
	lines := order.Merge(nil, []order.Candidate{
		{Entry: entry(t, cat, "bibimbap"), Quantity: 2},
		{Entry: entry(t, cat, "rice"), Quantity: 3},
	})

	want := 0
	for _, l := range lines {
		want += l.Entry.Price * l.Quantity
	}
	if got := order.TotalPrice(lines); got != want {
		t.Errorf("TotalPrice = %d, want %d", got, want)
	}
}
