package taxlot

import (
	"testing"
	"time"
)

func testBook() *lotBook {
	b := &lotBook{}
	b.add(&Lot{ID: "a", Acquired: NewDate(2023, time.January, 1), Open: Q(1), UnitBasis: USD(100)})
	b.add(&Lot{ID: "b", Acquired: NewDate(2023, time.February, 1), Open: Q(2), UnitBasis: USD(300)})
	b.add(&Lot{ID: "c", Acquired: NewDate(2023, time.March, 1), Open: Q(1), UnitBasis: USD(200)})
	return b
}

func TestConsumeFIFO(t *testing.T) {
	b := testBook()
	parts, ok := b.consume(Q(2), FIFO)
	if !ok {
		t.Fatal("consume failed")
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0].lot.ID != "a" || !parts[0].quantity.Equal(Q(1)) {
		t.Errorf("first slice = %s x%s, want lot a x1", parts[0].lot.ID, parts[0].quantity)
	}
	if parts[1].lot.ID != "b" || !parts[1].quantity.Equal(Q(1)) {
		t.Errorf("second slice = %s x%s, want lot b x1", parts[1].lot.ID, parts[1].quantity)
	}
	// Lot b is partially consumed, one unit remains open.
	if !b.totalOpen().Equal(Q(2)) {
		t.Errorf("remaining open = %s, want 2", b.totalOpen())
	}
}

func TestConsumeHIFO(t *testing.T) {
	b := testBook()
	parts, ok := b.consume(Q(3), HIFO)
	if !ok {
		t.Fatal("consume failed")
	}
	// Highest basis first: b (300) fully, then c (200).
	if parts[0].lot.ID != "b" || !parts[0].quantity.Equal(Q(2)) {
		t.Errorf("first slice = %s x%s, want lot b x2", parts[0].lot.ID, parts[0].quantity)
	}
	if parts[1].lot.ID != "c" || !parts[1].quantity.Equal(Q(1)) {
		t.Errorf("second slice = %s x%s, want lot c x1", parts[1].lot.ID, parts[1].quantity)
	}
	if len(b.open) != 1 || b.open[0].ID != "a" {
		t.Errorf("expected only lot a to remain open")
	}
}

func TestHIFOTieBreaksByAge(t *testing.T) {
	b := &lotBook{}
	b.add(&Lot{ID: "newer", Acquired: NewDate(2023, time.June, 1), Open: Q(1), UnitBasis: USD(100)})
	b.add(&Lot{ID: "older", Acquired: NewDate(2023, time.January, 1), Open: Q(1), UnitBasis: USD(100)})
	parts, _ := b.consume(Q(1), HIFO)
	if parts[0].lot.ID != "older" {
		t.Errorf("equal basis must consume the older lot first, got %s", parts[0].lot.ID)
	}
}

func TestConsumeInsufficient(t *testing.T) {
	b := testBook()
	if _, ok := b.consume(Q(5), FIFO); ok {
		t.Fatal("consume must fail when the book holds too little")
	}
	// Nothing may have been taken.
	if !b.totalOpen().Equal(Q(4)) {
		t.Errorf("failed consume mutated the book, open = %s", b.totalOpen())
	}
}

func TestRemoveKeepsBasisAndDate(t *testing.T) {
	b := testBook()
	parts, ok := b.remove(Q(1))
	if !ok {
		t.Fatal("remove failed")
	}
	if !parts[0].unitBasis.Equal(USD(100)) {
		t.Errorf("unit basis = %s, want the original 100", parts[0].unitBasis)
	}
	if parts[0].acquired != NewDate(2023, time.January, 1) {
		t.Errorf("acquired = %s, want the original date", parts[0].acquired)
	}
}
