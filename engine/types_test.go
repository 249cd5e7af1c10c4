package engine

import "testing"

// TestCatalogGeneration verifies the 16-type catalog: unique cards, the
// value formula, and 4 types sharing each value, suit and color.
func TestCatalogGeneration(t *testing.T) {
	deck := Catalog()

	seen := make(map[Card]bool)
	for i, c := range deck {
		if c == EmptyCard {
			t.Fatalf("deck[%d] is EmptyCard", i)
		}
		if seen[c] {
			t.Errorf("duplicate card at index %d: suit=%d color=%d", i, c.Suit(), c.Color())
		}
		seen[c] = true
	}
	if len(seen) != DeckSize {
		t.Fatalf("got %d unique cards, want %d", len(seen), DeckSize)
	}

	var perValue [5]int
	var perSuit, perColor [4]int
	for _, c := range deck {
		want := (c.Color()+c.Suit())%4 + 1
		if c.Value() != want {
			t.Errorf("card suit=%d color=%d: Value() = %d, want %d", c.Suit(), c.Color(), c.Value(), want)
		}
		perValue[c.Value()]++
		perSuit[c.Suit()]++
		perColor[c.Color()]++
	}
	for v := 1; v <= 4; v++ {
		if perValue[v] != 4 {
			t.Errorf("value %d: %d types, want 4", v, perValue[v])
		}
	}
	for i := 0; i < 4; i++ {
		if perSuit[i] != 4 {
			t.Errorf("suit %d: %d types, want 4", i, perSuit[i])
		}
		if perColor[i] != 4 {
			t.Errorf("color %d: %d types, want 4", i, perColor[i])
		}
	}
}

// TestCatalogSortedByValue verifies the deterministic ascending value order.
func TestCatalogSortedByValue(t *testing.T) {
	deck := Catalog()
	for i := 1; i < len(deck); i++ {
		if deck[i].Value() < deck[i-1].Value() {
			t.Fatalf("deck[%d].Value() = %d < deck[%d].Value() = %d", i, deck[i].Value(), i-1, deck[i-1].Value())
		}
	}
}

func TestCardPacking(t *testing.T) {
	c := NewCard(SuitRing, ColorPurple)
	if c.Suit() != SuitRing {
		t.Errorf("Suit() = %d, want %d", c.Suit(), SuitRing)
	}
	if c.Color() != ColorPurple {
		t.Errorf("Color() = %d, want %d", c.Color(), ColorPurple)
	}
	if c.SuitName() != "ring" || c.ColorName() != "purple" {
		t.Errorf("names = %s/%s, want ring/purple", c.SuitName(), c.ColorName())
	}
}

func TestCardMatches(t *testing.T) {
	a := NewCard(SuitKey, ColorRed)
	if !a.Matches(NewCard(SuitKey, ColorBlue)) {
		t.Error("same suit should match")
	}
	if !a.Matches(NewCard(SuitSkull, ColorRed)) {
		t.Error("same color should match")
	}
	if a.Matches(NewCard(SuitSkull, ColorBlue)) {
		t.Error("different suit and color should not match")
	}
}

// TestPrevColor verifies the codex cycle decrements through
// [red, green, purple, blue], wrapping from red to blue.
func TestPrevColor(t *testing.T) {
	cases := []struct{ in, want uint8 }{
		{ColorRed, ColorBlue},
		{ColorGreen, ColorRed},
		{ColorPurple, ColorGreen},
		{ColorBlue, ColorPurple},
	}
	for _, tc := range cases {
		if got := PrevColor(tc.in); got != tc.want {
			t.Errorf("PrevColor(%s) = %s, want %s", ColorName(tc.in), ColorName(got), ColorName(tc.want))
		}
	}
}
