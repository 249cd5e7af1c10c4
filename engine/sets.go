package engine

// HasSet reports whether the given hand contains a paradox: three cards
// sharing the same color, the same suit, or the same value. Cards whose
// color equals the codex color contribute to no tally and can never be
// part of a set.
func HasSet(cards []Card, codexColor uint8) bool {
	var byColor [NumColors]uint8
	var bySuit [NumSuits]uint8
	var byValue [5]uint8 // values 1..4

	for _, c := range cards {
		color := c.Color()
		if color == codexColor {
			continue
		}
		byColor[color]++
		bySuit[c.Suit()]++
		byValue[c.Value()]++
		// >= 3 so a fourth matching card can't mask an already-true result.
		if byColor[color] >= 3 || bySuit[c.Suit()] >= 3 || byValue[c.Value()] >= 3 {
			return true
		}
	}
	return false
}
