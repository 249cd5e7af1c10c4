// Package engine implements the Continuum card game rules.
//
// The engine is a pure, self-contained state machine: it performs no I/O,
// holds no references to storage or transport, and derives all randomness
// from a caller-injected seed so that every deal, replace pairing and
// combat tie-break can be replayed exactly.
package engine

// Color constants — packed into lower 4 bits of Card.
// The order is the fixed codex cycle: red, green, purple, blue.
const (
	ColorRed    uint8 = 0
	ColorGreen  uint8 = 1
	ColorPurple uint8 = 2
	ColorBlue   uint8 = 3

	NumColors uint8 = 4
)

// Suit constants — packed into upper 4 bits of Card.
const (
	SuitKey     uint8 = 0
	SuitSkull   uint8 = 1
	SuitRing    uint8 = 2
	SuitFeather uint8 = 3

	NumSuits uint8 = 4
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = color.
// A Continuum deck holds each (suit, color) combination exactly once, so
// the packed byte doubles as the card's identity within a game.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and color.
func NewCard(suit, color uint8) Card {
	return Card((suit << 4) | (color & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Color returns the color bits (lower 4).
func (c Card) Color() uint8 { return uint8(c) & 0x0F }

// Value returns the cyclic card value in 1..4:
// ((colorIndex + suitIndex) mod 4) + 1.
func (c Card) Value() uint8 {
	return (c.Color()+c.Suit())%4 + 1
}

// Matches reports whether two cards share a suit or a color.
func (c Card) Matches(o Card) bool {
	return c.Suit() == o.Suit() || c.Color() == o.Color()
}

// SuitName returns the lowercase suit name.
func (c Card) SuitName() string { return suitNames[c.Suit()&0x03] }

// ColorName returns the lowercase color name.
func (c Card) ColorName() string { return ColorName(c.Color()) }

var suitNames = [NumSuits]string{"key", "skull", "ring", "feather"}
var colorNames = [NumColors]string{"red", "green", "purple", "blue"}

// ColorName returns the lowercase name of a color constant.
func ColorName(color uint8) string { return colorNames[color&0x03] }

// PrevColor returns the cyclic predecessor in the codex cycle
// [red, green, purple, blue], wrapping from red to blue.
func PrevColor(color uint8) uint8 {
	return (color + NumColors - 1) % NumColors
}

// Catalog returns the fixed 16-type deck, sorted ascending by value.
// Within each value the cards are ordered by color index.
func Catalog() [DeckSize]Card {
	var deck [DeckSize]Card
	idx := 0
	for value := uint8(1); value <= 4; value++ {
		for color := uint8(0); color < NumColors; color++ {
			// value = ((color + suit) mod 4) + 1  ⇒  suit = (value-1-color) mod 4
			suit := (value - 1 + NumSuits - color) % NumSuits
			deck[idx] = NewCard(suit, color)
			idx++
		}
	}
	return deck
}

// Orientation constants. A bottom player traverses the continuum in
// canonical order; a top player traverses it in reverse.
const (
	OrientationBottom uint8 = 0
	OrientationTop    uint8 = 1
)

// OrientationName returns "bottom" or "top".
func OrientationName(o uint8) string {
	if o == OrientationTop {
		return "top"
	}
	return "bottom"
}

// Status is the primary lifecycle axis of a game. Linear, no cycles back.
type Status uint8

const (
	StatusCreated Status = iota
	StatusSetup
	StatusStarted
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusSetup:
		return "setup"
	case StatusStarted:
		return "started"
	case StatusEnded:
		return "ended"
	}
	return "unknown"
}

// Phase is the secondary axis, driven by the last applied action type.
type Phase uint8

const (
	PhaseDeployment Phase = iota
	PhaseMovement
	PhaseCombat
	PhaseReplacement
)

func (p Phase) String() string {
	switch p {
	case PhaseDeployment:
		return "deployment"
	case PhaseMovement:
		return "movement"
	case PhaseCombat:
		return "combat"
	case PhaseReplacement:
		return "replacement"
	}
	return "unknown"
}

// ActionType tags the three legal player actions.
type ActionType uint8

const (
	ActionDeploy ActionType = iota
	ActionMove
	ActionReplace
)

func (t ActionType) String() string {
	switch t {
	case ActionDeploy:
		return "deploy"
	case ActionMove:
		return "move"
	case ActionReplace:
		return "replace"
	}
	return "unknown"
}

// Action is the tagged union dispatched by Apply. SourceCard is only
// meaningful for Move; Deploy and Replace carry a target index alone.
type Action struct {
	Type        ActionType
	SourceCard  Card
	TargetIndex int8
}
