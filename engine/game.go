package engine

import "errors"

const (
	NumPlayers    = 2
	ContinuumSize = 9
	HandSize      = 3
	DeckSize      = 16
	WinningPoints = 5
)

// Validation errors returned by Apply and Deal. The service layer maps
// these onto its request error kinds.
var (
	ErrGameEnded     = errors.New("game has ended")
	ErrNotYourTurn   = errors.New("not the active player")
	ErrWrongStatus   = errors.New("action not valid in current game status")
	ErrIllegalAction = errors.New("illegal action")
)

// PlayerState holds one player's hand, marker position and score.
type PlayerState struct {
	Hand        [HandSize]Card
	HandLen     uint8
	Position    int8 // continuum index of the marker; -1 until deployed
	Orientation uint8
	Points      uint8
}

// State holds the complete, self-contained state of a Continuum game.
// It is a flat value type: plain struct copies give snapshot/undo for free.
type State struct {
	Continuum    [ContinuumSize]Card
	Codex        Card // the single unplaced card
	Players      [NumPlayers]PlayerState
	Status       Status
	Phase        Phase
	CodexColor   uint8
	ActivePlayer uint8
	Winner       int8 // player index; -1 while undecided
	RNG          uint64
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (g *State) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *State) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame initializes a created game with the given seed.
// No cards are placed until Deal.
func NewGame(seed uint64) State {
	var g State
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Status = StatusCreated
	g.Phase = PhaseDeployment
	g.Winner = -1
	for p := range g.Players {
		g.Players[p].Position = -1
	}
	return g
}

// Deal shuffles the 16-card catalog and distributes it: 9 cards to the
// continuum (indices 0..8), 3 to each hand, and one unplaced codex card.
// The starting codex color is the color of the card dealt to index 8.
// Orientations and the starting player are drawn from the game RNG.
func (g *State) Deal() error {
	if g.Status != StatusCreated {
		return ErrWrongStatus
	}

	deck := Catalog()

	// Reshuffle until the continuum slots hold at least one codex-colored
	// deploy target per player, or setup could deadlock before started.
	for {
		// Fisher-Yates shuffle.
		for i := len(deck) - 1; i > 0; i-- {
			j := int(g.randN(uint64(i + 1)))
			deck[i], deck[j] = deck[j], deck[i]
		}
		codex := deck[ContinuumSize-1].Color()
		targets := 0
		for i := 0; i < ContinuumSize; i++ {
			if deck[i].Color() == codex {
				targets++
			}
		}
		if targets >= NumPlayers {
			break
		}
	}

	for i := 0; i < ContinuumSize; i++ {
		g.Continuum[i] = deck[i]
	}
	g.CodexColor = g.Continuum[ContinuumSize-1].Color()

	// Deal hands alternately, one card per player per round.
	next := ContinuumSize
	for c := uint8(0); c < HandSize; c++ {
		for p := 0; p < NumPlayers; p++ {
			g.Players[p].Hand[c] = deck[next]
			g.Players[p].HandLen++
			next++
		}
	}
	g.Codex = deck[next]

	first := uint8(g.randN(2))
	g.Players[first].Orientation = OrientationBottom
	g.Players[1-first].Orientation = OrientationTop

	g.ActivePlayer = uint8(g.randN(2))
	g.Status = StatusSetup
	g.Phase = PhaseDeployment
	return nil
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsEnded returns true when the game is over.
func (g *State) IsEnded() bool { return g.Status == StatusEnded }

// Opponent returns the player index of the opponent.
func (g *State) Opponent(player uint8) uint8 { return 1 - player }

// Hand returns a copy of the player's current hand.
func (g *State) Hand(player uint8) []Card {
	p := &g.Players[player]
	hand := make([]Card, p.HandLen)
	copy(hand, p.Hand[:p.HandLen])
	return hand
}

// occupied reports whether either player's marker sits on continuum index idx.
func (g *State) occupied(idx int8) bool {
	for p := range g.Players {
		if g.Players[p].Position == idx {
			return true
		}
	}
	return false
}

// orient maps a canonical continuum index into the player's traversal
// coordinates. Top players traverse the continuum in reverse; the mapping
// is its own inverse, so it also maps oriented indices back to canonical.
// The canonical order held in Continuum is never mutated.
func (g *State) orient(player uint8, idx int8) int8 {
	if g.Players[player].Orientation == OrientationTop {
		return ContinuumSize - 1 - idx
	}
	return idx
}

// orientedPosition returns the player's marker position in traversal
// coordinates, or -1 if not deployed.
func (g *State) orientedPosition(player uint8) int8 {
	pos := g.Players[player].Position
	if pos < 0 {
		return -1
	}
	return g.orient(player, pos)
}

// ---------------------------------------------------------------------------
// Snapshot Undo (Save / Restore)
// ---------------------------------------------------------------------------

// Snapshot is a complete value-copy of State for undo support.
type Snapshot State

// Save returns a snapshot of the current game state.
func (g *State) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *State) Restore(s Snapshot) { *g = State(s) }
