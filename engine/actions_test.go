package engine

import (
	"errors"
	"testing"
)

// startedFixture builds a started game with a fixed continuum and hands:
//
//	continuum: 0 key/red, 1 key/green, 2 key/purple, 3 key/blue,
//	           4 skull/red, 5 skull/green, 6 skull/purple, 7 skull/blue,
//	           8 ring/red (codex color red)
//	player 0 (bottom, position 4): ring/green, ring/purple, ring/blue
//	player 1 (top, position -1):   feather/red, feather/green, feather/purple
//	codex card: feather/blue
func startedFixture() State {
	g := NewGame(42)
	g.Continuum = [ContinuumSize]Card{
		NewCard(SuitKey, ColorRed),
		NewCard(SuitKey, ColorGreen),
		NewCard(SuitKey, ColorPurple),
		NewCard(SuitKey, ColorBlue),
		NewCard(SuitSkull, ColorRed),
		NewCard(SuitSkull, ColorGreen),
		NewCard(SuitSkull, ColorPurple),
		NewCard(SuitSkull, ColorBlue),
		NewCard(SuitRing, ColorRed),
	}
	g.Players[0] = PlayerState{
		Hand:        [HandSize]Card{NewCard(SuitRing, ColorGreen), NewCard(SuitRing, ColorPurple), NewCard(SuitRing, ColorBlue)},
		HandLen:     HandSize,
		Position:    4,
		Orientation: OrientationBottom,
	}
	g.Players[1] = PlayerState{
		Hand:        [HandSize]Card{NewCard(SuitFeather, ColorRed), NewCard(SuitFeather, ColorGreen), NewCard(SuitFeather, ColorPurple)},
		HandLen:     HandSize,
		Position:    -1,
		Orientation: OrientationTop,
	}
	g.Codex = NewCard(SuitFeather, ColorBlue)
	g.CodexColor = ColorRed
	g.Status = StatusStarted
	g.Phase = PhaseMovement
	g.ActivePlayer = 0
	return g
}

// setupFixture is startedFixture before any marker has been deployed.
func setupFixture() State {
	g := startedFixture()
	g.Status = StatusSetup
	g.Phase = PhaseDeployment
	g.Players[0].Position = -1
	g.Players[1].Position = -1
	return g
}

func handOf(g *State, player uint8) map[Card]bool {
	hand := make(map[Card]bool)
	for _, c := range g.Hand(player) {
		hand[c] = true
	}
	return hand
}

// --- Deploy ---

func TestDeploySetsPosition(t *testing.T) {
	g := setupFixture()
	err := g.Apply(0, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 4})
	if err != nil {
		t.Fatalf("Apply(deploy) error: %v", err)
	}
	if g.Players[0].Position != 4 {
		t.Errorf("position = %d, want 4", g.Players[0].Position)
	}
	if g.Status != StatusSetup {
		t.Errorf("Status = %v after first deploy, want setup", g.Status)
	}
	if g.ActivePlayer != 1 {
		t.Errorf("ActivePlayer = %d, want 1", g.ActivePlayer)
	}
}

func TestDeployBothPlayersStartsGame(t *testing.T) {
	g := setupFixture()
	if err := g.Apply(0, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 4}); err != nil {
		t.Fatal(err)
	}
	if err := g.Apply(1, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 0}); err != nil {
		t.Fatal(err)
	}
	if g.Status != StatusStarted {
		t.Errorf("Status = %v, want started", g.Status)
	}
	if g.Phase != PhaseMovement {
		t.Errorf("Phase = %v, want movement", g.Phase)
	}
}

func TestDeployNonCodexColorRejected(t *testing.T) {
	g := setupFixture()
	err := g.Apply(0, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 1}) // key/green
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("error = %v, want ErrIllegalAction", err)
	}
	if g.Players[0].Position != -1 {
		t.Error("rejected deploy must not mutate position")
	}
}

func TestDeployOccupiedIndexRejected(t *testing.T) {
	g := setupFixture()
	if err := g.Apply(0, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 8}); err != nil {
		t.Fatal(err)
	}
	err := g.Apply(1, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 8})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("error = %v, want ErrIllegalAction", err)
	}
}

func TestDeployOutsideSetupRejected(t *testing.T) {
	g := startedFixture()
	err := g.Apply(0, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: 0})
	if !errors.Is(err, ErrWrongStatus) {
		t.Errorf("error = %v, want ErrWrongStatus", err)
	}
}

// --- Move ---

func TestMoveSwapsHandAndContinuum(t *testing.T) {
	g := startedFixture()
	src := NewCard(SuitRing, ColorPurple)
	picked := g.Continuum[2] // key/purple

	err := g.Apply(0, Action{Type: ActionMove, SourceCard: src, TargetIndex: 2})
	if err != nil {
		t.Fatalf("Apply(move) error: %v", err)
	}
	if g.Continuum[2] != src {
		t.Errorf("continuum[2] = %v, want the played hand card", g.Continuum[2])
	}
	if !handOf(&g, 0)[picked] {
		t.Error("former continuum card should be in the hand")
	}
	if handOf(&g, 0)[src] {
		t.Error("played card should have left the hand")
	}
	if g.Players[0].Position != 2 {
		t.Errorf("position = %d, want 2", g.Players[0].Position)
	}
	if g.ActivePlayer != 1 {
		t.Errorf("ActivePlayer = %d, want 1 after the move", g.ActivePlayer)
	}
	if g.Phase != PhaseMovement {
		t.Errorf("Phase = %v, want movement", g.Phase)
	}
}

func TestMoveNotYourTurnRejected(t *testing.T) {
	g := startedFixture()
	err := g.Apply(1, Action{Type: ActionMove, SourceCard: NewCard(SuitFeather, ColorGreen), TargetIndex: 3})
	if !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("error = %v, want ErrNotYourTurn", err)
	}
}

func TestMoveSourceNotInHandRejected(t *testing.T) {
	g := startedFixture()
	err := g.Apply(0, Action{Type: ActionMove, SourceCard: NewCard(SuitFeather, ColorRed), TargetIndex: 2})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("error = %v, want ErrIllegalAction", err)
	}
}

func TestMoveUnreachableTargetRejected(t *testing.T) {
	g := startedFixture()
	// ring/blue matches nothing at index 0 (key/red) and 0 is not a value jump.
	before := g.Save()
	err := g.Apply(0, Action{Type: ActionMove, SourceCard: NewCard(SuitRing, ColorBlue), TargetIndex: 0})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("error = %v, want ErrIllegalAction", err)
	}
	if State(before) != g {
		t.Error("rejected move must not mutate state")
	}
}

func TestMoveParadoxScoresAndAdvancesCodex(t *testing.T) {
	g := startedFixture()
	// Plant ring/blue in the past and hold key/blue: after the swap the hand
	// is three rings, none codex-colored.
	g.Continuum[3] = NewCard(SuitRing, ColorBlue)
	g.Players[0].Hand[2] = NewCard(SuitKey, ColorBlue)

	err := g.Apply(0, Action{Type: ActionMove, SourceCard: NewCard(SuitKey, ColorBlue), TargetIndex: 3})
	if err != nil {
		t.Fatalf("Apply(move) error: %v", err)
	}
	if g.Players[0].Points != 1 {
		t.Errorf("points = %d, want 1", g.Players[0].Points)
	}
	if g.CodexColor != ColorBlue {
		t.Errorf("CodexColor = %s, want blue (predecessor of red)", ColorName(g.CodexColor))
	}
	if g.Status != StatusStarted {
		t.Errorf("Status = %v, want started", g.Status)
	}
}

// --- Replace ---

func TestReplaceFutureWindow(t *testing.T) {
	g := startedFixture()
	oldHand := handOf(&g, 0)
	oldWindow := [HandSize]Card{g.Continuum[5], g.Continuum[6], g.Continuum[7]}

	err := g.Apply(0, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 5})
	if err != nil {
		t.Fatalf("Apply(replace) error: %v", err)
	}
	newHand := handOf(&g, 0)
	for _, c := range oldWindow {
		if !newHand[c] {
			t.Errorf("card %v from the future window should now be in hand", c)
		}
	}
	for i := 5; i <= 7; i++ {
		if !oldHand[g.Continuum[i]] {
			t.Errorf("continuum[%d] = %v should be a former hand card", i, g.Continuum[i])
		}
	}
	if g.Players[0].Position != 4 {
		t.Error("replace must not move the marker")
	}
	if g.Phase != PhaseReplacement {
		t.Errorf("Phase = %v, want replacement", g.Phase)
	}
	if g.ActivePlayer != 1 {
		t.Errorf("ActivePlayer = %d, want 1", g.ActivePlayer)
	}
}

func TestReplacePastWindow(t *testing.T) {
	g := startedFixture()
	oldHand := handOf(&g, 0)
	oldWindow := [HandSize]Card{g.Continuum[1], g.Continuum[2], g.Continuum[3]}

	err := g.Apply(0, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 1})
	if err != nil {
		t.Fatalf("Apply(replace) error: %v", err)
	}
	newHand := handOf(&g, 0)
	for _, c := range oldWindow {
		if !newHand[c] {
			t.Errorf("card %v from the past window should now be in hand", c)
		}
	}
	for i := 1; i <= 3; i++ {
		if !oldHand[g.Continuum[i]] {
			t.Errorf("continuum[%d] = %v should be a former hand card", i, g.Continuum[i])
		}
	}
}

func TestReplacePastWindowTopOrientation(t *testing.T) {
	g := startedFixture()
	g.Players[1].Position = 2 // oriented position 6 for a top player
	g.ActivePlayer = 1
	oldHand := handOf(&g, 1)
	// Oriented past window [3,4,5] maps to canonical indices 5, 4, 3.
	oldWindow := [HandSize]Card{g.Continuum[3], g.Continuum[4], g.Continuum[5]}

	err := g.Apply(1, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 5})
	if err != nil {
		t.Fatalf("Apply(replace) error: %v", err)
	}
	newHand := handOf(&g, 1)
	for _, c := range oldWindow {
		if !newHand[c] {
			t.Errorf("card %v from the oriented past window should now be in hand", c)
		}
	}
	for i := 3; i <= 5; i++ {
		if !oldHand[g.Continuum[i]] {
			t.Errorf("continuum[%d] = %v should be a former hand card", i, g.Continuum[i])
		}
	}
}

// TestReplaceNonCanonicalTargetRejected verifies Apply accepts only the
// two targets LegalActions emits, not any index on the chosen side.
func TestReplaceNonCanonicalTargetRejected(t *testing.T) {
	g := startedFixture()
	before := g.Save()
	// Past side is available, but index 0 is not the emitted target (1).
	err := g.Apply(0, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 0})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("past error = %v, want ErrIllegalAction", err)
	}
	// Future side likewise: 6 is beyond the emitted target (5).
	err = g.Apply(0, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 6})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("future error = %v, want ErrIllegalAction", err)
	}
	if State(before) != g {
		t.Error("rejected replace must not mutate state")
	}
}

func TestReplaceTooCloseToEdgeRejected(t *testing.T) {
	g := startedFixture()
	g.Players[0].Position = 1 // only one past card
	err := g.Apply(0, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: 0})
	if !errors.Is(err, ErrIllegalAction) {
		t.Errorf("error = %v, want ErrIllegalAction", err)
	}
}

// --- Victory ---

func TestVictoryEndsGame(t *testing.T) {
	g := startedFixture()
	g.Players[0].Points = WinningPoints - 1
	g.Continuum[3] = NewCard(SuitRing, ColorBlue)
	g.Players[0].Hand[2] = NewCard(SuitKey, ColorBlue)

	err := g.Apply(0, Action{Type: ActionMove, SourceCard: NewCard(SuitKey, ColorBlue), TargetIndex: 3})
	if err != nil {
		t.Fatalf("Apply(move) error: %v", err)
	}
	if g.Status != StatusEnded {
		t.Fatalf("Status = %v, want ended", g.Status)
	}
	if g.Winner != 0 {
		t.Errorf("Winner = %d, want 0", g.Winner)
	}

	err = g.Apply(1, Action{Type: ActionMove, SourceCard: NewCard(SuitFeather, ColorGreen), TargetIndex: 3})
	if !errors.Is(err, ErrGameEnded) {
		t.Errorf("post-victory action error = %v, want ErrGameEnded", err)
	}
}
