package engine

import "testing"

func TestCombatHigherTotalWins(t *testing.T) {
	// Seeds vary the shuffle order; totals must decide regardless.
	for seed := uint64(1); seed <= 10; seed++ {
		g := startedFixture()
		g.RNG = seed
		g.Players[0].Position = 4
		g.Players[1].Position = 4
		g.Players[1].Points = 2

		// Player 0: ring/green(4) + ring/purple(1) + ring/blue(2) = 7.
		// Player 1: feather/red is codex-colored; feather/green(1) + feather/purple(2) = 3.
		res := g.resolveCombat(0, 1)
		if res.AttackerTotal != 7 {
			t.Fatalf("seed %d: attacker total = %d, want 7", seed, res.AttackerTotal)
		}
		if res.DefenderTotal != 3 {
			t.Fatalf("seed %d: defender total = %d, want 3", seed, res.DefenderTotal)
		}
		if res.Winner != 0 {
			t.Errorf("seed %d: winner = %d, want 0", seed, res.Winner)
		}
		if g.Players[0].Points != 1 {
			t.Errorf("seed %d: winner points = %d, want 1", seed, g.Players[0].Points)
		}
		if g.Players[1].Points != 1 {
			t.Errorf("seed %d: loser points = %d, want 1", seed, g.Players[1].Points)
		}
		if g.CodexColor != ColorBlue {
			t.Errorf("seed %d: CodexColor = %s, want blue", seed, ColorName(g.CodexColor))
		}
	}
}

func TestCombatTieBreakFirstDifferingCard(t *testing.T) {
	// Equal totals of 8 per side. The attacker holds two value-4 cards, the
	// defender only one, so whatever the shuffle order the first differing
	// pairwise value favors the attacker.
	for seed := uint64(1); seed <= 10; seed++ {
		g := startedFixture()
		g.RNG = seed
		g.Players[0].Hand = [HandSize]Card{
			NewCard(SuitKey, ColorBlue),     // 4
			NewCard(SuitSkull, ColorPurple), // 4
			NewCard(SuitFeather, ColorRed),  // codex-colored, excluded
		}
		g.Players[1].Hand = [HandSize]Card{
			NewCard(SuitRing, ColorGreen), // 4
			NewCard(SuitSkull, ColorGreen), // 3
			NewCard(SuitSkull, ColorBlue),  // 1
		}

		res := g.resolveCombat(0, 1)
		if res.AttackerTotal != res.DefenderTotal {
			t.Fatalf("seed %d: totals %d vs %d, want a tie", seed, res.AttackerTotal, res.DefenderTotal)
		}
		if res.Winner != 0 {
			t.Errorf("seed %d: winner = %d, want 0", seed, res.Winner)
		}
	}
}

func TestCombatSeededShuffleReproducible(t *testing.T) {
	a := startedFixture()
	b := startedFixture()
	got := a.combatCards(0)
	want := b.combatCards(0)
	if len(got) != len(want) {
		t.Fatalf("lengths differ: %d vs %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("index %d: %v vs %v from identical seeds", i, got[i], want[i])
		}
	}
}

func TestCombatLoserWithNoPointsStaysAtZero(t *testing.T) {
	g := startedFixture()
	g.Players[1].Points = 0
	g.resolveCombat(0, 1)
	if g.Players[1].Points != 0 {
		t.Errorf("loser points = %d, want 0", g.Players[1].Points)
	}
}

func TestCombatFullDrawLeavesPointsUntouched(t *testing.T) {
	g := startedFixture()
	// Single identical-value non-codex card each.
	g.Players[0].Hand = [HandSize]Card{
		NewCard(SuitKey, ColorPurple),  // 3
		NewCard(SuitKey, ColorRed),     // excluded
		NewCard(SuitSkull, ColorRed),   // excluded
	}
	g.Players[1].Hand = [HandSize]Card{
		NewCard(SuitSkull, ColorGreen), // 3
		NewCard(SuitRing, ColorRed),    // excluded
		NewCard(SuitFeather, ColorRed), // excluded
	}
	g.Players[0].Points = 2
	g.Players[1].Points = 2

	res := g.resolveCombat(0, 1)
	if res.Winner != -1 {
		t.Fatalf("winner = %d, want -1 for a full draw", res.Winner)
	}
	if g.Players[0].Points != 2 || g.Players[1].Points != 2 {
		t.Error("a drawn combat must not change points")
	}
}

func TestMoveOntoOpponentTriggersCombat(t *testing.T) {
	g := startedFixture()
	g.Players[1].Position = 2
	g.Players[1].Points = 3

	// ring/purple reaches index 2 (key/purple, shared color).
	err := g.Apply(0, Action{Type: ActionMove, SourceCard: NewCard(SuitRing, ColorPurple), TargetIndex: 2})
	if err != nil {
		t.Fatalf("Apply(move) error: %v", err)
	}
	// Post-swap hands: attacker ring/green(4)+key/purple(3)+ring/blue(2)=9,
	// defender feather/green(1)+feather/purple(2)=3. Attacker wins.
	if g.Players[0].Points != 1 {
		t.Errorf("attacker points = %d, want 1", g.Players[0].Points)
	}
	if g.Players[1].Points != 2 {
		t.Errorf("defender points = %d, want 2", g.Players[1].Points)
	}
	if g.CodexColor != ColorBlue {
		t.Errorf("CodexColor = %s, want blue after the combat paradox", ColorName(g.CodexColor))
	}
	if g.ActivePlayer != 1 {
		t.Errorf("ActivePlayer = %d, want 1", g.ActivePlayer)
	}
}
