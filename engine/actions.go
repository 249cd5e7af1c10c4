package engine

import "fmt"

// Apply validates and applies an action for the given player. Validation
// exhausts every failure condition before the first mutating write: an
// action either fully applies or leaves the state untouched.
func (g *State) Apply(player uint8, a Action) error {
	if g.IsEnded() {
		return ErrGameEnded
	}
	if player >= NumPlayers {
		return fmt.Errorf("%w: player index %d out of range", ErrIllegalAction, player)
	}
	if player != g.ActivePlayer {
		return ErrNotYourTurn
	}

	switch a.Type {
	case ActionDeploy:
		return g.applyDeploy(player, a)
	case ActionMove:
		return g.applyMove(player, a)
	case ActionReplace:
		return g.applyReplace(player, a)
	default:
		return fmt.Errorf("%w: unknown action type %d", ErrIllegalAction, a.Type)
	}
}

// applyDeploy places the player's marker on a codex-colored continuum card.
// Once both markers are placed the game transitions from setup to started.
func (g *State) applyDeploy(player uint8, a Action) error {
	if g.Status != StatusSetup {
		return fmt.Errorf("%w: deploy only valid during setup", ErrWrongStatus)
	}
	if a.TargetIndex < 0 || a.TargetIndex >= ContinuumSize {
		return fmt.Errorf("%w: target index %d out of range", ErrIllegalAction, a.TargetIndex)
	}
	if g.Players[player].Position >= 0 {
		return fmt.Errorf("%w: marker already deployed", ErrIllegalAction)
	}
	if g.Continuum[a.TargetIndex].Color() != g.CodexColor {
		return fmt.Errorf("%w: deploy target must match the codex color", ErrIllegalAction)
	}
	if g.occupied(a.TargetIndex) {
		return fmt.Errorf("%w: target index %d already occupied", ErrIllegalAction, a.TargetIndex)
	}

	g.Players[player].Position = a.TargetIndex

	if g.Players[0].Position >= 0 && g.Players[1].Position >= 0 {
		g.Status = StatusStarted
		g.Phase = PhaseMovement
	}
	g.ActivePlayer = g.Opponent(player)
	return nil
}

// applyMove swaps a hand card with the continuum card at the target index
// and advances the marker there. Landing on the opponent triggers combat;
// a paradox in the refreshed hand scores a point and advances the codex.
func (g *State) applyMove(player uint8, a Action) error {
	if g.Status != StatusStarted {
		return fmt.Errorf("%w: move only valid once the game has started", ErrWrongStatus)
	}
	if a.TargetIndex < 0 || a.TargetIndex >= ContinuumSize {
		return fmt.Errorf("%w: target index %d out of range", ErrIllegalAction, a.TargetIndex)
	}
	p := &g.Players[player]
	handIdx := -1
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i] == a.SourceCard {
			handIdx = int(i)
			break
		}
	}
	if handIdx < 0 {
		return fmt.Errorf("%w: source card not in hand", ErrIllegalAction)
	}
	if !g.isLegal(player, a) {
		return fmt.Errorf("%w: move to index %d not reachable", ErrIllegalAction, a.TargetIndex)
	}

	// Swap: the continuum card joins the hand, the hand card takes the slot.
	picked := g.Continuum[a.TargetIndex]
	g.Continuum[a.TargetIndex] = a.SourceCard
	p.Hand[handIdx] = picked
	p.Position = a.TargetIndex
	g.Phase = PhaseMovement

	opponent := g.Opponent(player)
	if g.Players[opponent].Position == a.TargetIndex {
		g.resolveCombat(player, opponent)
		if g.IsEnded() {
			return nil
		}
		g.Phase = PhaseMovement
	}

	if HasSet(p.Hand[:p.HandLen], g.CodexColor) {
		g.resolveParadox(player)
		if g.IsEnded() {
			return nil
		}
	}

	g.ActivePlayer = opponent
	return nil
}

// applyReplace exchanges 3 hand cards with the 3-card continuum window
// immediately past or future of the marker, selected by the direction of
// the target index. The marker does not move. Pairing is randomized from
// the game RNG.
func (g *State) applyReplace(player uint8, a Action) error {
	if g.Status != StatusStarted {
		return fmt.Errorf("%w: replace only valid once the game has started", ErrWrongStatus)
	}
	p := &g.Players[player]
	if p.HandLen < HandSize {
		return fmt.Errorf("%w: not enough cards in hand", ErrIllegalAction)
	}
	if a.TargetIndex < 0 || a.TargetIndex >= ContinuumSize {
		return fmt.Errorf("%w: target index %d out of range", ErrIllegalAction, a.TargetIndex)
	}
	if !g.isLegal(player, a) {
		return fmt.Errorf("%w: replace at index %d not available", ErrIllegalAction, a.TargetIndex)
	}

	// The two legal targets encode the direction; the exchanged window is
	// the three cards adjacent to the marker on that side.
	opos := g.orientedPosition(player)
	otarget := g.orient(player, a.TargetIndex)
	var window [HandSize]int8
	if otarget > opos {
		for k := int8(0); k < HandSize; k++ {
			window[k] = g.orient(player, opos+1+k)
		}
	} else {
		for k := int8(0); k < HandSize; k++ {
			window[k] = g.orient(player, opos-3+k)
		}
	}

	// Randomly pair hand slots with window slots, then swap pairwise.
	perm := [HandSize]uint8{0, 1, 2}
	for i := len(perm) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		perm[i], perm[j] = perm[j], perm[i]
	}
	for k := 0; k < HandSize; k++ {
		idx := window[k]
		p.Hand[perm[k]], g.Continuum[idx] = g.Continuum[idx], p.Hand[perm[k]]
	}

	g.Phase = PhaseReplacement
	g.ActivePlayer = g.Opponent(player)
	return nil
}

// resolveParadox awards a point, advances the codex color to its cyclic
// predecessor and ends the game if the winning threshold is reached.
func (g *State) resolveParadox(player uint8) {
	g.Players[player].Points++
	g.CodexColor = PrevColor(g.CodexColor)
	if g.Players[player].Points >= WinningPoints {
		g.Status = StatusEnded
		g.Winner = int8(player)
	}
}
