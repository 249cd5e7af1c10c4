package engine

// LegalActions returns every action the given player may submit right now.
// Only the active player of a setup or started game has legal actions.
func (g *State) LegalActions(player uint8) []Action {
	if player >= NumPlayers || g.IsEnded() || player != g.ActivePlayer {
		return nil
	}
	switch g.Status {
	case StatusSetup:
		return g.legalDeployments(player)
	case StatusStarted:
		actions := g.legalMoves(player)
		return append(actions, g.legalReplacements(player)...)
	}
	return nil
}

// legalDeployments emits a Deploy action for each codex-colored continuum
// card not yet occupied by a marker. Already-deployed players are done.
func (g *State) legalDeployments(player uint8) []Action {
	if g.Players[player].Position >= 0 {
		return nil
	}
	var actions []Action
	for i := int8(0); i < ContinuumSize; i++ {
		if g.Continuum[i].Color() == g.CodexColor && !g.occupied(i) {
			actions = append(actions, Action{Type: ActionDeploy, SourceCard: EmptyCard, TargetIndex: i})
		}
	}
	return actions
}

// legalMoves emits, per hand card, a Move to every past continuum card
// sharing suit or color, plus a single value-offset jump into the future.
// Past and future are split in the player's traversal coordinates.
func (g *State) legalMoves(player uint8) []Action {
	opos := g.orientedPosition(player)
	if opos < 0 {
		return nil
	}
	p := &g.Players[player]
	var actions []Action
	for h := uint8(0); h < p.HandLen; h++ {
		hand := p.Hand[h]
		for o := int8(0); o < opos; o++ {
			target := g.orient(player, o)
			if hand.Matches(g.Continuum[target]) {
				actions = append(actions, Action{Type: ActionMove, SourceCard: hand, TargetIndex: target})
			}
		}
		if o := opos + int8(hand.Value()); o < ContinuumSize {
			actions = append(actions, Action{Type: ActionMove, SourceCard: hand, TargetIndex: g.orient(player, o)})
		}
	}
	return actions
}

// legalReplacements emits up to two Replace actions: one targeting the
// 3rd-most-recent past card when at least 3 cards lie in the past, and one
// targeting the nearest future card when at least 3 lie in the future.
func (g *State) legalReplacements(player uint8) []Action {
	opos := g.orientedPosition(player)
	if opos < 0 || g.Players[player].HandLen < HandSize {
		return nil
	}
	var actions []Action
	if opos >= 3 {
		actions = append(actions, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: g.orient(player, opos-3)})
	}
	if opos+3 < ContinuumSize {
		actions = append(actions, Action{Type: ActionReplace, SourceCard: EmptyCard, TargetIndex: g.orient(player, opos+1)})
	}
	return actions
}

// isLegal reports whether the action appears in the player's legal set.
func (g *State) isLegal(player uint8, a Action) bool {
	for _, la := range g.LegalActions(player) {
		if la == a {
			return true
		}
	}
	return false
}
