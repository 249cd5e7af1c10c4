package engine

// CombatResult records how the last combat resolved, for observers.
type CombatResult struct {
	Attacker      uint8
	Defender      uint8
	AttackerTotal int
	DefenderTotal int
	Winner        int8 // player index; -1 on a full draw
}

// resolveCombat runs the contest triggered when a move lands the attacker's
// marker on the defender's position. Each side's non-codex-colored hand
// cards are shuffled with the game RNG and their values summed; the higher
// total wins. An exact tie is broken card by card in shuffled order at the
// first differing value. The winner scores through the paradox path; the
// loser forfeits a point if holding any. Identical values all the way down
// leave both sides untouched.
func (g *State) resolveCombat(attacker, defender uint8) CombatResult {
	g.Phase = PhaseCombat

	atkCards := g.combatCards(attacker)
	defCards := g.combatCards(defender)

	res := CombatResult{Attacker: attacker, Defender: defender, Winner: -1}
	for _, c := range atkCards {
		res.AttackerTotal += int(c.Value())
	}
	for _, c := range defCards {
		res.DefenderTotal += int(c.Value())
	}

	switch {
	case res.AttackerTotal > res.DefenderTotal:
		res.Winner = int8(attacker)
	case res.DefenderTotal > res.AttackerTotal:
		res.Winner = int8(defender)
	default:
		// Pairwise tie-break over the shuffled order.
		n := len(atkCards)
		if len(defCards) < n {
			n = len(defCards)
		}
		for i := 0; i < n; i++ {
			av, dv := atkCards[i].Value(), defCards[i].Value()
			if av > dv {
				res.Winner = int8(attacker)
				break
			}
			if dv > av {
				res.Winner = int8(defender)
				break
			}
		}
	}

	if res.Winner < 0 {
		return res
	}

	winner := uint8(res.Winner)
	loser := g.Opponent(winner)
	if g.Players[loser].Points > 0 {
		g.Players[loser].Points--
	}
	g.resolveParadox(winner)
	return res
}

// combatCards returns the player's non-codex-colored hand cards, shuffled
// with the game RNG so the tie-break order is reproducible from the seed.
func (g *State) combatCards(player uint8) []Card {
	p := &g.Players[player]
	cards := make([]Card, 0, p.HandLen)
	for i := uint8(0); i < p.HandLen; i++ {
		if p.Hand[i].Color() != g.CodexColor {
			cards = append(cards, p.Hand[i])
		}
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		cards[i], cards[j] = cards[j], cards[i]
	}
	return cards
}
