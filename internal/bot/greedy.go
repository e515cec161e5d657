package bot

import (
	"scopa-game/internal/engine"
	"scopa-game/internal/shared"
)

// Heuristic weights of the greedy strategy.
const (
	sweepBonus            = 1000
	setteBelloBonus       = 500
	denariWeight          = 5
	primeWeight           = 0.1
	discardDenariPenalty  = 2
	discardSetteBelloCost = 100
)

// Greedy scores every play and keeps the best one. Sweeps dominate, then
// taking the Sette Bello, then Denari and prime points; a larger capture
// breaks the remaining ties. Discards cost the card's prime value, more for
// Denari and far more for the Sette Bello.
type Greedy struct{}

func (Greedy) Name() string { return StrategyGreedy }

func (Greedy) ChooseMove(state engine.State) (engine.Move, bool) {
	option, ok := best(Options(state), GreedyScore)
	if !ok {
		return engine.Move{}, false
	}
	return option.Move(), true
}

// GreedyScore is the value the greedy strategy assigns to an option.
func GreedyScore(o Option) float64 {
	if o.Discard() {
		return discardScore(o.Card)
	}
	taken := o.Taken()
	score := float64(len(o.Targets))
	if o.Sweep {
		score += sweepBonus
	}
	if taken.Contains(shared.SetteBello) {
		score += setteBelloBonus
	}
	score += denariWeight * float64(len(taken.OfSuit(shared.Denari)))
	score += primeWeight * float64(taken.PrimeSum())
	return score
}

func discardScore(c shared.Card) float64 {
	score := -float64(c.PrimePoints())
	if c.Suit == shared.Denari {
		score -= discardDenariPenalty
	}
	if c.IsSetteBello() {
		score -= discardSetteBelloCost
	}
	return score
}
