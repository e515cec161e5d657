package bot

import "scopa-game/internal/engine"

// Simple always plays its first card, taking the smallest capture available.
// It makes a predictable baseline opponent.
type Simple struct{}

func (Simple) Name() string { return StrategySimple }

func (Simple) ChooseMove(state engine.State) (engine.Move, bool) {
	if state.Turn < 0 || state.Turn >= len(state.Players) {
		return engine.Move{}, false
	}
	hand := state.CurrentPlayer().Hand
	if len(hand) == 0 {
		return engine.Move{}, false
	}

	move := engine.Move{Card: hand[0]}
	for _, t := range engine.FindCaptures(hand[0].Rank, state.Table) {
		if move.Targets == nil || len(t) < len(move.Targets) {
			move.Targets = t
		}
	}
	return move, true
}
