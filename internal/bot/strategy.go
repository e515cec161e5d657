package bot

import (
	"fmt"

	"scopa-game/internal/engine"
	"scopa-game/internal/shared"
)

// Strategy chooses a move for the player whose turn it is. Implementations
// must be deterministic: the same State always yields the same Move. ok is
// false only when the acting player has no cards.
type Strategy interface {
	Name() string
	ChooseMove(state engine.State) (move engine.Move, ok bool)
}

// Option is a candidate play: a card and the capture it makes. Discard options
// have no Targets and are only offered for cards that cannot capture.
type Option struct {
	Card    shared.Card
	Targets shared.Pile
	Sweep   bool // Targets is the whole table
}

// Move converts the option to an engine move.
func (o Option) Move() engine.Move {
	return engine.Move{Card: o.Card, Targets: o.Targets}
}

// Discard reports whether the option lays the card on the table.
func (o Option) Discard() bool {
	return len(o.Targets) == 0
}

// Taken returns the captured cards together with the played card.
func (o Option) Taken() shared.Pile {
	return o.Targets.With(o.Card)
}

// Options lists every play for the acting player: hand order first, then the
// capture enumeration order of FindCaptures.
func Options(state engine.State) []Option {
	if state.Turn < 0 || state.Turn >= len(state.Players) {
		return nil
	}
	var options []Option
	for _, c := range state.CurrentPlayer().Hand {
		captures := engine.FindCaptures(c.Rank, state.Table)
		if len(captures) == 0 {
			options = append(options, Option{Card: c})
			continue
		}
		for _, t := range captures {
			options = append(options, Option{
				Card:    c,
				Targets: t,
				Sweep:   len(t) == len(state.Table),
			})
		}
	}
	return options
}

// best returns the highest scoring option. Ties keep the first option seen.
func best(options []Option, score func(Option) float64) (Option, bool) {
	var (
		winner    Option
		bestScore float64
		found     bool
	)
	for _, o := range options {
		s := score(o)
		if !found || s > bestScore {
			winner, bestScore, found = o, s, true
		}
	}
	return winner, found
}

// Strategy names accepted by NewStrategy.
const (
	StrategyGreedy   = "greedy"
	StrategySimple   = "simple"
	StrategyScripted = "scripted"
)

// NewStrategy builds a strategy by name. script is the Lua source used by the
// scripted strategy and ignored otherwise.
func NewStrategy(name, script string) (Strategy, error) {
	switch name {
	case StrategyGreedy, "":
		return Greedy{}, nil
	case StrategySimple:
		return Simple{}, nil
	case StrategyScripted:
		return NewScripted(script)
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}
