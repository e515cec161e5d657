package engine

import (
	"fmt"

	"scopa-game/internal/shared"
)

// Play applies a move for the player whose turn it is and returns the next
// state. On any error the given state is returned as is.
func Play(move Move, state State) (State, error) {
	if state.Phase == PhaseStopped {
		return state, ErrRoundStopped
	}
	if state.Turn < 0 || state.Turn >= len(state.Players) {
		return state, fmt.Errorf("%w: no player at seat %d", ErrNotYourTurn, state.Turn)
	}
	if !state.CurrentPlayer().HasCard(move.Card) {
		return state, fmt.Errorf("%w: %v is not in %s's hand", ErrNotYourTurn, move.Card, state.CurrentPlayer().ID)
	}

	captured, err := resolveCapture(move, ValidCaptures(state, move.Card))
	if err != nil {
		return state, err
	}

	next := state.Clone()
	actor := &next.Players[next.Turn]
	actor.Hand = actor.Hand.Without(move.Card)

	if len(captured) == 0 {
		next.Table = next.Table.With(move.Card)
	} else {
		next.Table = next.Table.Without(captured...)
		actor.Captured = actor.Captured.With(captured...).With(move.Card)
		if len(next.Table) == 0 {
			actor.Scope++
		}
	}

	if len(actor.Hand) == 0 {
		actor.Hand, next.DrawPile = draw(next.DrawPile, HandCards)
	}
	if len(next.Table) == 0 {
		next.Table, next.DrawPile = draw(next.DrawPile, TableCards)
	}

	next.Turn = (next.Turn + 1) % len(next.Players)
	if len(next.CurrentPlayer().Hand) == 0 && len(next.DrawPile) == 0 {
		next.Phase = PhaseStopped
	} else {
		next.Phase = PhasePlaying
	}
	return next, nil
}

// resolveCapture picks the capture a move makes out of the valid ones. An empty
// result is a discard.
func resolveCapture(move Move, valid []shared.Pile) (shared.Pile, error) {
	if len(move.Targets) == 0 {
		switch len(valid) {
		case 0:
			return nil, nil
		case 1:
			return valid[0], nil
		default:
			return nil, fmt.Errorf("%w: %d options for %v", ErrAmbiguousCapture, len(valid), move.Card)
		}
	}
	for _, option := range valid {
		if option.SameCards(move.Targets) {
			return option, nil
		}
	}
	return nil, fmt.Errorf("%w: %v cannot take %v", ErrInvalidCapture, move.Card, move.Targets)
}

// draw takes up to n cards off the top of the pile.
func draw(pile shared.Pile, n int) (drawn, rest shared.Pile) {
	if n > len(pile) {
		n = len(pile)
	}
	return pile[:n].Clone(), pile[n:].Clone()
}
