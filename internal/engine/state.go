package engine

import (
	"fmt"

	"scopa-game/internal/shared"
)

// Phase represents the lifecycle stage of a round.
type Phase string

const (
	PhaseInitial Phase = "initial" // Dealt, no card played yet
	PhasePlaying Phase = "playing" // Cards are being played
	PhaseStopped Phase = "stopped" // Terminal; nobody can refill their hand
)

// State is an immutable snapshot of a round. Transitions build a new State and
// never modify the one they were given.
type State struct {
	Phase    Phase           `json:"phase"`
	Turn     int             `json:"turn"`
	DrawPile shared.Pile     `json:"draw_pile"`
	Table    shared.Pile     `json:"table"`
	Players  []shared.Player `json:"players"`
}

// Move is a card from the acting player's hand and an optional explicit capture.
// Empty Targets lets the engine resolve the capture.
type Move struct {
	Card    shared.Card `json:"card"`
	Targets shared.Pile `json:"targets"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	players := make([]shared.Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = p.Clone()
	}
	return State{
		Phase:    s.Phase,
		Turn:     s.Turn,
		DrawPile: s.DrawPile.Clone(),
		Table:    s.Table.Clone(),
		Players:  players,
	}
}

// CurrentPlayer returns the player whose turn it is.
func (s State) CurrentPlayer() shared.Player {
	return s.Players[s.Turn]
}

// AllCards returns the union of every zone: draw pile, table, hands and piles.
func (s State) AllCards() shared.Pile {
	all := s.DrawPile.With(s.Table...)
	for _, p := range s.Players {
		all = all.With(p.Hand...)
		all = all.With(p.Captured...)
	}
	return all
}

// Check verifies card conservation against the full deck.
func (s State) Check() error {
	all := s.AllCards()
	if all.HasDuplicates() {
		return fmt.Errorf("%w: %v", ErrDuplicateCard, all)
	}
	if len(all) != shared.DeckSize || !all.SameCards(shared.NewDeck()) {
		return fmt.Errorf("conservation check failed: found %d of %d cards", len(all), shared.DeckSize)
	}
	if s.Turn < 0 || s.Turn >= len(s.Players) {
		return fmt.Errorf("turn %d out of range for %d players", s.Turn, len(s.Players))
	}
	return nil
}
