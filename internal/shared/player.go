package shared

// Player represents a seat in a Scopa round.
type Player struct {
	ID       string `json:"id"`    // Unique identifier for the player
	Hand     Pile   `json:"hand"`  // Cards currently held by the player
	Captured Pile   `json:"pile"`  // Cards captured so far
	Scope    int    `json:"scope"` // Number of sweeps
}

// NewPlayer creates a player with an empty hand and pile.
func NewPlayer(id string) Player {
	return Player{
		ID:       id,
		Hand:     Pile{},
		Captured: Pile{},
	}
}

// Clone returns a copy that shares no slices with the original.
func (p Player) Clone() Player {
	return Player{
		ID:       p.ID,
		Hand:     p.Hand.Clone(),
		Captured: p.Captured.Clone(),
		Scope:    p.Scope,
	}
}

// HasCard reports whether the card is in the player's hand.
func (p Player) HasCard(card Card) bool {
	return p.Hand.Contains(card)
}
