package engine

import "errors"

// Rule violations. All are recoverable; the State passed in is returned unchanged.
var (
	ErrDealRejected     = errors.New("too many face cards dealt")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAmbiguousCapture = errors.New("choose the cards to capture")
	ErrInvalidCapture   = errors.New("invalid capture")
	ErrRoundStopped     = errors.New("round is over")

	ErrInvalidPlayers = errors.New("unsupported number of players")
	ErrNotEnoughCards = errors.New("not enough cards to deal")
	ErrDuplicateCard  = errors.New("duplicate card in deck")
	ErrInvalidDeck    = errors.New("not a full scopa deck")
)
