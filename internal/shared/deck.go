package shared

import (
	"math/rand/v2"
)

// DeckSize is the number of cards in a full Scopa deck.
const DeckSize = 40

// NewDeck creates the standard 40-card deck, suit-major and rank-ascending.
// The order is fixed; shuffling is left to the caller.
func NewDeck() Pile {
	cards := make(Pile, 0, DeckSize)
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return cards
}

// Shuffle returns a shuffled copy of the cards. A nil r uses the global source.
func Shuffle(cards Pile, r *rand.Rand) Pile {
	out := cards.Clone()
	swap := func(i, j int) {
		out[i], out[j] = out[j], out[i]
	}
	if r == nil {
		rand.Shuffle(len(out), swap)
	} else {
		r.Shuffle(len(out), swap)
	}
	return out
}
