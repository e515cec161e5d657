package shared

import "fmt"

// Suit represents the suit of a card (Denari, Coppe, Bastoni, Spade).
type Suit string

const (
	Denari  Suit = "Denari"  // Coins
	Coppe   Suit = "Coppe"   // Cups
	Bastoni Suit = "Bastoni" // Clubs
	Spade   Suit = "Spade"   // Swords
)

// Suits lists the suits in deck order.
var Suits = []Suit{Denari, Coppe, Bastoni, Spade}

// Index returns the position of the suit in deck order, or -1 for an unknown suit.
func (s Suit) Index() int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}
	return -1
}

const (
	MinRank = 1
	MaxRank = 10
)

// Card represents a single card in the Scopa deck.
type Card struct {
	Suit Suit `json:"suit"` // The suit of the card
	Rank int  `json:"rank"` // 1..10, also the capture value
}

// SetteBello is the seven of Denari.
var SetteBello = Card{Suit: Denari, Rank: 7}

// Prime point values used for Primiera, indexed by rank.
var primePoints = map[int]int{
	1:  16,
	2:  12,
	3:  13,
	4:  14,
	5:  15,
	6:  18,
	7:  21,
	8:  10,
	9:  10,
	10: 10,
}

// PrimePoints returns the Primiera value of the card.
func (c Card) PrimePoints() int {
	return primePoints[c.Rank]
}

// IsSetteBello reports whether the card is the seven of Denari.
func (c Card) IsSetteBello() bool {
	return c == SetteBello
}

// Valid reports whether the card has a known suit and a rank in range.
func (c Card) Valid() bool {
	return c.Suit.Index() >= 0 && c.Rank >= MinRank && c.Rank <= MaxRank
}

// SortKey orders cards by suit weight first, then rank.
func (c Card) SortKey() int {
	return c.Suit.Index()*MaxRank + c.Rank
}

func (c Card) String() string {
	return fmt.Sprintf("%d of %s", c.Rank, c.Suit)
}
