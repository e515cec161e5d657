package shared

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)
	assert.False(t, deck.HasDuplicates())

	// Suit-major, rank-ascending.
	assert.Equal(t, Card{Suit: Denari, Rank: 1}, deck[0])
	assert.Equal(t, Card{Suit: Denari, Rank: 10}, deck[9])
	assert.Equal(t, Card{Suit: Coppe, Rank: 1}, deck[10])
	assert.Equal(t, Card{Suit: Bastoni, Rank: 1}, deck[20])
	assert.Equal(t, Card{Suit: Spade, Rank: 10}, deck[39])

	for _, c := range deck {
		assert.True(t, c.Valid(), "invalid card %v", c)
	}
}

func TestNewDeckIsReproducible(t *testing.T) {
	assert.Equal(t, NewDeck(), NewDeck())
}

func TestShuffleKeepsCards(t *testing.T) {
	deck := NewDeck()
	shuffled := Shuffle(deck, rand.New(rand.NewPCG(1, 2)))

	assert.True(t, deck.SameCards(shuffled))
	assert.NotEqual(t, deck, shuffled)
	// The input is left untouched.
	assert.Equal(t, NewDeck(), deck)
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := Shuffle(NewDeck(), rand.New(rand.NewPCG(7, 7)))
	b := Shuffle(NewDeck(), rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
}

func TestPrimePoints(t *testing.T) {
	expected := map[int]int{1: 16, 2: 12, 3: 13, 4: 14, 5: 15, 6: 18, 7: 21, 8: 10, 9: 10, 10: 10}
	for rank, points := range expected {
		assert.Equal(t, points, Card{Suit: Spade, Rank: rank}.PrimePoints(), "rank %d", rank)
	}
}

func TestSetteBello(t *testing.T) {
	assert.True(t, Card{Suit: Denari, Rank: 7}.IsSetteBello())
	assert.False(t, Card{Suit: Coppe, Rank: 7}.IsSetteBello())
	assert.False(t, Card{Suit: Denari, Rank: 6}.IsSetteBello())
}
