package main

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopa-game/internal/bot"
	"scopa-game/internal/engine"
	"scopa-game/internal/scoring"
)

func TestPlayRound(t *testing.T) {
	seats, err := buildSeats(4, "greedy, simple", "")
	require.NoError(t, err)
	assert.Equal(t, "greedy", seats[0].Name())
	assert.Equal(t, "simple", seats[1].Name())
	assert.Equal(t, "greedy", seats[2].Name())

	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 20; i++ {
		final, err := playRound(r, seats)
		require.NoError(t, err)
		assert.Equal(t, engine.PhaseStopped, final.Phase)
		require.NoError(t, final.Check())
	}
}

func TestBuildSeatsUnknownStrategy(t *testing.T) {
	_, err := buildSeats(2, "greedy,oracle", "")
	assert.Error(t, err)
}

// closingStrategy counts Close calls.
type closingStrategy struct {
	bot.Greedy
	closed int
}

func (c *closingStrategy) Close() { c.closed++ }

func TestCloseSeats(t *testing.T) {
	a, b := &closingStrategy{}, &closingStrategy{}
	closeSeats([]bot.Strategy{a, bot.Simple{}, b})
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)

	seats, err := buildSeats(2, "scripted", "")
	require.NoError(t, err)
	assert.NotPanics(t, func() { closeSeats(seats) })
}

func TestRecord(t *testing.T) {
	tallies := make([]tally, 2)

	single := record(tallies, []scoring.Score{{Total: 5}, {Total: 3}})
	assert.True(t, single)
	split := record(tallies, []scoring.Score{{Total: 4}, {Total: 4}})
	assert.False(t, split)

	assert.Equal(t, 1, tallies[0].wins)
	assert.Equal(t, 0, tallies[1].wins)
	assert.Equal(t, 9, tallies[0].total)
	assert.Equal(t, 7, tallies[1].total)
	assert.Equal(t, "4.50", average(tallies[0].total, 2))
}
