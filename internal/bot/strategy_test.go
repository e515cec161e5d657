package bot

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopa-game/internal/engine"
	"scopa-game/internal/shared"
)

func c(rank int, suit shared.Suit) shared.Card {
	return shared.Card{Suit: suit, Rank: rank}
}

func stateWith(hand, table shared.Pile) engine.State {
	me := shared.NewPlayer("me")
	me.Hand = hand
	other := shared.NewPlayer("other")
	other.Hand = shared.Pile{c(10, shared.Spade)}
	return engine.State{
		Phase:    engine.PhasePlaying,
		Turn:     0,
		DrawPile: shared.Pile{},
		Table:    table,
		Players:  []shared.Player{me, other},
	}
}

func TestGreedyChooseMove(t *testing.T) {
	tests := []struct {
		name  string
		hand  shared.Pile
		table shared.Pile
		want  engine.Move
	}{
		{
			name:  "sweep beats everything",
			hand:  shared.Pile{c(7, shared.Denari), c(4, shared.Coppe)},
			table: shared.Pile{c(4, shared.Spade)},
			want:  engine.Move{Card: c(4, shared.Coppe), Targets: shared.Pile{c(4, shared.Spade)}},
		},
		{
			name:  "take the sette bello",
			hand:  shared.Pile{c(7, shared.Coppe)},
			table: shared.Pile{shared.SetteBello, c(3, shared.Bastoni), c(4, shared.Spade)},
			want:  engine.Move{Card: c(7, shared.Coppe), Targets: shared.Pile{shared.SetteBello}},
		},
		{
			name:  "capture with the sette bello rather than discard",
			hand:  shared.Pile{shared.SetteBello, c(3, shared.Coppe)},
			table: shared.Pile{c(7, shared.Spade), c(4, shared.Bastoni)},
			want:  engine.Move{Card: shared.SetteBello, Targets: shared.Pile{c(7, shared.Spade)}},
		},
		{
			name:  "discard the cheapest card",
			hand:  shared.Pile{c(1, shared.Denari), c(8, shared.Coppe), c(6, shared.Spade)},
			table: shared.Pile{c(9, shared.Bastoni)},
			want:  engine.Move{Card: c(8, shared.Coppe)},
		},
		{
			name:  "discard ties keep hand order",
			hand:  shared.Pile{c(9, shared.Coppe), c(8, shared.Spade)},
			table: shared.Pile{c(10, shared.Bastoni)},
			want:  engine.Move{Card: c(9, shared.Coppe)},
		},
		{
			name:  "never discard the sette bello when avoidable",
			hand:  shared.Pile{shared.SetteBello, c(6, shared.Denari)},
			table: shared.Pile{c(9, shared.Bastoni)},
			want:  engine.Move{Card: c(6, shared.Denari)},
		},
		{
			name:  "more cards outscore a single match",
			hand:  shared.Pile{c(5, shared.Coppe)},
			table: shared.Pile{c(5, shared.Spade), c(2, shared.Bastoni), c(3, shared.Bastoni), c(9, shared.Coppe)},
			want:  engine.Move{Card: c(5, shared.Coppe), Targets: shared.Pile{c(2, shared.Bastoni), c(3, shared.Bastoni)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, ok := Greedy{}.ChooseMove(stateWith(tt.hand, tt.table))
			require.True(t, ok)
			assert.Equal(t, tt.want.Card, move.Card)
			assert.True(t, tt.want.Targets.SameCards(move.Targets), "targets %v, want %v", move.Targets, tt.want.Targets)
		})
	}
}

func TestGreedyEmptyHand(t *testing.T) {
	_, ok := Greedy{}.ChooseMove(stateWith(shared.Pile{}, shared.Pile{c(1, shared.Coppe)}))
	assert.False(t, ok)
}

func TestGreedyIsDeterministic(t *testing.T) {
	state := dealt(t, 11, 2)
	first, ok := Greedy{}.ChooseMove(state)
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		again, _ := Greedy{}.ChooseMove(state)
		assert.Equal(t, first, again)
	}
}

func TestGreedyScore(t *testing.T) {
	sweep := Option{Card: c(4, shared.Coppe), Targets: shared.Pile{c(4, shared.Spade)}, Sweep: true}
	assert.InDelta(t, 1000+1+0.1*28, GreedyScore(sweep), 1e-9)

	discard := Option{Card: shared.SetteBello}
	assert.InDelta(t, -21-2-100, GreedyScore(discard), 1e-9)
}

func TestSimpleChooseMove(t *testing.T) {
	state := stateWith(
		shared.Pile{c(5, shared.Coppe), c(1, shared.Denari)},
		shared.Pile{c(2, shared.Bastoni), c(3, shared.Bastoni), c(5, shared.Spade)},
	)
	move, ok := Simple{}.ChooseMove(state)
	require.True(t, ok)
	assert.Equal(t, engine.Move{Card: c(5, shared.Coppe), Targets: shared.Pile{c(5, shared.Spade)}}, move)

	move, ok = Simple{}.ChooseMove(stateWith(shared.Pile{c(9, shared.Coppe)}, shared.Pile{c(1, shared.Spade)}))
	require.True(t, ok)
	assert.Equal(t, c(9, shared.Coppe), move.Card)
	assert.Empty(t, move.Targets)

	_, ok = Simple{}.ChooseMove(stateWith(shared.Pile{}, shared.Pile{}))
	assert.False(t, ok)
}

func TestOptions(t *testing.T) {
	state := stateWith(
		shared.Pile{c(5, shared.Coppe), c(9, shared.Denari)},
		shared.Pile{c(2, shared.Bastoni), c(3, shared.Bastoni), c(5, shared.Spade)},
	)
	options := Options(state)
	require.Len(t, options, 3)

	assert.Equal(t, shared.Pile{c(2, shared.Bastoni), c(3, shared.Bastoni)}, options[0].Targets)
	assert.Equal(t, shared.Pile{c(5, shared.Spade)}, options[1].Targets)
	assert.False(t, options[0].Sweep)
	assert.True(t, options[2].Discard())
	assert.Equal(t, c(9, shared.Denari), options[2].Card)
}

func TestNewStrategy(t *testing.T) {
	for _, name := range []string{StrategyGreedy, StrategySimple, StrategyScripted, ""} {
		s, err := NewStrategy(name, "")
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}
	_, err := NewStrategy("minimax", "")
	assert.Error(t, err)
}

func TestStrategiesAlwaysPlayLegalMoves(t *testing.T) {
	scripted, err := NewScripted("")
	require.NoError(t, err)
	defer scripted.Close()

	for _, strategy := range []Strategy{Greedy{}, Simple{}, scripted} {
		for _, players := range engine.SupportedPlayers {
			for seed := uint64(1); seed <= 10; seed++ {
				state := dealt(t, seed, players)
				for state.Phase != engine.PhaseStopped {
					move, ok := strategy.ChooseMove(state)
					require.True(t, ok)
					next, err := engine.Play(move, state)
					require.NoError(t, err, "%s played %v", strategy.Name(), move)
					state = next
				}
			}
		}
	}
}

// dealt returns a shuffled, accepted deal.
func dealt(t *testing.T, seed uint64, players int) engine.State {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed+1))
	for {
		state, err := engine.Deal(shared.Shuffle(shared.NewDeck(), r), engine.DealOptions{Players: players, Rand: r})
		if errors.Is(err, engine.ErrDealRejected) {
			continue
		}
		require.NoError(t, err)
		return state
	}
}
