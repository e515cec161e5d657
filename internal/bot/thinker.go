package bot

import (
	"context"
	"errors"
	"time"

	"scopa-game/internal/engine"
)

// ErrNoMove is returned when the acting player has nothing to play.
var ErrNoMove = errors.New("no move available")

// Thinker wraps a strategy with a cosmetic thinking delay. The move is chosen
// before the delay starts, so timing never changes the decision.
type Thinker struct {
	Delay time.Duration
}

// Decision is the outcome of an asynchronous move selection.
type Decision struct {
	Move engine.Move
	Err  error
}

// SelectMove picks a move for the acting player and returns it once the delay
// has elapsed. If ctx ends first the move is dropped and ctx.Err() returned.
func (t Thinker) SelectMove(ctx context.Context, state engine.State, strategy Strategy) (engine.Move, error) {
	move, ok := strategy.ChooseMove(state)
	if !ok {
		return engine.Move{}, ErrNoMove
	}
	if t.Delay <= 0 {
		if err := ctx.Err(); err != nil {
			return engine.Move{}, err
		}
		return move, nil
	}

	timer := time.NewTimer(t.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return engine.Move{}, ctx.Err()
	case <-timer.C:
		return move, nil
	}
}

// Start runs SelectMove in its own goroutine on a private copy of state. The
// channel receives exactly one Decision.
func (t Thinker) Start(ctx context.Context, state engine.State, strategy Strategy) <-chan Decision {
	out := make(chan Decision, 1)
	snapshot := state.Clone()
	go func() {
		move, err := t.SelectMove(ctx, snapshot, strategy)
		out <- Decision{Move: move, Err: err}
	}()
	return out
}
