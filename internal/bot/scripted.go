package bot

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"scopa-game/internal/engine"
	"scopa-game/internal/shared"
)

// DefaultScript mirrors the greedy heuristic. Scripts receive one table per
// option and return a number; the highest wins and ties keep the first option.
const DefaultScript = `
function score(o)
  if o.discard then
    local s = -o.prime
    if o.suit == "Denari" then s = s - 2 end
    if o.sette_bello then s = s - 100 end
    return s
  end
  local s = o.captured
  if o.sweep then s = s + 1000 end
  if o.sette_bello then s = s + 500 end
  return s + 5 * o.denari + 0.1 * o.primes
end
`

// Scripted scores options with a Lua function named score. If the script
// fails at runtime the move falls back to Greedy.
type Scripted struct {
	mu    sync.Mutex
	state *lua.LState
	score lua.LValue
	err   error // last runtime error, kept for inspection
}

// NewScripted compiles the script. An empty source loads DefaultScript.
func NewScripted(source string) (*Scripted, error) {
	if source == "" {
		source = DefaultScript
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua %s library: %w", lib.name, err)
		}
	}

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("load strategy script: %w", err)
	}
	fn := L.GetGlobal("score")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, errors.New("strategy script must define score(option)")
	}
	return &Scripted{state: L, score: fn}, nil
}

func (s *Scripted) Name() string { return StrategyScripted }

func (s *Scripted) ChooseMove(state engine.State) (engine.Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed error
	option, ok := best(Options(state), func(o Option) float64 {
		if failed != nil {
			return 0
		}
		v, err := s.call(o)
		if err != nil {
			failed = err
		}
		return v
	})
	s.err = failed
	if failed != nil {
		return Greedy{}.ChooseMove(state)
	}
	if !ok {
		return engine.Move{}, false
	}
	return option.Move(), true
}

// Err returns the runtime error of the last ChooseMove, if any.
func (s *Scripted) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the Lua interpreter.
func (s *Scripted) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Close()
}

func (s *Scripted) call(o Option) (float64, error) {
	L := s.state
	taken := o.Taken()

	t := L.NewTable()
	t.RawSetString("rank", lua.LNumber(o.Card.Rank))
	t.RawSetString("suit", lua.LString(string(o.Card.Suit)))
	t.RawSetString("prime", lua.LNumber(o.Card.PrimePoints()))
	t.RawSetString("discard", lua.LBool(o.Discard()))
	t.RawSetString("sweep", lua.LBool(o.Sweep))
	t.RawSetString("captured", lua.LNumber(len(o.Targets)))
	t.RawSetString("denari", lua.LNumber(len(taken.OfSuit(shared.Denari))))
	t.RawSetString("sette_bello", lua.LBool(taken.Contains(shared.SetteBello)))
	t.RawSetString("primes", lua.LNumber(taken.PrimeSum()))

	if err := L.CallByParam(lua.P{Fn: s.score, NRet: 1, Protect: true}, t); err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("score returned %s, want number", ret.Type())
	}
	return float64(n), nil
}
