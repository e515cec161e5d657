// Command simulate plays bot-only rounds and prints a summary per seat.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"scopa-game/internal/bot"
	"scopa-game/internal/config"
	"scopa-game/internal/engine"
	"scopa-game/internal/logging"
	"scopa-game/internal/scoring"
	"scopa-game/internal/shared"
)

var (
	rounds     = flag.Int("rounds", 1000, "number of rounds to play")
	players    = flag.Int("players", 2, "players per round (2, 3, 4 or 6)")
	strategies = flag.String("strategy", "greedy", "comma separated strategies, assigned to seats in turn")
	seed       = flag.Uint64("seed", 1, "random seed")
	configPath = flag.String("config", "", "path to configuration file")
)

// tally accumulates one seat's results.
type tally struct {
	strategy   string
	wins       int
	total      int
	scope      int
	setteBello int
	captured   int
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	script := ""
	if cfg.Bot.Script != "" {
		data, err := os.ReadFile(cfg.Bot.Script)
		if err != nil {
			logger.Fatal("Failed to read bot script", zap.Error(err))
		}
		script = string(data)
	}

	if !slices.Contains(engine.SupportedPlayers, *players) {
		logger.Fatal("Unsupported player count", zap.Int("players", *players), zap.Ints("supported", engine.SupportedPlayers))
	}
	seats, err := buildSeats(*players, *strategies, script)
	if err != nil {
		logger.Fatal("Invalid strategies", zap.Error(err))
	}
	defer closeSeats(seats)

	r := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	tallies := make([]tally, *players)
	for i, s := range seats {
		tallies[i].strategy = s.Name()
	}

	ties := 0
	for n := 1; n <= *rounds; n++ {
		final, err := playRound(r, seats)
		if err != nil {
			logger.Fatal("Round failed", zap.Int("round", n), zap.Error(err))
		}
		scores := scoring.Compute(final.Players)
		if !record(tallies, scores) {
			ties++
		}
		logger.Debug("Round played", zap.Int("round", n))
	}

	render(tallies, *rounds, ties)
}

func buildSeats(players int, names, script string) ([]bot.Strategy, error) {
	list := strings.Split(names, ",")
	seats := make([]bot.Strategy, players)
	for i := range seats {
		s, err := bot.NewStrategy(strings.TrimSpace(list[i%len(list)]), script)
		if err != nil {
			closeSeats(seats[:i])
			return nil, err
		}
		seats[i] = s
	}
	return seats, nil
}

// closeSeats releases strategies that hold resources, such as a Lua state.
func closeSeats(seats []bot.Strategy) {
	for _, s := range seats {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// playRound deals and plays one round to the end, checking card conservation
// after every move.
func playRound(r *rand.Rand, seats []bot.Strategy) (engine.State, error) {
	var state engine.State
	for {
		var err error
		state, err = engine.Deal(shared.Shuffle(shared.NewDeck(), r), engine.DealOptions{Players: len(seats), Rand: r})
		if errors.Is(err, engine.ErrDealRejected) {
			continue
		}
		if err != nil {
			return engine.State{}, err
		}
		break
	}

	for state.Phase != engine.PhaseStopped {
		move, ok := seats[state.Turn].ChooseMove(state)
		if !ok {
			return engine.State{}, fmt.Errorf("seat %d has no move", state.Turn)
		}
		next, err := engine.Play(move, state)
		if err != nil {
			return engine.State{}, fmt.Errorf("seat %d played %s: %w", state.Turn, move.Card, err)
		}
		if err := next.Check(); err != nil {
			return engine.State{}, err
		}
		state = next
	}
	return state, nil
}

// record adds a round to the tallies. It reports false when the best total
// was shared.
func record(tallies []tally, scores []scoring.Score) bool {
	best, winners := -1, 0
	for _, s := range scores {
		switch {
		case s.Total > best:
			best, winners = s.Total, 1
		case s.Total == best:
			winners++
		}
	}
	for i, s := range scores {
		t := &tallies[i]
		t.total += s.Total
		t.scope += s.Value(scoring.LabelScope)
		t.setteBello += s.Value(scoring.LabelSetteBello)
		t.captured += s.Value(scoring.LabelCaptured)
		if winners == 1 && s.Total == best {
			t.wins++
		}
	}
	return winners == 1
}

func render(tallies []tally, rounds, ties int) {
	pterm.DefaultHeader.Println("Scopa simulation")

	data := pterm.TableData{{"Seat", "Strategy", "Wins", "Avg points", "Scope", "Sette Bello", "Avg captured"}}
	for i, t := range tallies {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			t.strategy,
			strconv.Itoa(t.wins),
			average(t.total, rounds),
			strconv.Itoa(t.scope),
			strconv.Itoa(t.setteBello),
			average(t.captured, rounds),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
	pterm.Info.Printfln("%d rounds, %d with a shared top score", rounds, ties)
}

func average(sum, n int) string {
	if n == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(sum)/float64(n), 'f', 2, 64)
}
