package engine

import (
	"fmt"
	"math/rand/v2"

	"scopa-game/internal/shared"
)

const (
	TableCards   = 4 // Cards laid on the table at the start and on every refill
	HandCards    = 3 // Cards dealt to a player at the start and on every refill
	DefaultSeats = 2

	// Three or more tens on the opening table void the deal.
	maxOpeningTens = 2
)

// SupportedPlayers lists the player counts a round can be dealt for.
var SupportedPlayers = []int{2, 3, 4, 6}

// DealOptions configures Deal. The zero value deals a two-player round.
type DealOptions struct {
	Players   int        // 2, 3, 4 or 6
	PlayerIDs []string   // Optional; defaults to player-1..N
	Rand      *rand.Rand // Picks the starting turn; nil uses the global source
}

// Deal lays the first four cards on the table, hands consecutive groups of three
// to each player in seat order and leaves the rest as the draw pile. It never
// reshuffles: on ErrDealRejected the caller must shuffle and try again.
func Deal(cards shared.Pile, opts DealOptions) (State, error) {
	players := opts.Players
	if players == 0 {
		players = DefaultSeats
	}
	if !supported(players) {
		return State{}, fmt.Errorf("%w: %d", ErrInvalidPlayers, players)
	}
	if opts.PlayerIDs != nil && len(opts.PlayerIDs) != players {
		return State{}, fmt.Errorf("%w: %d ids for %d players", ErrInvalidPlayers, len(opts.PlayerIDs), players)
	}
	needed := TableCards + HandCards*players
	if len(cards) < needed {
		return State{}, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCards, len(cards), needed)
	}
	if cards.HasDuplicates() {
		return State{}, ErrDuplicateCard
	}
	for _, c := range cards {
		if !c.Valid() {
			return State{}, fmt.Errorf("%w: %v", ErrInvalidDeck, c)
		}
	}
	if len(cards) != shared.DeckSize || !cards.SameCards(shared.NewDeck()) {
		return State{}, fmt.Errorf("%w: %d of %d cards", ErrInvalidDeck, len(cards), shared.DeckSize)
	}

	table := cards[:TableCards].Clone()
	tens := 0
	for _, c := range table {
		if c.Rank == shared.MaxRank {
			tens++
		}
	}
	if tens > maxOpeningTens {
		return State{}, fmt.Errorf("%w: %v", ErrDealRejected, table)
	}

	seats := make([]shared.Player, players)
	next := TableCards
	for i := range seats {
		id := fmt.Sprintf("player-%d", i+1)
		if opts.PlayerIDs != nil {
			id = opts.PlayerIDs[i]
		}
		seats[i] = shared.NewPlayer(id)
		seats[i].Hand = cards[next : next+HandCards].Clone()
		next += HandCards
	}

	var turn int
	if opts.Rand != nil {
		turn = opts.Rand.IntN(players)
	} else {
		turn = rand.IntN(players)
	}

	return State{
		Phase:    PhaseInitial,
		Turn:     turn,
		DrawPile: cards[next:].Clone(),
		Table:    table,
		Players:  seats,
	}, nil
}

func supported(players int) bool {
	for _, n := range SupportedPlayers {
		if n == players {
			return true
		}
	}
	return false
}
