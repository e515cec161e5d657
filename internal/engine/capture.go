package engine

import "scopa-game/internal/shared"

// FindCaptures returns every subset of table whose ranks sum to total.
//
// Only cards with rank <= total are candidates. The power set of the candidates
// is built by doubling: starting from the empty combination, each candidate is
// appended to a copy of every combination found so far. Results keep that
// enumeration order, which follows the order of table.
//
// The cost is O(2^k) in the number of candidates k. A table rarely holds more
// than ten cards, and the search assumes it stays in that range; do not feed it
// a larger pool.
func FindCaptures(total int, table shared.Pile) []shared.Pile {
	candidates := make(shared.Pile, 0, len(table))
	for _, c := range table {
		if c.Rank <= total {
			candidates = append(candidates, c)
		}
	}

	combos := []shared.Pile{{}}
	for _, card := range candidates {
		n := len(combos)
		for i := 0; i < n; i++ {
			combos = append(combos, combos[i].With(card))
		}
	}

	var matches []shared.Pile
	for _, combo := range combos {
		if combo.RankSum() == total {
			matches = append(matches, combo)
		}
	}
	return matches
}

// ValidCaptures returns the capture sets the engine accepts for card against the
// table of state, in canonical table order.
func ValidCaptures(state State, card shared.Card) []shared.Pile {
	return FindCaptures(card.Rank, state.Table.Sorted())
}
