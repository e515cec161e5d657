// Package scoring computes end-of-round points from the players' captured piles.
package scoring

import "scopa-game/internal/shared"

// Labels of the score details, in the order they are reported.
const (
	LabelScope      = "Scope"
	LabelCaptured   = "Captured"
	LabelDenari     = "Denari"
	LabelSetteBello = "Sette Bello"
	LabelPrimiera   = "Primiera"
)

// Detail is one scoring category for a player.
type Detail struct {
	Label string      `json:"label"`
	Value int         `json:"value"`
	Cards shared.Pile `json:"cards"`
}

// Score is the round result of a single player.
type Score struct {
	PlayerID string   `json:"player_id"`
	Details  []Detail `json:"details"`
	Total    int      `json:"total"`
}

// Detail returns the detail with the given label.
func (s Score) Detail(label string) (Detail, bool) {
	for _, d := range s.Details {
		if d.Label == label {
			return d, true
		}
	}
	return Detail{}, false
}

// Value returns the value of the detail with the given label, or 0.
func (s Score) Value(label string) int {
	d, _ := s.Detail(label)
	return d.Value
}

// Compute computes one Score per player, in player order. Only the captured piles
// and sweep counts matter; hands are ignored.
//
// Total is Scope plus Sette Bello plus one bonus point for each of Captured,
// Denari and Primiera in which the player ties for the highest value, as long
// as that value is above zero.
func Compute(players []shared.Player) []Score {
	scores := make([]Score, len(players))
	for i, p := range players {
		setteBello := shared.Pile{}
		if p.Captured.Contains(shared.SetteBello) {
			setteBello = shared.Pile{shared.SetteBello}
		}
		denari := p.Captured.OfSuit(shared.Denari)
		primiera := Primiera(p.Captured)

		scores[i] = Score{
			PlayerID: p.ID,
			Details: []Detail{
				{Label: LabelScope, Value: p.Scope, Cards: shared.Pile{}},
				{Label: LabelCaptured, Value: len(p.Captured), Cards: p.Captured.Clone()},
				{Label: LabelDenari, Value: len(denari), Cards: denari},
				{Label: LabelSetteBello, Value: len(setteBello), Cards: setteBello},
				{Label: LabelPrimiera, Value: primiera.PrimeSum(), Cards: primiera},
			},
		}
		scores[i].Total = p.Scope + len(setteBello)
	}

	for _, label := range []string{LabelCaptured, LabelDenari, LabelPrimiera} {
		best := 0
		for _, s := range scores {
			if v := s.Value(label); v > best {
				best = v
			}
		}
		if best == 0 {
			continue
		}
		for i := range scores {
			if scores[i].Value(label) == best {
				scores[i].Total++
			}
		}
	}
	return scores
}

// Primiera keeps the highest prime-valued card of each suit present in the pile.
// Within a suit the first such card in pile order wins a tie. Suits appear in
// the order they are first seen.
func Primiera(pile shared.Pile) shared.Pile {
	best := map[shared.Suit]int{}
	var out shared.Pile
	for _, c := range pile {
		i, seen := best[c.Suit]
		if !seen {
			best[c.Suit] = len(out)
			out = append(out, c)
			continue
		}
		if c.PrimePoints() > out[i].PrimePoints() {
			out[i] = c
		}
	}
	if out == nil {
		return shared.Pile{}
	}
	return out
}
