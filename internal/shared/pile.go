package shared

import (
	"sort"
	"strings"
)

// Pile is an ordered sequence of distinct cards. Order is kept for display and
// deterministic search results; it never defines membership.
type Pile []Card

// Clone returns an independent copy. The copy of an empty pile is empty, not nil.
func (p Pile) Clone() Pile {
	out := make(Pile, len(p))
	copy(out, p)
	return out
}

// Index returns the position of the card in the pile, or -1.
func (p Pile) Index(card Card) int {
	for i, c := range p {
		if c == card {
			return i
		}
	}
	return -1
}

// Contains reports whether the card is in the pile.
func (p Pile) Contains(card Card) bool {
	return p.Index(card) != -1
}

// ContainsAll reports whether every card of other is in the pile.
func (p Pile) ContainsAll(other Pile) bool {
	for _, c := range other {
		if !p.Contains(c) {
			return false
		}
	}
	return true
}

// Without returns a new pile with the given cards removed.
func (p Pile) Without(cards ...Card) Pile {
	out := make(Pile, 0, len(p))
	for _, c := range p {
		if !Pile(cards).Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// With returns a new pile with the cards appended.
func (p Pile) With(cards ...Card) Pile {
	out := make(Pile, 0, len(p)+len(cards))
	out = append(out, p...)
	return append(out, cards...)
}

// RankSum returns the sum of the ranks in the pile.
func (p Pile) RankSum() int {
	sum := 0
	for _, c := range p {
		sum += c.Rank
	}
	return sum
}

// PrimeSum returns the sum of the prime point values in the pile.
func (p Pile) PrimeSum() int {
	sum := 0
	for _, c := range p {
		sum += c.PrimePoints()
	}
	return sum
}

// OfSuit returns the cards of the given suit, in pile order.
func (p Pile) OfSuit(suit Suit) Pile {
	out := Pile{}
	for _, c := range p {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

// SameCards reports whether both piles hold the same cards, ignoring order.
func (p Pile) SameCards(other Pile) bool {
	if len(p) != len(other) {
		return false
	}
	return p.ContainsAll(other) && other.ContainsAll(p)
}

// Sorted returns a copy ordered by descending SortKey.
func (p Pile) Sorted() Pile {
	out := p.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() > out[j].SortKey()
	})
	return out
}

// HasDuplicates reports whether any card appears more than once.
func (p Pile) HasDuplicates() bool {
	seen := make(map[Card]bool, len(p))
	for _, c := range p {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}

func (p Pile) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
