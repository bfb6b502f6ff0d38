package engine

// Card is a packed uint8: one base-Options digit per feature. The numeric
// value of a card is also its deck index, so Card(n) for n in [0, DeckSize)
// enumerates the whole deck.
type Card uint8

// NoCard represents the absence of a card.
const NoCard Card = 0xFF

// Rules describes the card space and what counts as a legal match.
// Each card has Features independent features, each taking one of Options
// values. A legal match is exactly Options cards where every feature is
// either identical across all cards or pairwise distinct.
//
// The classic game is Features=4, Options=3 (81 cards, matches of 3).
type Rules struct {
	Features uint8
	Options  uint8
}

// NewRules constructs a Rules value. Arguments outside the representable
// range (DeckSize must fit a Card) are clamped to the classic 4x3 game.
func NewRules(features, options uint8) Rules {
	r := Rules{Features: features, Options: options}
	if features == 0 || options < 2 || r.DeckSize() > int(NoCard) {
		return Rules{Features: 4, Options: 3}
	}
	return r
}

// DeckSize returns Options^Features, the number of distinct cards.
func (r Rules) DeckSize() int {
	n := 1
	for i := uint8(0); i < r.Features; i++ {
		n *= int(r.Options)
	}
	return n
}

// Feature extracts feature i of c as a value in [0, Options).
func (r Rules) Feature(c Card, i uint8) uint8 {
	v := int(c)
	for ; i > 0; i-- {
		v /= int(r.Options)
	}
	return uint8(v % int(r.Options))
}

// Deck returns all cards in encoding order.
func (r Rules) Deck() []Card {
	deck := make([]Card, r.DeckSize())
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// Valid reports whether c is a card of this rule set.
func (r Rules) Valid(c Card) bool {
	return int(c) < r.DeckSize()
}
