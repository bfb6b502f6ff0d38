// Package game implements the concurrent core of the pattern-matching card
// game: a shared table, one dealer goroutine, and one goroutine per player
// (plus one per automated input generator).
//
// Locking discipline: Table.Mu is a reader/writer lock. Players hold the
// read side while they inspect a slot and place or remove their own token,
// so independent players act concurrently. The dealer holds the write side
// for every structural change (dealing, removing matched cards,
// reshuffling, cross-player token cleanup) and while resolving a claim.
// A player's token list is only ever mutated under the read lock by its
// owner or under the write lock by the dealer, so the lock also orders
// dealer reads of player token state.
package game

import (
	"sync"
	"sync/atomic"

	"github.com/or-Ben-Tzur/SetGame/engine"
	"github.com/or-Ben-Tzur/SetGame/internal/ui"
)

// Table is the shared layout: a fixed array of slots, each holding at most
// one card, plus a reverse card index and a slot×player token matrix.
// All methods assume the caller holds Mu (read side is enough for token
// operations, write side is required for card operations). Token cells are
// atomics, so concurrent placements on the same slot by different read-side
// players stay safe.
type Table struct {
	Mu sync.RWMutex

	slotToCard []engine.Card // NoCard when the slot is empty
	cardToSlot []int         // -1 when the card is not on the table
	tokens     [][]atomic.Bool

	display ui.UI
}

// SlotCard pairs a slot index with the card it holds.
type SlotCard struct {
	Slot int
	Card engine.Card
}

// NewTable creates an empty table with the given slot count, sized for a
// deck of deckSize cards and players seats.
func NewTable(slots, deckSize, players int, display ui.UI) *Table {
	t := &Table{
		slotToCard: make([]engine.Card, slots),
		cardToSlot: make([]int, deckSize),
		tokens:     make([][]atomic.Bool, slots),
		display:    display,
	}
	for i := range t.slotToCard {
		t.slotToCard[i] = engine.NoCard
		t.tokens[i] = make([]atomic.Bool, players)
	}
	for i := range t.cardToSlot {
		t.cardToSlot[i] = -1
	}
	return t
}

// Slots returns the number of layout slots. Immutable, safe without the lock.
func (t *Table) Slots() int { return len(t.slotToCard) }

// CardAt returns the card in slot, if any.
func (t *Table) CardAt(slot int) (engine.Card, bool) {
	c := t.slotToCard[slot]
	return c, c != engine.NoCard
}

// PlaceCard puts card into an empty slot. Write lock.
func (t *Table) PlaceCard(card engine.Card, slot int) {
	t.slotToCard[slot] = card
	t.cardToSlot[card] = slot
	t.display.PlaceCard(slot, int(card))
}

// RemoveCard clears a slot. Callers must have removed every token on the
// slot first; a token must never reference an empty slot. Write lock.
func (t *Table) RemoveCard(slot int) {
	card := t.slotToCard[slot]
	if card == engine.NoCard {
		return
	}
	t.slotToCard[slot] = engine.NoCard
	t.cardToSlot[card] = -1
	t.display.RemoveCard(slot)
}

// PlaceToken records player's token on slot. Read lock is sufficient: token
// placement is per-player and never conflicts with another player's tokens.
func (t *Table) PlaceToken(player, slot int) {
	t.tokens[slot][player].Store(true)
	t.display.PlaceToken(player, slot)
}

// RemoveToken removes player's token from slot, reporting whether one was
// there. Read lock (owner) or write lock (dealer).
func (t *Table) RemoveToken(player, slot int) bool {
	if !t.tokens[slot][player].CompareAndSwap(true, false) {
		return false
	}
	t.display.RemoveToken(player, slot)
	return true
}

// HasToken reports whether player has a token on slot.
func (t *Table) HasToken(player, slot int) bool {
	return t.tokens[slot][player].Load()
}

// CountCards returns the number of occupied slots.
func (t *Table) CountCards() int {
	n := 0
	for _, c := range t.slotToCard {
		if c != engine.NoCard {
			n++
		}
	}
	return n
}

// Layout returns the occupied slots and their cards, in slot order.
// Diagnostic snapshot used for the game-over check and the hint display.
func (t *Table) Layout() []SlotCard {
	out := make([]SlotCard, 0, len(t.slotToCard))
	for slot, c := range t.slotToCard {
		if c != engine.NoCard {
			out = append(out, SlotCard{Slot: slot, Card: c})
		}
	}
	return out
}
