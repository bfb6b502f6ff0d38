// Package ui defines the display surface the game core renders into.
// Implementations must be safe for concurrent use: the dealer, every player
// and every input generator call into it.
package ui

import "time"

// UI receives every observable state change. Layout callbacks (PlaceCard,
// RemoveCard, PlaceToken, RemoveToken) are invoked by the table under its
// lock and must not call back into the game.
type UI interface {
	// SetCountdown updates the turn countdown. warn is true once the
	// remaining time drops below the configured warning threshold.
	SetCountdown(remaining time.Duration, warn bool)

	// SetScore reports a player's new score.
	SetScore(player, score int)

	// SetFreeze reports a player's remaining freeze time; zero or less
	// means the player is free to act.
	SetFreeze(player int, remaining time.Duration)

	// ShowHints displays the slot groups currently forming legal matches.
	ShowHints(slotSets [][]int)

	// AnnounceWinners reports the final winner set, ties included.
	AnnounceWinners(players []int)

	PlaceCard(slot, card int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
}

// Nop is a UI that discards everything. Useful as a default and in tests.
type Nop struct{}

func (Nop) SetCountdown(time.Duration, bool)   {}
func (Nop) SetScore(int, int)                  {}
func (Nop) SetFreeze(int, time.Duration)       {}
func (Nop) ShowHints([][]int)                  {}
func (Nop) AnnounceWinners([]int)              {}
func (Nop) PlaceCard(int, int)                 {}
func (Nop) RemoveCard(int)                     {}
func (Nop) PlaceToken(int, int)                {}
func (Nop) RemoveToken(int, int)               {}
