package game

import (
	"fmt"
	"sync"
)

// claimQueue is the bounded FIFO hand-off channel between players and the
// dealer. Capacity equals the player count; a player may have at most one
// claim outstanding, enforced here as a fail-fast contract check since
// player logic already guarantees it.
type claimQueue struct {
	mu      sync.Mutex
	waiting []int
	queued  []bool // per-player "claim currently in the queue" flag

	// wake is a 1-buffered signal the dealer selects on; pushing a claim
	// wakes the dealer immediately instead of waiting for its next tick.
	wake chan struct{}
}

func newClaimQueue(players int) *claimQueue {
	return &claimQueue{
		waiting: make([]int, 0, players),
		queued:  make([]bool, players),
		wake:    make(chan struct{}, 1),
	}
}

// push appends player's claim and wakes the dealer. Panics if the player
// already has a queued claim or the queue is somehow over capacity; both
// indicate broken player logic, not a runtime condition.
func (q *claimQueue) push(player int) {
	q.mu.Lock()
	if q.queued[player] {
		q.mu.Unlock()
		panic(fmt.Sprintf("claim queue: player %d already has a queued claim", player))
	}
	if len(q.waiting) >= len(q.queued) {
		q.mu.Unlock()
		panic(fmt.Sprintf("claim queue: overflow with %d claims for %d players", len(q.waiting)+1, len(q.queued)))
	}
	q.queued[player] = true
	q.waiting = append(q.waiting, player)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest claim.
func (q *claimQueue) pop() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.waiting) == 0 {
		return 0, false
	}
	player := q.waiting[0]
	q.waiting = q.waiting[1:]
	q.queued[player] = false
	return player, true
}

// remove cancels player's queued claim, if any, reporting whether one was
// removed. Used when a reshuffle or another player's match invalidates it.
func (q *claimQueue) remove(player int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.queued[player] {
		return false
	}
	q.queued[player] = false
	for i, id := range q.waiting {
		if id == player {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			break
		}
	}
	return true
}

func (q *claimQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *claimQueue) wakeCh() <-chan struct{} { return q.wake }
