package game

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/or-Ben-Tzur/SetGame/internal/config"
	"github.com/or-Ben-Tzur/SetGame/internal/ui"
)

// Player is one seat at the table. It runs its own goroutine consuming a
// bounded action queue; non-human players additionally run an input
// generator goroutine (see generator.go).
//
// State is split by writer: the token list follows the table locking
// discipline (read lock for the owner, write lock for the dealer); the
// pending/freeze/score/terminated flags are atomics written by the dealer
// and observed by the player and generator loops.
type Player struct {
	ID    int
	Human bool

	cfg     config.Config
	table   *Table
	dealer  *Dealer
	display ui.UI
	log     *logrus.Entry

	// actions is the bounded input queue (capacity = match size). A full
	// queue blocks the producer, not the actor loop.
	actions chan int

	// tokens holds the slots of this player's current candidate match.
	// Guarded by the table lock discipline.
	tokens []int

	pending     atomic.Bool  // claim submitted, awaiting the dealer's verdict
	frozenUntil atomic.Int64 // unix nanos; actions are dropped until then
	score       atomic.Int32
	terminated  atomic.Bool

	verdict  chan struct{} // 1-buffered wake-up from the dealer
	done     chan struct{} // closed by Terminate
	loopDone chan struct{} // closed when Run exits
	started  atomic.Bool

	genSeed int64
}

func newPlayer(id int, human bool, cfg config.Config, table *Table, dealer *Dealer, display ui.UI, logger *logrus.Logger, genSeed int64) *Player {
	return &Player{
		ID:      id,
		Human:   human,
		cfg:     cfg,
		table:   table,
		dealer:  dealer,
		display: display,
		log:     logger.WithFields(logrus.Fields{"game": dealer.ID, "player": id}),
		actions: make(chan int, cfg.MatchSize),
		tokens:  make([]int, 0, cfg.MatchSize),
		verdict: make(chan struct{}, 1),
		done:    make(chan struct{}),
		loopDone: make(chan struct{}),
		genSeed: genSeed,
	}
}

// Run is the player's main loop. It blocks while a claim verdict is pending
// or a freeze is active, then consumes the next queued action.
func (p *Player) Run() {
	defer close(p.loopDone)
	p.started.Store(true)
	p.log.Info("player starting")

	var wg sync.WaitGroup
	if !p.Human {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.generateActions(rand.New(rand.NewSource(p.genSeed)))
		}()
	}

	for !p.terminated.Load() {
		p.awaitReady()
		if p.terminated.Load() {
			break
		}
		p.step()
	}

	wg.Wait()
	p.log.Info("player terminated")
}

// SubmitAction enqueues a slot action from the input source. Actions are
// silently dropped while the player is frozen or terminated; a full queue
// blocks the caller until the actor drains it or the player terminates.
// Reports whether the action was accepted.
func (p *Player) SubmitAction(slot int) bool {
	if slot < 0 || slot >= p.table.Slots() {
		return false
	}
	if p.terminated.Load() || p.frozen() {
		return false
	}
	select {
	case p.actions <- slot:
		return true
	case <-p.done:
		return false
	}
}

// Point awards a point and starts the brief post-score freeze. Called by
// the dealer only, after a valid claim.
func (p *Player) Point() {
	p.frozenUntil.Store(time.Now().Add(p.cfg.PointFreeze).UnixNano())
	score := p.score.Add(1)
	p.pending.Store(false)
	p.display.SetScore(p.ID, int(score))
	p.publishFreeze()
	p.notify()
}

// Penalty starts the longer penalty freeze. Called by the dealer only,
// after an invalid claim.
func (p *Player) Penalty() {
	p.frozenUntil.Store(time.Now().Add(p.cfg.PenaltyFreeze).UnixNano())
	p.pending.Store(false)
	p.publishFreeze()
	p.notify()
}

// Score returns the player's current score.
func (p *Player) Score() int { return int(p.score.Load()) }

// Terminate stops the player and joins its loop (and its input generator,
// which the loop joins on exit). Safe to call more than once.
func (p *Player) Terminate() {
	if !p.terminated.CompareAndSwap(false, true) {
		if p.started.Load() {
			<-p.loopDone
		}
		return
	}
	p.pending.Store(false)
	p.frozenUntil.Store(0)
	close(p.done)
	if p.started.Load() {
		<-p.loopDone
	}
}

// cancelCheck clears the pending-verdict state and wakes the actor.
// Called by the dealer when a claim is resolved or cancelled.
func (p *Player) cancelCheck() {
	p.pending.Store(false)
	p.notify()
}

func (p *Player) notify() {
	select {
	case p.verdict <- struct{}{}:
	default:
	}
}

func (p *Player) frozen() bool {
	return time.Now().UnixNano() < p.frozenUntil.Load()
}

func (p *Player) freezeRemaining() time.Duration {
	rem := time.Duration(p.frozenUntil.Load() - time.Now().UnixNano())
	if rem < 0 {
		rem = 0
	}
	return rem
}

func (p *Player) publishFreeze() {
	p.display.SetFreeze(p.ID, p.freezeRemaining())
}

// awaitReady parks while the player is blocked on a verdict or frozen.
// The wait is interruptible (verdict wake-up, termination) and re-checks
// periodically because freeze expiry is a passive timer, not a signal.
func (p *Player) awaitReady() {
	for !p.terminated.Load() && (p.pending.Load() || p.frozen()) {
		p.publishFreeze()

		wait := p.cfg.FreezeRecheck
		if rem := p.freezeRemaining(); !p.pending.Load() && rem > 0 && rem < wait {
			wait = rem
		}
		timer := time.NewTimer(wait)
		select {
		case <-p.verdict:
		case <-p.done:
		case <-timer.C:
		}
		timer.Stop()
	}
	p.publishFreeze()
}

// step consumes and processes one queued action.
func (p *Player) step() {
	var slot int
	select {
	case slot = <-p.actions:
	case <-p.done:
		return
	}

	p.table.Mu.RLock()
	if p.table.HasToken(p.ID, slot) {
		// Toggling off frees a candidate slot. No card re-validation on
		// removal: the token is this player's own either way.
		p.removeTokenLocked(slot)
		p.table.Mu.RUnlock()
		return
	}
	if len(p.tokens) >= p.cfg.MatchSize {
		p.table.Mu.RUnlock()
		return
	}
	observed, ok := p.table.CardAt(slot)
	p.table.Mu.RUnlock()
	if !ok {
		return
	}

	// The dealer may swap the slot's card between the observation above
	// and the lock below; re-validate and drop the action if it changed.
	p.table.Mu.RLock()
	current, ok := p.table.CardAt(slot)
	if ok && current == observed && len(p.tokens) < p.cfg.MatchSize {
		p.table.PlaceToken(p.ID, slot)
		p.tokens = append(p.tokens, slot)
		if len(p.tokens) == p.cfg.MatchSize {
			// Still inside the read section: a reshuffle cannot slip
			// between the final token and the claim.
			p.dealer.claimMatch(p.ID)
			p.drainActions()
		}
	} else if ok {
		p.log.WithFields(logrus.Fields{"slot": slot, "observed": observed, "current": current}).Debug("stale action dropped")
	}
	p.table.Mu.RUnlock()
}

// drainActions discards queued input; it is stale once a claim is pending.
func (p *Player) drainActions() {
	for {
		select {
		case <-p.actions:
		default:
			return
		}
	}
}

// removeTokenLocked removes the player's token from slot, in both the
// player's list and the table index. Caller holds the table read lock
// (owner) or write lock (dealer). Reports whether a token was removed.
func (p *Player) removeTokenLocked(slot int) bool {
	for i, s := range p.tokens {
		if s == slot {
			p.tokens = append(p.tokens[:i], p.tokens[i+1:]...)
			p.table.RemoveToken(p.ID, slot)
			return true
		}
	}
	return false
}

// tokenSlotsLocked snapshots the player's token slots. Caller holds the
// table write lock.
func (p *Player) tokenSlotsLocked() []int {
	out := make([]int, len(p.tokens))
	copy(out, p.tokens)
	return out
}
