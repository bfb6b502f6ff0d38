package game

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/or-Ben-Tzur/SetGame/engine"
	"github.com/or-Ben-Tzur/SetGame/internal/config"
	"github.com/or-Ben-Tzur/SetGame/internal/ui"
)

// Oracle decides match legality. It is pure and stateless; engine.Rules is
// the stock implementation.
type Oracle interface {
	// IsValidMatch reports whether cards form a legal match.
	IsValidMatch(cards []engine.Card) bool
	// FindMatches enumerates legal matches among cards, stopping after
	// limit matches (limit <= 0 means all).
	FindMatches(cards []engine.Card, limit int) [][]engine.Card
}

// Dealer owns the deck and coordinates the game: it deals, waits for claims
// or the turn timeout, resolves claims in submission order, replenishes the
// layout, and drives termination and the winner announcement.
type Dealer struct {
	ID uuid.UUID

	cfg     config.Config
	oracle  Oracle
	display ui.UI
	log     *logrus.Entry

	table   *Table
	players []*Player

	// deck holds the cards not currently on the table. Dealer goroutine
	// only. Cards leave it permanently when a match consumes them.
	deck []engine.Card

	claims *claimQueue

	// staged holds the slots of the last validated match; they are
	// cleared and refilled together on the next replenish so every
	// player's token housekeeping happens atomically with the removal.
	staged []int

	// reshuffleAt is the deadline after which the whole layout is
	// reshuffled. Dealer goroutine only.
	reshuffleAt time.Time

	rng *rand.Rand

	terminated atomic.Bool
	done       chan struct{} // closed by Terminate to interrupt waits
	runDone    chan struct{} // closed when Run exits
}

// NewDealer builds a dealer, its table and its players. Run starts the game.
func NewDealer(cfg config.Config, oracle Oracle, display ui.UI, logger *logrus.Logger) (*Dealer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if display == nil {
		display = ui.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	d := &Dealer{
		ID:      uuid.New(),
		cfg:     cfg,
		oracle:  oracle,
		display: display,
		table:   NewTable(cfg.TableSize, cfg.DeckSize(), cfg.Players, display),
		claims:  newClaimQueue(cfg.Players),
		deck:    make([]engine.Card, cfg.DeckSize()),
		rng:     rand.New(rand.NewSource(seed)),
		done:    make(chan struct{}),
		runDone: make(chan struct{}),
	}
	d.log = logger.WithField("game", d.ID)
	for i := range d.deck {
		d.deck[i] = engine.Card(i)
	}
	for i := 0; i < cfg.Players; i++ {
		d.players = append(d.players, newPlayer(i, i < cfg.HumanPlayers, cfg, d.table, d, display, logger, seed+int64(i)+1))
	}
	return d, nil
}

// Player returns the player with the given id.
func (d *Dealer) Player(id int) *Player { return d.players[id] }

// Run is the dealer's main loop. It starts every player, then repeats
// deal → await → check → replenish until no legal match remains anywhere
// or Terminate is called, then shuts everything down and announces the
// winners. Blocks until the game is fully over.
func (d *Dealer) Run() {
	defer close(d.runDone)
	d.log.Info("dealer starting")

	for _, p := range d.players {
		go p.Run()
	}

	for !d.shouldFinish() {
		d.table.Mu.Lock()
		d.returnAllCardsLocked()
		d.dealLocked()
		if d.cfg.Hints {
			d.showHintsLocked()
		}
		d.table.Mu.Unlock()

		d.timerLoop()
		d.updateCountdown(true)
	}
	d.shutdown()
}

// Terminate requests game termination. It interrupts the dealer's wait;
// Run performs the actual shutdown. Safe to call more than once.
func (d *Dealer) Terminate() {
	if d.terminated.CompareAndSwap(false, true) {
		close(d.done)
	}
}

// Done is closed once Run has fully exited.
func (d *Dealer) Done() <-chan struct{} { return d.runDone }

// timerLoop runs one turn: it waits for claims or ticks until the
// reshuffle deadline, resolving claims in FIFO order and replenishing the
// layout after each one, while keeping the countdown display live.
func (d *Dealer) timerLoop() {
	d.reshuffleAt = time.Now().Add(d.cfg.TurnTimeout)
	for !d.terminated.Load() && time.Now().Before(d.reshuffleAt) {
		d.awaitClaimOrTick()

		d.table.Mu.Lock()
		scored := d.resolveClaim()
		d.updateCountdown(scored)
		d.clearMatchedSlotsLocked()
		d.dealLocked()
		if scored && d.cfg.Hints {
			d.showHintsLocked()
		}
		d.table.Mu.Unlock()

		// A consumed match can exhaust the card pool; end the turn early
		// so the outer loop can notice instead of idling to the deadline.
		if scored && d.exhausted() {
			return
		}
	}
}

// awaitClaimOrTick parks until a claim arrives, termination is requested,
// or one tick elapses. The bounded tick keeps the countdown responsive.
func (d *Dealer) awaitClaimOrTick() {
	if d.claims.len() > 0 {
		return
	}
	timer := time.NewTimer(d.cfg.Tick)
	defer timer.Stop()
	select {
	case <-d.claims.wakeCh():
	case <-d.done:
	case <-timer.C:
	}
}

// claimMatch registers a completed candidate set from a player and wakes
// the dealer. Called from the player's goroutine while it holds the table
// read lock, which orders it against reshuffles.
func (d *Dealer) claimMatch(playerID int) {
	p := d.players[playerID]
	p.pending.Store(true)
	d.claims.push(playerID)
	d.log.WithField("player", playerID).Debug("claim queued")
}

// resolveClaim pops and resolves the oldest claim, if any. Reports whether
// a point was scored (which also resets the turn deadline). Caller holds
// the table write lock.
func (d *Dealer) resolveClaim() bool {
	id, ok := d.claims.pop()
	if !ok {
		return false
	}
	p := d.players[id]

	slots := p.tokenSlotsLocked()
	cards := make([]engine.Card, 0, len(slots))
	for _, slot := range slots {
		if c, present := d.table.CardAt(slot); present {
			cards = append(cards, c)
		}
	}

	// Unblock the claimant before the verdict; the freeze from Point or
	// Penalty takes over from the pending-check block.
	p.cancelCheck()

	if len(cards) != d.cfg.MatchSize {
		// Tokens vanished between claim and check. Cancellation on
		// token removal should make this unreachable; resolve without
		// a verdict rather than punish the player.
		d.log.WithFields(logrus.Fields{"player": id, "cards": len(cards)}).Warn("claim with incomplete candidate set")
		return false
	}

	if d.oracle.IsValidMatch(cards) {
		d.log.WithFields(logrus.Fields{"player": id, "slots": slots}).Info("valid match")
		p.Point()
		d.staged = append([]int(nil), slots...)
		return true
	}
	d.log.WithFields(logrus.Fields{"player": id, "slots": slots}).Info("invalid match")
	// The failed candidate set is spent: clear its tokens so the player
	// starts over after the penalty freeze. The layout is untouched.
	for _, slot := range slots {
		p.removeTokenLocked(slot)
	}
	p.Penalty()
	return false
}

// clearMatchedSlotsLocked removes the cards of the last validated match.
// Every player's token on those slots goes first — and any pending claim
// that loses a token this way is cancelled, verdict-free — so no token
// ever references a removed card. Caller holds the table write lock.
func (d *Dealer) clearMatchedSlotsLocked() {
	if len(d.staged) == 0 {
		return
	}
	for _, slot := range d.staged {
		for _, p := range d.players {
			if p.removeTokenLocked(slot) {
				if d.claims.remove(p.ID) {
					d.log.WithFields(logrus.Fields{"player": p.ID, "slot": slot}).Debug("claim cancelled, slot matched away")
					p.cancelCheck()
				}
			}
		}
		d.table.RemoveCard(slot) // consumed for good, not returned to the deck
	}
	d.staged = nil
}

// dealLocked fills every empty slot with a random card from the deck.
// Caller holds the table write lock.
func (d *Dealer) dealLocked() {
	for slot := 0; slot < d.table.Slots(); slot++ {
		if _, occupied := d.table.CardAt(slot); occupied {
			continue
		}
		if len(d.deck) == 0 {
			return
		}
		i := d.rng.Intn(len(d.deck))
		card := d.deck[i]
		d.deck = append(d.deck[:i], d.deck[i+1:]...)
		d.table.PlaceCard(card, slot)
	}
}

// returnAllCardsLocked reshuffles: every pending claim is cancelled, every
// token removed, and every card returned to the deck. Caller holds the
// table write lock.
func (d *Dealer) returnAllCardsLocked() {
	for _, p := range d.players {
		d.claims.remove(p.ID)
		p.cancelCheck()
	}
	for slot := 0; slot < d.table.Slots(); slot++ {
		for _, p := range d.players {
			p.removeTokenLocked(slot)
		}
		if c, occupied := d.table.CardAt(slot); occupied {
			d.deck = append(d.deck, c)
			d.table.RemoveCard(slot)
		}
	}
	d.staged = nil
}

// updateCountdown refreshes the countdown display, optionally resetting
// the turn deadline first (on a scored claim or a fresh deal).
func (d *Dealer) updateCountdown(reset bool) {
	if reset {
		d.reshuffleAt = time.Now().Add(d.cfg.TurnTimeout)
	}
	left := time.Until(d.reshuffleAt)
	if left < 0 {
		left = 0
	}
	d.display.SetCountdown(left, left <= d.cfg.TurnWarning)
}

// showHintsLocked displays the slot groups currently forming legal
// matches. Caller holds the table write lock.
func (d *Dealer) showHintsLocked() {
	layout := d.table.Layout()
	cards := make([]engine.Card, len(layout))
	slotOf := make(map[engine.Card]int, len(layout))
	for i, sc := range layout {
		cards[i] = sc.Card
		slotOf[sc.Card] = sc.Slot
	}
	matches := d.oracle.FindMatches(cards, 0)
	sets := make([][]int, len(matches))
	for i, m := range matches {
		set := make([]int, len(m))
		for j, c := range m {
			set[j] = slotOf[c]
		}
		sets[i] = set
	}
	d.display.ShowHints(sets)
}

// shouldFinish reports whether the game is over: termination was requested
// or no legal match exists in the layout and deck combined.
func (d *Dealer) shouldFinish() bool {
	return d.terminated.Load() || d.exhausted()
}

// exhausted reports whether the remaining card pool holds no legal match.
func (d *Dealer) exhausted() bool {
	d.table.Mu.RLock()
	layout := d.table.Layout()
	d.table.Mu.RUnlock()

	pool := make([]engine.Card, 0, len(layout)+len(d.deck))
	for _, sc := range layout {
		pool = append(pool, sc.Card)
	}
	pool = append(pool, d.deck...)
	return len(d.oracle.FindMatches(pool, 1)) == 0
}

// shutdown terminates every player, returns the layout to the deck and
// announces the winners. Run calls it exactly once.
func (d *Dealer) shutdown() {
	d.log.Info("dealer shutting down")
	d.terminated.Store(true)

	for _, p := range d.players {
		p.Terminate()
	}

	d.table.Mu.Lock()
	d.returnAllCardsLocked()
	d.table.Mu.Unlock()

	d.announceWinners()
	d.log.Info("dealer terminated")
}

// announceWinners reports every player holding the maximum score, ties
// included.
func (d *Dealer) announceWinners() {
	maxScore := 0
	var winners []int
	for _, p := range d.players {
		switch s := p.Score(); {
		case s > maxScore:
			maxScore = s
			winners = []int{p.ID}
		case s == maxScore:
			winners = append(winners, p.ID)
		}
	}
	d.log.WithFields(logrus.Fields{"winners": winners, "score": maxScore}).Info("winners")
	d.display.AnnounceWinners(winners)
}
