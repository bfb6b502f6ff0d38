package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/or-Ben-Tzur/SetGame/engine"
	"github.com/or-Ben-Tzur/SetGame/internal/config"
)

// recordingUI captures display callbacks for assertions.
type recordingUI struct {
	mu sync.Mutex

	scoreEvents []scoreEvent
	freezes     map[int]time.Duration
	winners     []int
	hints       [][][]int
	countdowns  int
}

type scoreEvent struct {
	player, score int
}

func newRecordingUI() *recordingUI {
	return &recordingUI{freezes: make(map[int]time.Duration)}
}

func (r *recordingUI) SetCountdown(time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdowns++
}

func (r *recordingUI) SetScore(player, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scoreEvents = append(r.scoreEvents, scoreEvent{player, score})
}

func (r *recordingUI) SetFreeze(player int, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freezes[player] = remaining
}

func (r *recordingUI) ShowHints(sets [][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = append(r.hints, sets)
}

func (r *recordingUI) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append([]int(nil), players...)
}

func (r *recordingUI) PlaceCard(int, int)   {}
func (r *recordingUI) RemoveCard(int)       {}
func (r *recordingUI) PlaceToken(int, int)  {}
func (r *recordingUI) RemoveToken(int, int) {}

func (r *recordingUI) scores() []scoreEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scoreEvent(nil), r.scoreEvents...)
}

func (r *recordingUI) announced() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.winners...)
}

// fakeOracle lets tests script verdicts and count oracle consultations.
type fakeOracle struct {
	validFn    func([]engine.Card) bool
	findFn     func([]engine.Card, int) [][]engine.Card
	validCalls atomic.Int32
}

func (f *fakeOracle) IsValidMatch(cards []engine.Card) bool {
	f.validCalls.Add(1)
	if f.validFn == nil {
		return false
	}
	return f.validFn(cards)
}

func (f *fakeOracle) FindMatches(cards []engine.Card, limit int) [][]engine.Card {
	if f.findFn == nil {
		return nil
	}
	return f.findFn(cards, limit)
}

// testConfig returns a config with durations short enough for tests.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Players = 2
	cfg.TurnTimeout = 200 * time.Millisecond
	cfg.TurnWarning = 50 * time.Millisecond
	cfg.PointFreeze = 40 * time.Millisecond
	cfg.PenaltyFreeze = 120 * time.Millisecond
	cfg.Tick = 2 * time.Millisecond
	cfg.FreezeRecheck = 5 * time.Millisecond
	cfg.GeneratorIdle = time.Millisecond
	cfg.Seed = 1
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newTestDealer builds a dealer without starting it.
func newTestDealer(t *testing.T, cfg config.Config, oracle Oracle, display *recordingUI) (*Dealer, *recordingUI) {
	t.Helper()
	if display == nil {
		display = newRecordingUI()
	}
	if oracle == nil {
		oracle = engine.NewRules(uint8(cfg.Features), uint8(cfg.MatchSize))
	}
	d, err := NewDealer(cfg, oracle, display, quietLogger())
	require.NoError(t, err)
	return d, display
}

// placeCards fills the given slots with the given cards, keeping the
// dealer's deck consistent (placed cards leave the deck).
func placeCards(t *testing.T, d *Dealer, slots []int, cards []engine.Card) {
	t.Helper()
	require.Equal(t, len(slots), len(cards))
	d.table.Mu.Lock()
	defer d.table.Mu.Unlock()
	for i, slot := range slots {
		d.table.PlaceCard(cards[i], slot)
		for j, c := range d.deck {
			if c == cards[i] {
				d.deck = append(d.deck[:j], d.deck[j+1:]...)
				break
			}
		}
	}
}

// submitAndStep feeds a slot action to the player and runs one actor step,
// standing in for the actor loop in deterministic tests.
func submitAndStep(t *testing.T, p *Player, slot int) {
	t.Helper()
	require.True(t, p.SubmitAction(slot))
	p.step()
}
