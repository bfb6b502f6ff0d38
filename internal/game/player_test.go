package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/or-Ben-Tzur/SetGame/engine"
)

func TestSubmitActionRejections(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	p := d.Player(0)

	assert.False(t, p.SubmitAction(-1))
	assert.False(t, p.SubmitAction(p.table.Slots()))

	p.frozenUntil.Store(time.Now().Add(time.Minute).UnixNano())
	assert.False(t, p.SubmitAction(0), "frozen player must drop input")
	p.frozenUntil.Store(0)

	assert.True(t, p.SubmitAction(0))
}

func TestStepTogglesOwnToken(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	placeCards(t, d, []int{0}, []engine.Card{5})
	p := d.Player(0)

	submitAndStep(t, p, 0)
	assert.True(t, d.table.HasToken(p.ID, 0))
	assert.Equal(t, []int{0}, p.tokens)

	submitAndStep(t, p, 0)
	assert.False(t, d.table.HasToken(p.ID, 0))
	assert.Empty(t, p.tokens)
}

func TestStepDropsEmptySlotAction(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	p := d.Player(0)

	submitAndStep(t, p, 3)
	assert.Empty(t, p.tokens)
	assert.False(t, d.table.HasToken(p.ID, 3))
}

func TestCompletedCandidateSetTriggersClaim(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	placeCards(t, d, []int{0, 1, 2}, []engine.Card{0, 1, 2})
	p := d.Player(0)

	submitAndStep(t, p, 0)
	submitAndStep(t, p, 1)
	assert.False(t, p.pending.Load())
	assert.Equal(t, 0, d.claims.len())

	// Queue an extra action before the completing one; it must be
	// discarded as stale once the claim is submitted.
	require.True(t, p.SubmitAction(2))
	require.True(t, p.SubmitAction(0))
	p.step()

	assert.True(t, p.pending.Load())
	assert.Equal(t, 1, d.claims.len())
	assert.Len(t, p.tokens, 3)
	assert.Empty(t, p.actions, "queued actions must be drained on claim")
}

func TestPointAndPenaltyFreezeWindows(t *testing.T) {
	cfg := testConfig()
	d, display := newTestDealer(t, cfg, nil, nil)
	p := d.Player(0)

	p.pending.Store(true)
	p.Point()
	assert.False(t, p.pending.Load())
	assert.Equal(t, 1, p.Score())
	require.Equal(t, []scoreEvent{{0, 1}}, display.scores())
	pointRem := p.freezeRemaining()
	assert.Greater(t, pointRem, time.Duration(0))
	assert.LessOrEqual(t, pointRem, cfg.PointFreeze)

	p.pending.Store(true)
	p.Penalty()
	assert.False(t, p.pending.Load())
	assert.Equal(t, 1, p.Score(), "penalty must not change the score")
	penaltyRem := p.freezeRemaining()
	assert.Greater(t, penaltyRem, cfg.PointFreeze, "penalty freeze must outlast the point freeze")
	assert.LessOrEqual(t, penaltyRem, cfg.PenaltyFreeze)
}

func TestTerminateWithoutRun(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	p := d.Player(0)
	p.Terminate()
	p.Terminate() // idempotent
	assert.False(t, p.SubmitAction(0))
}

// TestTerminateUnblocksEveryWait starts a player in each blocking state and
// checks termination completes promptly.
func TestTerminateUnblocksEveryWait(t *testing.T) {
	cases := []struct {
		name  string
		setup func(p *Player)
	}{
		{"idle actor", func(p *Player) {}},
		{"blocked pending check", func(p *Player) { p.pending.Store(true) }},
		{"frozen", func(p *Player) {
			p.frozenUntil.Store(time.Now().Add(time.Hour).UnixNano())
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDealer(t, testConfig(), nil, nil)
			p := d.Player(0)
			tc.setup(p)
			go p.Run()
			time.Sleep(20 * time.Millisecond)

			finished := make(chan struct{})
			go func() {
				p.Terminate()
				close(finished)
			}()
			select {
			case <-finished:
			case <-time.After(2 * time.Second):
				t.Fatal("Terminate did not complete")
			}
		})
	}
}

// TestGeneratorBlocksWhilePending checks the automated input generator
// stops producing while a claim verdict is pending and resumes after.
func TestGeneratorBlocksWhilePending(t *testing.T) {
	d, _ := newTestDealer(t, testConfig(), nil, nil)
	slots := make([]int, d.table.Slots())
	cards := make([]engine.Card, len(slots))
	for i := range slots {
		slots[i] = i
		cards[i] = engine.Card(i)
	}
	placeCards(t, d, slots, cards)

	p := d.Player(1)
	require.False(t, p.Human)

	p.pending.Store(true)
	go p.Run()
	defer p.Terminate()
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, p.actions, "generator must not produce while blocked")

	p.cancelCheck()
	require.Eventually(t, func() bool {
		d.table.Mu.RLock()
		defer d.table.Mu.RUnlock()
		return len(p.tokens) > 0
	}, time.Second, time.Millisecond, "generator must resume after the verdict")
}
