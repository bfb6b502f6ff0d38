package game

import (
	"math/rand"
	"time"
)

// generateActions is the automated input generator loop for a non-human
// player: it synthesizes uniformly random slot actions whenever the player
// can accept them, and parks briefly otherwise. A full action queue blocks
// the SubmitAction call itself, which is the intended producer back-pressure.
// Runs on its own goroutine, started and joined by Player.Run.
func (p *Player) generateActions(rng *rand.Rand) {
	p.log.Info("input generator starting")
	for {
		select {
		case <-p.done:
			p.log.Info("input generator terminated")
			return
		default:
		}

		if p.pending.Load() || p.frozen() {
			if !p.idle() {
				p.log.Info("input generator terminated")
				return
			}
			continue
		}

		slot := rng.Intn(p.table.Slots())
		if !p.SubmitAction(slot) {
			if !p.idle() {
				p.log.Info("input generator terminated")
				return
			}
		}
	}
}

// idle parks for the configured generator idle interval; false means the
// player terminated while parked.
func (p *Player) idle() bool {
	timer := time.NewTimer(p.cfg.GeneratorIdle)
	defer timer.Stop()
	select {
	case <-p.done:
		return false
	case <-timer.C:
		return true
	}
}
