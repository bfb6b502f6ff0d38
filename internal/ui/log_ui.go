package ui

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// LogUI renders the game to a structured logger. Countdown updates arrive
// every dealer tick, so they are throttled to whole-second changes; all
// other callbacks log as they come.
type LogUI struct {
	log *logrus.Entry

	lastCountdownSec atomic.Int64
}

// NewLogUI wraps logger into a display surface.
func NewLogUI(logger *logrus.Logger) *LogUI {
	u := &LogUI{log: logger.WithField("component", "ui")}
	u.lastCountdownSec.Store(-1)
	return u
}

func (u *LogUI) SetCountdown(remaining time.Duration, warn bool) {
	if remaining < 0 {
		remaining = 0
	}
	sec := int64(remaining / time.Second)
	if u.lastCountdownSec.Swap(sec) == sec {
		return
	}
	entry := u.log.WithFields(logrus.Fields{"remaining": remaining.Truncate(time.Second), "warn": warn})
	if warn {
		entry.Warn("countdown")
	} else {
		entry.Info("countdown")
	}
}

func (u *LogUI) SetScore(player, score int) {
	u.log.WithFields(logrus.Fields{"player": player, "score": score}).Info("score")
}

func (u *LogUI) SetFreeze(player int, remaining time.Duration) {
	if remaining <= 0 {
		return
	}
	u.log.WithFields(logrus.Fields{"player": player, "remaining": remaining.Truncate(time.Millisecond)}).Debug("frozen")
}

func (u *LogUI) ShowHints(slotSets [][]int) {
	u.log.WithField("sets", slotSets).Info("hints")
}

func (u *LogUI) AnnounceWinners(players []int) {
	u.log.WithField("winners", players).Info("game over")
}

func (u *LogUI) PlaceCard(slot, card int) {
	u.log.WithFields(logrus.Fields{"slot": slot, "card": card}).Debug("card placed")
}

func (u *LogUI) RemoveCard(slot int) {
	u.log.WithField("slot", slot).Debug("card removed")
}

func (u *LogUI) PlaceToken(player, slot int) {
	u.log.WithFields(logrus.Fields{"player": player, "slot": slot}).Debug("token placed")
}

func (u *LogUI) RemoveToken(player, slot int) {
	u.log.WithFields(logrus.Fields{"player": player, "slot": slot}).Debug("token removed")
}
