// internal/room/win.go
package room

import (
	"time"

	"github.com/sirupsen/logrus"
)

// recordWin buffers a win claim. Near-simultaneous claims from different
// players land in the same window so the round can resolve as a tie instead
// of favoring whichever message arrived first. Claims are idempotent per
// username within one window. The first claim arms the one-shot window
// timer. Assumes lock is held.
func (r *Room) recordWin(username string) {
	for _, w := range r.winners {
		if w == username {
			return
		}
	}
	r.winners = append(r.winners, username)

	if r.winTimer != nil {
		return
	}

	// Capture the handle so the callback can detect it went stale: a reset
	// or room destruction replaces/clears winTimer before expiry.
	var timer *time.Timer
	timer = time.AfterFunc(r.winWindow, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if r.closed || r.winTimer != timer {
			logrus.WithField("room", r.ID).Debug("stale win window timer, ignoring")
			return
		}
		winners := r.winners
		r.winners = nil
		r.winTimer = nil

		logrus.WithFields(logrus.Fields{"room": r.ID, "winners": winners}).Info("win window resolved")
		r.broadcast(Event{Type: EventGameOver, WinnerList: winners})
		if r.OnGameOverFn != nil {
			r.OnGameOverFn(r.ID, winners)
		}
	})
	r.winTimer = timer
}

// cancelWinWindow invalidates a pending win window and discards its buffered
// claims. Stop may race with an already-fired callback; the handle check in
// the callback covers that case. Assumes lock is held.
func (r *Room) cancelWinWindow() {
	if r.winTimer != nil {
		r.winTimer.Stop()
		r.winTimer = nil
	}
	r.winners = nil
}
