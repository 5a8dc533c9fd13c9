package gui

import (
	"fmt"
	"time"

	"github.com/notnil/chess"
)

// Clock counts the time each side has spent thinking. It is driven by the
// timestamps on snapshots, never by its own timer.
type Clock struct {
	used    map[chess.Color]time.Duration
	turn    chess.Color
	since   time.Time
	running bool
}

func NewClock() *Clock {
	return &Clock{used: map[chess.Color]time.Duration{}}
}

// Reset zeroes both sides and starts counting for turn at t.
func (cl *Clock) Reset(turn chess.Color, t time.Time) {
	cl.used = map[chess.Color]time.Duration{}
	cl.turn = turn
	cl.since = t
	cl.running = true
}

// Switch charges the side that just moved and starts the other one.
func (cl *Clock) Switch(turn chess.Color, t time.Time) {
	if cl.running && turn != cl.turn {
		cl.used[cl.turn] += t.Sub(cl.since)
		cl.since = t
	}
	cl.turn = turn
}

func (cl *Clock) Pause(t time.Time) {
	if cl.running {
		cl.used[cl.turn] += t.Sub(cl.since)
		cl.running = false
	}
}

func (cl *Clock) Used(c chess.Color, now time.Time) time.Duration {
	d := cl.used[c]
	if cl.running && c == cl.turn && now.After(cl.since) {
		d += now.Sub(cl.since)
	}
	return d
}

func (cl *Clock) String(c chess.Color, now time.Time) string {
	d := cl.Used(c, now)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
