package gui

import (
	"fmt"
	"time"

	"github.com/notnil/chess"

	"github.com/qnkhuat/chessbridge/pkg/display"
)

const maxLogLines = 200

// GameState encapsulates everything the screen shows
type GameState struct {
	Snapshot display.Snapshot // last published game state
	Status   string           // status line
	Logs     []string         // log panel, oldest first
	Clock    *Clock           // time used per side
	Flip     bool             // draw black at the bottom
	Theme    Theme            // Theme
	changed  bool
}

func NewGameState(t Theme) *GameState {
	return &GameState{
		Snapshot: display.Snapshot{Position: chess.StartingPosition(), Outcome: chess.NoOutcome},
		Status:   "Starting…",
		Clock:    NewClock(),
		Theme:    t,
	}
}

// Apply folds one drained update into the state and reports whether
// anything visible changed.
func (gs *GameState) Apply(u display.Update, now time.Time) bool {
	if u.Snapshot != nil {
		gs.snapshot(*u.Snapshot)
	}
	if u.Status != nil && *u.Status != gs.Status {
		gs.Status = *u.Status
		gs.changed = true
	}
	for _, line := range u.Logs {
		gs.Logs = append(gs.Logs, fmt.Sprintf("[%s] %s", now.Format("15:04:05"), line))
		gs.changed = true
	}
	if len(gs.Logs) > maxLogLines {
		gs.Logs = gs.Logs[len(gs.Logs)-maxLogLines:]
	}

	changed := gs.changed
	gs.changed = false
	return changed
}

func (gs *GameState) snapshot(s display.Snapshot) {
	prev := gs.Snapshot
	gs.Snapshot = s
	gs.changed = true

	taken := s.Taken
	if taken.IsZero() {
		taken = time.Now()
	}

	switch {
	case len(s.Moves) == 0:
		gs.Clock.Reset(s.Turn(), taken)
	case s.Over():
		gs.Clock.Pause(taken)
	case len(s.Moves) != len(prev.Moves):
		gs.Clock.Switch(s.Turn(), taken)
	}
}
