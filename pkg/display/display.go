// Package display carries game state from the bridge loop to whatever is
// showing it. Nothing here ever blocks the producer.
package display

import (
	"time"

	"github.com/notnil/chess"
)

// Snapshot is a copy of the game state taken after a mutation. The position
// belongs to the snapshot alone.
type Snapshot struct {
	FEN      string
	Position *chess.Position
	LastMove *chess.Move // nil after a reset
	Moves    []string
	Check    bool
	Outcome  chess.Outcome
	Method   chess.Method
	Eval     int // white point of view, centipawns
	HasEval  bool
	Taken    time.Time
}

// Turn returns the side to move.
func (s Snapshot) Turn() chess.Color {
	if s.Position == nil {
		return chess.White
	}
	return s.Position.Turn()
}

// Over reports whether the game has ended. The zero Snapshot is a game
// that has not started.
func (s Snapshot) Over() bool {
	return s.Outcome != "" && s.Outcome != chess.NoOutcome
}

// IsHighlighted reports whether sq is an end of the last move.
func (s Snapshot) IsHighlighted(sq chess.Square) bool {
	return s.LastMove != nil && (s.LastMove.S1() == sq || s.LastMove.S2() == sq)
}

// Sink receives updates from the bridge loop. Implementations must return
// immediately.
type Sink interface {
	Publish(Snapshot)
	SetStatus(string)
	Log(string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(Snapshot) {}
func (Nop) SetStatus(string) {}
func (Nop) Log(string)       {}

// Tee fans every update out to several sinks.
type Tee []Sink

func (t Tee) Publish(s Snapshot) {
	for _, sink := range t {
		sink.Publish(s)
	}
}

func (t Tee) SetStatus(status string) {
	for _, sink := range t {
		sink.SetStatus(status)
	}
}

func (t Tee) Log(line string) {
	for _, sink := range t {
		sink.Log(line)
	}
}
