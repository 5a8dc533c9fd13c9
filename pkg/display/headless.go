package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/qnkhuat/chessbridge/pkg/eval"
)

// Headless writes a plain running commentary, for when there is no terminal
// to draw a board on.
type Headless struct {
	w  io.Writer
	mu sync.Mutex

	status *color.Color
	move   *color.Color
	score  *color.Color
	over   *color.Color
	log    *color.Color
}

func NewHeadless(w io.Writer) *Headless {
	return &Headless{
		w:      w,
		status: color.New(color.FgCyan, color.Bold),
		move:   color.New(color.FgWhite, color.Bold),
		score:  color.New(color.FgHiBlack),
		over:   color.New(color.FgYellow, color.Bold),
		log:    color.New(color.FgHiBlack),
	}
}

func (h *Headless) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.LastMove == nil || len(s.Moves) == 0 {
		h.status.Fprintln(h.w, "New game")
		return
	}

	h.move.Fprint(h.w, MoveLabel(len(s.Moves), s.Moves[len(s.Moves)-1]))
	if s.Check {
		h.over.Fprint(h.w, " check")
	}
	if s.HasEval {
		h.score.Fprintf(h.w, " (%s)", eval.Format(s.Eval))
	}
	fmt.Fprintln(h.w)

	if s.Over() {
		h.over.Fprintf(h.w, "Game over: %s by %s\n", s.Outcome, s.Method)
	}
}

func (h *Headless) SetStatus(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Fprintln(h.w, status)
}

func (h *Headless) Log(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log.Fprintln(h.w, line)
}

// MoveLabel numbers the ply'th move the way a score sheet does:
// "1. e4" for white and "1... e5" for black.
func MoveLabel(ply int, text string) string {
	n := (ply + 1) / 2
	if ply%2 == 1 {
		return fmt.Sprintf("%d. %s", n, text)
	}
	return fmt.Sprintf("%d... %s", n, text)
}

// MovePairs lays out a history as score sheet rows: "1. e4 e5".
func MovePairs(moves []string) []string {
	rows := make([]string, 0, (len(moves)+1)/2)
	for i := 0; i < len(moves); i += 2 {
		row := fmt.Sprintf("%d. %s", i/2+1, moves[i])
		if i+1 < len(moves) {
			row += " " + moves[i+1]
		}
		rows = append(rows, row)
	}
	return rows
}
