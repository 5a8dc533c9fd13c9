package gui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/notnil/chess"
	"github.com/rivo/tview"

	"github.com/qnkhuat/chessbridge/pkg/display"
	"github.com/qnkhuat/chessbridge/pkg/eval"
)

const (
	numrows        = 8
	numcols        = 8
	visibleMoves   = 12
	meterCells     = 20
	meterRoundStep = 5.0
)

// squareBg returns the theme's color corresponding to the square
func squareBg(sq chess.Square, t Theme) tcell.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return t.SquareDark
	}
	return t.SquareLight
}

// posToSquare maps a table cell to a board square. Column 0 holds the rank
// labels and the last row holds the file labels.
func posToSquare(row, col int, flip bool) chess.Square {
	rank := numrows - row - 1
	file := col - 1
	if flip {
		rank = row
		file = numcols - col
	}
	return chess.Square(rank*8 + file)
}

// renderBoard draws the position into table, highlighting the last move and
// a king in check.
func renderBoard(table *tview.Table, s display.Snapshot, t Theme, flip bool) {
	var board *chess.Board
	if s.Position != nil {
		board = s.Position.Board()
	} else {
		board = chess.StartingPosition().Board()
	}
	turn := s.Turn()

	for r := 0; r <= numrows; r++ {
		for f := 0; f <= numcols; f++ {
			if f == 0 && r != numrows { // draw rank square
				rank := posToSquare(r, 1, flip).Rank()
				table.SetCell(r, f, tview.NewTableCell(rank.String()).
					SetAlign(tview.AlignCenter).
					SetTextColor(t.Rank).
					SetSelectable(false))
				continue
			}

			if r == numrows { // draw file square
				text := ""
				if f > 0 {
					text = posToSquare(0, f, flip).File().String()
				}
				table.SetCell(r, f, tview.NewTableCell(text).
					SetAlign(tview.AlignCenter).
					SetTextColor(t.File).
					SetSelectable(false))
				continue
			}

			sq := posToSquare(r, f, flip)
			p := board.Piece(sq)
			bg := squareBg(sq, t)
			if s.IsHighlighted(sq) {
				bg = t.SquareHigh
			}
			if s.Check && p.Type() == chess.King && p.Color() == turn {
				bg = t.SquareCheck
			}

			fg := t.White
			if p.Color() == chess.Black {
				fg = t.Black
			}
			table.SetCell(r, f, tview.NewTableCell(" "+p.String()+" ").
				SetAlign(tview.AlignCenter).
				SetBackgroundColor(bg).
				SetTextColor(fg).
				SetSelectable(false))
		}
	}
}

// moveText renders the most recent move pairs, the way a score sheet reads.
func moveText(moves []string, t Theme) string {
	rows := display.MovePairs(moves)
	if len(rows) > visibleMoves {
		rows = rows[len(rows)-visibleMoves:]
	}
	return colorTag(t.MoveBox) + strings.Join(rows, "\n")
}

// RoundNearest rounds v to the nearest multiple of step
func RoundNearest(v, step float64) float64 {
	return math.Round(v/step) * step
}

// scoreMeter draws a horizontal bar filled in proportion to white's winning
// chances. The meter is low resolution so values like 49.25 are rounded to
// 50 rather than showing as a loss.
func scoreMeter(cp int, t Theme) string {
	winProb := RoundNearest(eval.WinProbability(cp)*100, meterRoundStep)
	filled := int(math.Round(winProb / 100 * meterCells))

	color := t.MeterNeutral
	if winProb < 50 {
		color = t.MeterLose
	} else if winProb > 50 {
		color = t.MeterWin
	}

	return colorTag(color) + strings.Repeat("█", filled) +
		colorTag(t.MeterBase) + strings.Repeat("█", meterCells-filled)
}

// scoreText displays the current evaluation and, once the game has ended,
// how it ended.
func scoreText(s display.Snapshot, t Theme) string {
	var b strings.Builder
	b.WriteString(colorTag(t.Score))
	if s.HasEval {
		fmt.Fprintf(&b, "%s  cp=%d, pct=%.1f\n", eval.Format(s.Eval), s.Eval, eval.WinProbability(s.Eval)*100)
		b.WriteString(scoreMeter(s.Eval, t))
	} else {
		b.WriteString("evaluating…\n")
		b.WriteString(scoreMeter(0, t))
	}
	b.WriteString(colorTag(t.Score))

	if s.Over() {
		fmt.Fprintf(&b, "\n%s (%s)", s.Outcome, s.Method)
	} else if s.Check {
		b.WriteString("\ncheck")
	}
	return b.String()
}

// turnText names the side to move with the time both sides have used.
func turnText(gs *GameState, now time.Time) string {
	s := gs.Snapshot
	nextPlayer := "White to move"
	if s.Turn() == chess.Black {
		nextPlayer = "Black to move"
	}
	if s.Over() {
		nextPlayer = "Game over"
	}
	return fmt.Sprintf("%s%s   [-]white %s  black %s",
		colorTag(gs.Theme.Status), nextPlayer,
		gs.Clock.String(chess.White, now), gs.Clock.String(chess.Black, now))
}

func statusText(gs *GameState) string {
	return colorTag(gs.Theme.Status) + tview.Escape(gs.Status)
}

func logText(gs *GameState) string {
	return colorTag(gs.Theme.Log) + tview.Escape(strings.Join(gs.Logs, "\n"))
}
