// Package gui draws the board, the move list and the bridge's status in the
// terminal.
package gui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/qnkhuat/chessbridge/pkg/display"
)

const refreshInterval = 30 * time.Millisecond

// App owns the terminal. It reads updates from a mailbox on its own tick
// and never touches game state directly.
type App struct {
	App    *tview.Application
	Board  *tview.Table
	Layout *tview.Grid

	turn   *tview.TextView
	status *tview.TextView
	moves  *tview.TextView
	score  *tview.TextView
	logs   *tview.TextView

	mailbox *display.Mailbox
	state   *GameState
}

func New(mailbox *display.Mailbox, theme Theme) *App {
	a := &App{
		App:     tview.NewApplication(),
		Board:   tview.NewTable(),
		turn:    tview.NewTextView().SetDynamicColors(true),
		status:  tview.NewTextView().SetDynamicColors(true),
		moves:   tview.NewTextView().SetDynamicColors(true),
		score:   tview.NewTextView().SetDynamicColors(true),
		logs:    tview.NewTextView().SetDynamicColors(true),
		mailbox: mailbox,
		state:   NewGameState(theme),
	}

	a.Board.SetBorder(true).SetTitle(" Board ")
	a.moves.SetBorder(true).SetTitle(" Moves ")
	a.score.SetBorder(true).SetTitle(" Evaluation ")
	a.logs.SetBorder(true).SetTitle(" Link ")

	side := tview.NewGrid().
		SetRows(1, 2, -1, 5).
		SetColumns(0).
		AddItem(a.turn, 0, 0, 1, 1, 0, 0, false).
		AddItem(a.status, 1, 0, 1, 1, 0, 0, false).
		AddItem(a.moves, 2, 0, 1, 1, 0, 0, false).
		AddItem(a.score, 3, 0, 1, 1, 0, 0, false)

	a.Layout = tview.NewGrid().
		SetRows(-1, 12, 8, -1).
		SetColumns(-1, 31, 34, -1).
		AddItem(a.Board, 1, 1, 1, 1, 0, 0, true).
		AddItem(side, 1, 2, 1, 1, 0, 0, false).
		AddItem(a.logs, 2, 1, 1, 2, 0, 0, false)

	a.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape:
			a.App.Stop()
			return nil
		case event.Key() == tcell.KeyRune && event.Rune() == 'f':
			a.state.Flip = !a.state.Flip
			a.draw(time.Now())
			return nil
		}
		return event
	})

	a.draw(time.Now())
	return a
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.pump(ctx)
	go func() {
		<-ctx.Done()
		// queued so a stop that comes before the screen is up still lands
		a.App.QueueUpdate(a.App.Stop)
	}()

	return a.App.SetRoot(a.Layout, true).SetFocus(a.Board).Run()
}

// pump moves updates from the mailbox onto the screen.
func (a *App) pump(ctx context.Context) {
	tick := time.NewTicker(refreshInterval)
	defer tick.Stop()

	lastSecond := time.Now().Unix()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			u := a.mailbox.Drain()
			if u.Empty() && now.Unix() == lastSecond {
				continue
			}
			lastSecond = now.Unix()
			a.App.QueueUpdateDraw(func() {
				a.state.Apply(u, now)
				a.draw(now)
			})
		}
	}
}

func (a *App) draw(now time.Time) {
	gs := a.state
	renderBoard(a.Board, gs.Snapshot, gs.Theme, gs.Flip)
	a.turn.SetText(turnText(gs, now))
	a.status.SetText(statusText(gs))
	a.moves.SetText(moveText(gs.Snapshot.Moves, gs.Theme)).ScrollToEnd()
	a.score.SetText(scoreText(gs.Snapshot, gs.Theme))
	a.logs.SetText(logText(gs)).ScrollToEnd()
}
