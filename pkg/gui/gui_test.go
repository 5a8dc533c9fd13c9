package gui

import (
	"strings"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/rivo/tview"

	"github.com/qnkhuat/chessbridge/pkg/display"
)

func snapshotAfter(t testing.TB, moves ...string) display.Snapshot {
	t.Helper()

	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	var sans []string
	for _, m := range moves {
		pos := g.Position()
		if err := g.MoveStr(m); err != nil {
			t.Fatalf("move %s: %s", m, err)
		}
		played := g.Moves()[len(g.Moves())-1]
		sans = append(sans, chess.AlgebraicNotation{}.Encode(pos, played))
	}

	s := display.Snapshot{
		FEN:      g.Position().String(),
		Position: g.Position(),
		Moves:    sans,
		Outcome:  g.Outcome(),
		Method:   g.Method(),
		Taken:    time.Now(),
	}
	if n := len(g.Moves()); n > 0 {
		s.LastMove = g.Moves()[n-1]
		s.Check = s.LastMove.HasTag(chess.Check)
	}
	return s
}

func TestPosToSquare(t *testing.T) {
	for _, d := range []struct {
		row, col int
		flip     bool
		want     chess.Square
	}{
		{0, 1, false, chess.A8},
		{7, 1, false, chess.A1},
		{7, 8, false, chess.H1},
		{0, 1, true, chess.H1},
		{7, 8, true, chess.A8},
		{3, 5, false, chess.E5},
	} {
		if got := posToSquare(d.row, d.col, d.flip); got != d.want {
			t.Errorf("posToSquare(%d, %d, %v) = %s, want %s", d.row, d.col, d.flip, got, d.want)
		}
	}
}

func TestRenderBoard(t *testing.T) {
	s := snapshotAfter(t, "e2e4")
	table := tview.NewTable()
	renderBoard(table, s, ThemeBasic, false)

	if table.GetRowCount() != numrows+1 || table.GetColumnCount() != numcols+1 {
		t.Fatalf("table is %dx%d", table.GetRowCount(), table.GetColumnCount())
	}

	// e4 is row 4, column 5
	e4 := table.GetCell(4, 5)
	if strings.TrimSpace(e4.Text) != chess.WhitePawn.String() {
		t.Errorf("e4 shows %q", e4.Text)
	}
	if e4.BackgroundColor != ThemeBasic.SquareHigh {
		t.Error("e4 is not highlighted")
	}
	if e2 := table.GetCell(6, 5); e2.BackgroundColor != ThemeBasic.SquareHigh || strings.TrimSpace(e2.Text) != "" {
		t.Errorf("e2 = %q, highlighted %v", e2.Text, e2.BackgroundColor == ThemeBasic.SquareHigh)
	}
	if d2 := table.GetCell(6, 4); d2.BackgroundColor == ThemeBasic.SquareHigh {
		t.Error("d2 should not be highlighted")
	}

	if got := table.GetCell(0, 0).Text; got != "8" {
		t.Errorf("top rank label = %q", got)
	}
	if got := table.GetCell(numrows, 1).Text; got != "a" {
		t.Errorf("first file label = %q", got)
	}

	renderBoard(table, s, ThemeBasic, true)
	if got := table.GetCell(0, 0).Text; got != "1" {
		t.Errorf("flipped top rank label = %q", got)
	}
	if got := table.GetCell(numrows, 1).Text; got != "h" {
		t.Errorf("flipped first file label = %q", got)
	}
}

func TestRenderCheck(t *testing.T) {
	s := snapshotAfter(t, "f2f3", "e7e5", "g2g4", "d8h4")
	table := tview.NewTable()
	renderBoard(table, s, ThemeBasic, false)

	// white king on e1
	if table.GetCell(7, 5).BackgroundColor != ThemeBasic.SquareCheck {
		t.Error("king in check is not highlighted")
	}

	text := scoreText(s, ThemeBasic)
	if !strings.Contains(text, "0-1 (Checkmate)") {
		t.Errorf("score text %q does not report the mate", text)
	}
}

func TestFreshStateInProgress(t *testing.T) {
	now := time.Now()
	for _, gs := range []*GameState{NewGameState(ThemeBasic), {Theme: ThemeBasic, Clock: NewClock()}} {
		if text := turnText(gs, now); !strings.Contains(text, "White to move") {
			t.Errorf("turn text before the first move = %q", text)
		}
		if text := scoreText(gs.Snapshot, gs.Theme); strings.Contains(text, "NoMethod") {
			t.Errorf("score text before the first move = %q", text)
		}
	}
}

func TestMoveText(t *testing.T) {
	var moves []string
	for i := 0; i < 30; i++ {
		moves = append(moves, "Nf3", "Nf6")
	}
	rows := strings.Split(moveText(moves, ThemeBasic), "\n")
	if len(rows) != visibleMoves {
		t.Fatalf("showed %d rows, want %d", len(rows), visibleMoves)
	}
	if !strings.HasSuffix(rows[len(rows)-1], "30. Nf3 Nf6") {
		t.Errorf("last row = %q", rows[len(rows)-1])
	}
}

func TestScoreMeter(t *testing.T) {
	count := func(s string) int { return strings.Count(s, "█") }

	for _, cp := range []int{-10000, -300, 0, 300, 10000} {
		if n := count(scoreMeter(cp, ThemeBasic)); n != meterCells {
			t.Errorf("meter for %d has %d cells", cp, n)
		}
	}

	even := scoreMeter(3, ThemeBasic)
	if !strings.HasPrefix(even, colorTag(ThemeBasic.MeterNeutral)+strings.Repeat("█", meterCells/2)+"[") {
		t.Errorf("near even meter = %q", even)
	}
	if !strings.HasPrefix(scoreMeter(500, ThemeBasic), colorTag(ThemeBasic.MeterWin)) {
		t.Error("winning meter is not in the win color")
	}
	if !strings.HasPrefix(scoreMeter(-500, ThemeBasic), colorTag(ThemeBasic.MeterLose)) {
		t.Error("losing meter is not in the lose color")
	}
}

func TestGameStateApply(t *testing.T) {
	gs := NewGameState(ThemeBasic)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if gs.Apply(display.Update{}, now) {
		t.Error("empty update reported a change")
	}

	status := "Waiting for board moves…"
	if !gs.Apply(display.Update{Status: &status, Logs: []string{"> MOVE:e2e4"}}, now) {
		t.Error("status update reported no change")
	}
	if gs.Status != status || len(gs.Logs) != 1 || gs.Logs[0] != "[12:00:00] > MOVE:e2e4" {
		t.Errorf("state after update: %q %v", gs.Status, gs.Logs)
	}
	if gs.Apply(display.Update{Status: &status}, now) {
		t.Error("repeated status reported a change")
	}

	for i := 0; i < maxLogLines+10; i++ {
		gs.Apply(display.Update{Logs: []string{"x"}}, now)
	}
	if len(gs.Logs) != maxLogLines {
		t.Errorf("kept %d log lines", len(gs.Logs))
	}

	s := snapshotAfter(t, "e2e4")
	if !gs.Apply(display.Update{Snapshot: &s}, now) || gs.Snapshot.FEN != s.FEN {
		t.Error("snapshot not applied")
	}
}

func TestClock(t *testing.T) {
	cl := NewClock()
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cl.Reset(chess.White, t0)
	cl.Switch(chess.Black, t0.Add(65*time.Second))
	cl.Switch(chess.White, t0.Add(75*time.Second))

	now := t0.Add(80 * time.Second)
	if got := cl.String(chess.White, now); got != "1:10" {
		t.Errorf("white used %s, want 1:10", got)
	}
	if got := cl.String(chess.Black, now); got != "0:10" {
		t.Errorf("black used %s, want 0:10", got)
	}

	cl.Pause(now)
	if got := cl.Used(chess.White, now.Add(time.Hour)); got != 70*time.Second {
		t.Errorf("paused clock kept running: %s", got)
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range []string{"basic", "green", "mono"} {
		th, err := ThemeByName(name)
		if err != nil || th.Name != name {
			t.Errorf("ThemeByName(%s) = %s, %v", name, th.Name, err)
		}
	}
	if _, err := ThemeByName("neon"); err == nil {
		t.Error("expected an error for an unknown theme")
	}
	if colorTag(ThemeBasic.MoveBox) != "[-]" {
		t.Errorf("default color tag = %q", colorTag(ThemeBasic.MoveBox))
	}
}

func BenchmarkRenderBoard(b *testing.B) {
	s := snapshotAfter(b, "e2e4", "e7e5", "g1f3", "b8c6", "f1b5")
	table := tview.NewTable()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderBoard(table, s, ThemeBasic, i%2 == 0)
	}
}
