// Package game owns the one authoritative chess position of a session.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/qnkhuat/chessbridge/pkg/eval"
	"github.com/qnkhuat/chessbridge/pkg/protocol"
)

var (
	ErrParse   = errors.New("game: unparseable move")
	ErrIllegal = errors.New("game: illegal move")
)

// Applied describes a move that was accepted and applied.
type Applied struct {
	Move    *chess.Move
	UCI     string
	Display string // algebraic notation relative to the position before the move
	From    chess.Square
	To      chess.Square
}

// Authority is the single writer of the game position. It is not safe for
// concurrent use; the bridge loop is its only caller.
type Authority struct {
	game    *chess.Game
	start   string
	history []string
	check   bool
}

// New returns an authority at the standard starting position.
func New() *Authority {
	a := &Authority{start: chess.StartingPosition().String()}
	a.Reset()
	return a
}

// NewFromFEN returns an authority seeded at an arbitrary position. Reset
// returns to this position, not to the standard one.
func NewFromFEN(fen string) (*Authority, error) {
	g, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}

	a := &Authority{start: g.Position().String()}
	a.Reset()
	return a, nil
}

// Apply validates moveText against the current position and applies it.
// On error the position is left untouched.
func (a *Authority) Apply(moveText string) (Applied, error) {
	text := strings.ToLower(strings.TrimSpace(moveText))
	if !protocol.IsMoveText(text) {
		return Applied{}, fmt.Errorf("%w: %q", ErrParse, moveText)
	}

	pos := a.game.Position()
	var move *chess.Move
	for _, m := range pos.ValidMoves() {
		if m.String() == text {
			move = m
			break
		}
	}
	if move == nil {
		return Applied{}, fmt.Errorf("%w: %s in %s", ErrIllegal, text, pos)
	}

	display := eval.MoveText(pos, move)
	if err := a.game.Move(move); err != nil {
		return Applied{}, fmt.Errorf("%w: %s", ErrIllegal, err)
	}

	a.history = append(a.history, display)
	a.check = move.HasTag(chess.Check)

	return Applied{Move: move, UCI: text, Display: display, From: move.S1(), To: move.S2()}, nil
}

// Reset restores the position the authority was seeded with and clears the
// history.
func (a *Authority) Reset() {
	g, err := gameFromFEN(a.start)
	if err != nil {
		// start was produced by the library
		panic(err)
	}
	a.game = g
	a.history = nil
	a.check = inCheck(a.game.Position())
}

// IsCheck reports whether the side to move is in check.
func (a *Authority) IsCheck() bool {
	return a.check
}

// IsGameOver reports checkmate, stalemate and the automatic draws
// (insufficient material, fivefold repetition, seventy-five move rule).
func (a *Authority) IsGameOver() bool {
	return a.game.Outcome() != chess.NoOutcome
}

func (a *Authority) Outcome() chess.Outcome {
	return a.game.Outcome()
}

func (a *Authority) Method() chess.Method {
	return a.game.Method()
}

func (a *Authority) Turn() chess.Color {
	return a.game.Position().Turn()
}

func (a *Authority) FEN() string {
	return a.game.Position().String()
}

// Position returns a private copy of the current position.
func (a *Authority) Position() *chess.Position {
	g, err := gameFromFEN(a.FEN())
	if err != nil {
		// FEN produced by the library always decodes
		panic(err)
	}
	return g.Position()
}

// History returns the display text of every move applied since the last
// reset.
func (a *Authority) History() []string {
	h := make([]string, len(a.history))
	copy(h, a.history)
	return h
}

func gameFromFEN(s string) (*chess.Game, error) {
	fen, err := chess.FEN(s)
	if err != nil {
		return nil, fmt.Errorf("game: bad FEN %q: %w", s, err)
	}
	return chess.NewGame(fen, chess.UseNotation(chess.UCINotation{})), nil
}

// inCheck is used for seeded positions where no move tag tells us whether
// the side to move is in check.
func inCheck(pos *chess.Position) bool {
	board := pos.Board()
	for sq, p := range board.SquareMap() {
		if p.Type() == chess.King && p.Color() == pos.Turn() {
			return attacked(board, sq, pos.Turn().Other())
		}
	}
	return false
}

var (
	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	bishopRays  = [][2]int{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
)

// attacked reports whether a piece of color by attacks sq. A pinned piece
// still attacks, so this does not go through move generation.
func attacked(board *chess.Board, sq chess.Square, by chess.Color) bool {
	file, rank := int(sq.File()), int(sq.Rank())
	at := func(df, dr int) (chess.Piece, bool) {
		f, r := file+df, rank+dr
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return chess.NoPiece, false
		}
		return board.Piece(chess.Square(r*8 + f)), true
	}
	is := func(p chess.Piece, types ...chess.PieceType) bool {
		if p == chess.NoPiece || p.Color() != by {
			return false
		}
		for _, t := range types {
			if p.Type() == t {
				return true
			}
		}
		return false
	}

	// a pawn attacks the rank ahead of it
	behind := -1
	if by == chess.Black {
		behind = 1
	}
	for _, df := range []int{-1, 1} {
		if p, _ := at(df, behind); is(p, chess.Pawn) {
			return true
		}
	}

	for _, d := range knightJumps {
		if p, _ := at(d[0], d[1]); is(p, chess.Knight) {
			return true
		}
	}
	for _, d := range kingSteps {
		if p, _ := at(d[0], d[1]); is(p, chess.King) {
			return true
		}
	}

	slide := func(rays [][2]int, types ...chess.PieceType) bool {
		for _, d := range rays {
			for i := 1; ; i++ {
				p, ok := at(d[0]*i, d[1]*i)
				if !ok {
					break
				}
				if p != chess.NoPiece {
					if is(p, types...) {
						return true
					}
					break
				}
			}
		}
		return false
	}
	return slide(rookRays, chess.Rook, chess.Queen) || slide(bishopRays, chess.Bishop, chess.Queen)
}
