// Package eval turns engine scores and moves into the text that goes out
// over the link and onto the display.
package eval

import (
	"fmt"
	"math"

	"github.com/notnil/chess"
)

const (
	// MateScore is the centipawn value of an immediate forced mate.
	MateScore = 10000
	// mateStep is subtracted from MateScore for every move until mate.
	mateStep = 100
	// maxMateDiscount keeps long mates above any material evaluation.
	maxMateDiscount = 9900
)

// Score is an engine evaluation relative to the side to move, the way UCI
// engines report it.
type Score struct {
	CP     int
	Mate   int
	IsMate bool
}

// WhitePOV converts a side-to-move score into a centipawn value from
// white's point of view. Mates are folded into the ±MateScore band so that
// shorter mates score closer to MateScore.
func WhitePOV(turn chess.Color, s Score) int {
	sign := 1
	if turn == chess.Black {
		sign = -1
	}

	if !s.IsMate {
		return sign * s.CP
	}

	// mate 0: the side to move is already mated
	if s.Mate == 0 {
		return -sign * MateScore
	}

	mate := s.Mate * sign
	dist := mate
	if dist < 0 {
		dist = -dist
	}
	discount := dist * mateStep
	if discount > maxMateDiscount {
		discount = maxMateDiscount
	}
	if mate > 0 {
		return MateScore - discount
	}
	return -(MateScore - discount)
}

// Format renders centipawns as an always-signed pawn value with two
// decimals: 314 -> "+3.14", -7 -> "-0.07", 0 -> "+0.00".
func Format(cp int) string {
	sign := '+'
	if cp < 0 {
		sign = '-'
		cp = -cp
	}
	return fmt.Sprintf("%c%d.%02d", sign, cp/100, cp%100)
}

// MoveText returns the standard algebraic notation of m in pos, or the
// compact UCI form when the notation cannot be produced.
func MoveText(pos *chess.Position, m *chess.Move) (txt string) {
	if m == nil {
		return ""
	}
	fallback := m.String()
	if pos == nil {
		return fallback
	}

	defer func() {
		if r := recover(); r != nil {
			txt = fallback
		}
	}()

	legal := false
	for _, vm := range pos.ValidMoves() {
		if vm.String() == fallback {
			m = vm
			legal = true
			break
		}
	}
	if !legal {
		return fallback
	}

	txt = chess.AlgebraicNotation{}.Encode(pos, m)
	if txt == "" {
		return fallback
	}
	return txt
}

// WinProbability maps a white point-of-view centipawn score onto the
// probability of white winning.
func WinProbability(cp int) float64 {
	return 1 / (1 + math.Pow(10, -float64(cp)/400))
}
