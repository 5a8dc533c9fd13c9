package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qnkhuat/chessbridge/pkg/eval"
)

var ErrBadResponse = errors.New("protocol: bad response")

type RequestKind int

const (
	RequestMalformed RequestKind = iota
	RequestMove
	RequestNewGame
)

func (k RequestKind) String() string {
	switch k {
	case RequestMove:
		return "MOVE"
	case RequestNewGame:
		return "NEWGAME"
	default:
		return "MALFORMED"
	}
}

// Request is one parsed line from the board.
type Request struct {
	Kind     RequestKind
	MoveText string // normalized compact move, RequestMove only
	Raw      string
}

type ResponseKind int

const (
	ResponseCheck ResponseKind = iota
	ResponseEval
	ResponseEngine
	ResponseNewGame
	ResponseError
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseCheck:
		return "CHECK"
	case ResponseEval:
		return "EVALTXT"
	case ResponseEngine:
		return "ENGINE"
	case ResponseNewGame:
		return "NEWGAME"
	case ResponseError:
		return "ERR"
	default:
		return "Unknown ResponseKind"
	}
}

type ErrorKind int

const (
	ErrParse ErrorKind = iota
	ErrIllegal
)

func (k ErrorKind) String() string {
	if k == ErrIllegal {
		return "ILLEGAL"
	}
	return "PARSE"
}

// Response is one line sent back to the board.
type Response struct {
	Kind    ResponseKind
	Check   bool
	CP      int // white point of view
	Move    string
	Display string
	Err     ErrorKind
}

func Check(inCheck bool) Response {
	return Response{Kind: ResponseCheck, Check: inCheck}
}

func Eval(cp int) Response {
	return Response{Kind: ResponseEval, CP: cp}
}

func Engine(move, display string) Response {
	return Response{Kind: ResponseEngine, Move: move, Display: display}
}

func NewGameAck() Response {
	return Response{Kind: ResponseNewGame}
}

func Error(kind ErrorKind) Response {
	return Response{Kind: ResponseError, Err: kind}
}

// String returns the wire form without the line terminator.
func (r Response) String() string {
	switch r.Kind {
	case ResponseCheck:
		if r.Check {
			return "CHECK:1"
		}
		return "CHECK:0"
	case ResponseEval:
		return "EVALTXT:" + eval.Format(r.CP)
	case ResponseEngine:
		return fmt.Sprintf("ENGINE:%s:%s", r.Move, r.Display)
	case ResponseNewGame:
		return "NEWGAME"
	default:
		return "ERR:" + r.Err.String()
	}
}

// MarshalText returns the newline terminated wire form.
func (r Response) MarshalText() ([]byte, error) {
	if r.Kind == ResponseEngine && (r.Move == "" || strings.ContainsAny(r.Move+r.Display, "\r\n")) {
		return nil, fmt.Errorf("%w: engine move %q", ErrBadResponse, r.Move)
	}
	return []byte(r.String() + "\n"), nil
}
