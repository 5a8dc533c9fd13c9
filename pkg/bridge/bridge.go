// Package bridge runs the exchange between the sensor board, the rules
// authority and the search engine.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/notnil/chess"

	"github.com/qnkhuat/chessbridge/pkg/display"
	"github.com/qnkhuat/chessbridge/pkg/eval"
	"github.com/qnkhuat/chessbridge/pkg/game"
	"github.com/qnkhuat/chessbridge/pkg/protocol"
)

const (
	DefaultEvalBudget  = 200 * time.Millisecond
	DefaultReplyBudget = time.Second

	lineQueueSize = 10
)

var (
	ErrLinkClosed   = errors.New("bridge: link closed")
	ErrEngineFailed = errors.New("bridge: engine failed")
)

// Engine is the part of the engine client the bridge needs. Every error it
// returns ends the session.
type Engine interface {
	Start(ctx context.Context) error
	NewGame(ctx context.Context) error
	Evaluate(ctx context.Context, pos *chess.Position, budget time.Duration) (eval.Score, error)
	BestMove(ctx context.Context, pos *chess.Position, budget time.Duration) (*chess.Move, error)
	Stop() error
}

type State int

const (
	Connecting State = iota
	Starting
	Serving
	Stopped
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Starting:
		return "starting"
	case Serving:
		return "serving"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Option func(b *Bridge)

func EvalBudget(d time.Duration) Option {
	return func(b *Bridge) { b.evalBudget = d }
}

func ReplyBudget(d time.Duration) Option {
	return func(b *Bridge) { b.replyBudget = d }
}

// StartFEN seeds every game of the session at fen instead of the standard
// starting position. An invalid FEN is reported by Run.
func StartFEN(fen string) Option {
	return func(b *Bridge) { b.startFEN = fen }
}

// Bridge serves one link for one session.
type Bridge struct {
	link io.ReadWriter
	enc  *protocol.Encoder
	eng  Engine
	sink display.Sink
	auth *game.Authority

	evalBudget  time.Duration
	replyBudget time.Duration
	startFEN    string

	// last applied move and evaluation, for snapshots
	last    *chess.Move
	cp      int
	hasEval bool

	mu    sync.Mutex
	state State
}

func New(link io.ReadWriter, eng Engine, sink display.Sink, opts ...Option) *Bridge {
	if sink == nil {
		sink = display.Nop{}
	}
	b := &Bridge{
		link:        link,
		enc:         protocol.NewEncoder(link),
		eng:         eng,
		sink:        sink,
		auth:        game.New(),
		evalBudget:  DefaultEvalBudget,
		replyBudget: DefaultReplyBudget,
		state:       Connecting,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	log.Printf("Bridge %s", s)
}

// Run starts the engine and serves the link until the link fails or ctx is
// cancelled. The engine is stopped and the link closed before Run returns.
// A nil error means the session was shut down through ctx.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.teardown()

	if err := b.seed(); err != nil {
		b.sink.SetStatus(fmt.Sprintf("✗ Bad start position: %s", err))
		return err
	}
	b.resetGame()

	b.setState(Starting)
	b.sink.SetStatus("Loading engine…")
	if err := b.eng.Start(ctx); err != nil {
		b.sink.SetStatus(fmt.Sprintf("✗ Engine error: %s", err))
		return fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	b.sink.SetStatus("✓ Engine ready")

	b.publish()
	b.sink.SetStatus("Waiting for board moves…")
	b.setState(Serving)

	return b.serve(ctx)
}

func (b *Bridge) serve(ctx context.Context) error {
	lines := make(chan string, lineQueueSize)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go b.readLines(lines, errc, done)

	// exchanges run to completion even when ctx is cancelled halfway
	exchangeCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Bridge shutting down: %v", ctx.Err())
			b.sink.SetStatus("Stopped")
			return nil

		case err := <-errc:
			if err == io.EOF {
				log.Printf("Link closed by the board")
			} else {
				log.Printf("Link read failed: %v", err)
			}
			b.sink.SetStatus(fmt.Sprintf("✗ Link closed: %v", err))
			return fmt.Errorf("%w: %v", ErrLinkClosed, err)

		case line := <-lines:
			if err := b.handle(exchangeCtx, line); err != nil {
				log.Printf("Session failed: %v", err)
				b.sink.SetStatus(fmt.Sprintf("✗ %s", err))
				return err
			}
		}
	}
}

// readLines is the only reader of the link.
func (b *Bridge) readLines(lines chan<- string, errc chan<- error, done <-chan struct{}) {
	dec := protocol.NewDecoder(b.link)
	for {
		line, err := dec.Next()
		if err != nil {
			errc <- err
			return
		}
		select {
		case lines <- line:
		case <-done:
			return
		}
	}
}

func (b *Bridge) teardown() {
	if err := b.eng.Stop(); err != nil {
		log.Printf("Engine stop: %v", err)
	}
	if c, ok := b.link.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("Link close: %v", err)
		}
	}
	b.setState(Stopped)
}

// seed replaces the authority with one that starts every game at startFEN.
func (b *Bridge) seed() error {
	if b.startFEN == "" {
		return nil
	}
	a, err := game.NewFromFEN(b.startFEN)
	if err != nil {
		return err
	}
	b.auth = a
	return nil
}

func (b *Bridge) resetGame() {
	b.auth.Reset()
	b.last = nil
	b.hasEval = false
}

func (b *Bridge) snapshot() display.Snapshot {
	return display.Snapshot{
		FEN:      b.auth.FEN(),
		Position: b.auth.Position(),
		LastMove: b.last,
		Moves:    b.auth.History(),
		Check:    b.auth.IsCheck(),
		Outcome:  b.auth.Outcome(),
		Method:   b.auth.Method(),
		Eval:     b.cp,
		HasEval:  b.hasEval,
		Taken:    time.Now(),
	}
}

func (b *Bridge) publish() {
	b.sink.Publish(b.snapshot())
}

func (b *Bridge) send(r protocol.Response) error {
	if err := b.enc.Encode(r); err != nil {
		if errors.Is(err, protocol.ErrBadResponse) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrLinkClosed, err)
	}
	b.sink.Log("< " + r.String())
	return nil
}
