// Package engine drives an external UCI search engine such as Stockfish.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"github.com/qnkhuat/chessbridge/pkg/eval"
)

const (
	DefaultPath = "stockfish"

	startTimeout = 5 * time.Second
	stopTimeout  = time.Second
	// searches get twice their budget plus this much before the engine is
	// declared dead
	budgetSlack = time.Second
)

var (
	ErrNotReady      = errors.New("engine: not ready")
	ErrEngineStart   = errors.New("engine: failed to start")
	ErrEngineStopped = errors.New("engine: stopped unexpectedly")
)

type State int

const (
	Uninitialized State = iota
	Starting
	Ready
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Option func(c *Client)

// SkillLevel sets the Stockfish "Skill Level" option (0-20).
func SkillLevel(level int) Option {
	return func(c *Client) {
		if level < 0 {
			level = 0
		} else if level > 20 {
			level = 20
		}
		c.options = append(c.options, uci.CmdSetOption{Name: "Skill Level", Value: strconv.Itoa(level)})
	}
}

func Threads(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.options = append(c.options, uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(n)})
	}
}

// Debug logs the raw UCI conversation to the standard logger.
func Debug(c *Client) {
	c.debug = true
}

// Client owns the lifecycle of one engine process.
type Client struct {
	path    string
	options []uci.Cmd
	debug   bool

	mu    sync.Mutex
	eng   *uci.Engine
	state State
}

// New returns a client for the engine binary at path. The process is not
// launched until Start.
func New(path string, opts ...Option) *Client {
	if path == "" {
		path = DefaultPath
	}
	c := &Client{path: path}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start launches the engine and completes the UCI handshake. A failed
// start leaves the client Stopped; it is never retried.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Uninitialized {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: engine is %s", ErrEngineStart, state)
	}
	c.state = Starting
	c.mu.Unlock()

	var opts []func(e *uci.Engine)
	if c.debug {
		opts = append(opts, uci.Debug, uci.Logger(log.Default()))
	}

	eng, err := uci.New(c.path, opts...)
	if err != nil {
		c.setState(Stopped)
		return fmt.Errorf("%w: %s: %v", ErrEngineStart, c.path, err)
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	cmds = append(cmds, c.options...)
	cmds = append(cmds, uci.CmdUCINewGame, uci.CmdIsReady)

	if err = run(ctx, startTimeout, func() error { return eng.Run(cmds...) }); err != nil {
		go eng.Close()
		c.setState(Stopped)
		return fmt.Errorf("%w: %s: %v", ErrEngineStart, c.path, err)
	}

	c.mu.Lock()
	c.eng = eng
	c.state = Ready
	c.mu.Unlock()

	log.Printf("Engine %s ready", c.path)
	return nil
}

// NewGame tells the engine a new game has started.
func (c *Client) NewGame(ctx context.Context) error {
	eng, err := c.ready()
	if err != nil {
		return err
	}

	err = run(ctx, startTimeout, func() error { return eng.Run(uci.CmdUCINewGame, uci.CmdIsReady) })
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// Evaluate searches pos for budget and returns the score relative to the
// side to move.
func (c *Client) Evaluate(ctx context.Context, pos *chess.Position, budget time.Duration) (eval.Score, error) {
	res, err := c.search(ctx, pos, budget)
	if err != nil {
		return eval.Score{}, err
	}

	score := res.Info.Score
	return eval.Score{CP: score.CP, Mate: score.Mate, IsMate: score.Mate != 0}, nil
}

// BestMove searches pos for budget and returns the engine's choice.
func (c *Client) BestMove(ctx context.Context, pos *chess.Position, budget time.Duration) (*chess.Move, error) {
	res, err := c.search(ctx, pos, budget)
	if err != nil {
		return nil, err
	}

	return res.BestMove, nil
}

func (c *Client) search(ctx context.Context, pos *chess.Position, budget time.Duration) (uci.SearchResults, error) {
	eng, err := c.ready()
	if err != nil {
		return uci.SearchResults{}, err
	}

	var res uci.SearchResults
	err = run(ctx, budget*2+budgetSlack, func() error {
		if err := eng.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{MoveTime: budget}); err != nil {
			return err
		}
		res = eng.SearchResults()
		return nil
	})
	if err != nil {
		return uci.SearchResults{}, c.fail(err)
	}
	// every search ends with a bestmove line unless the process went away
	if res.BestMove == nil {
		return uci.SearchResults{}, c.fail(errors.New("no best move"))
	}
	return res, nil
}

// Stop shuts the engine down. It is safe to call more than once and never
// reports shutdown failures.
func (c *Client) Stop() error {
	c.mu.Lock()
	eng := c.eng
	c.eng = nil
	c.state = Stopped
	c.mu.Unlock()

	if eng == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- eng.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Engine close: %v", err)
		}
	case <-time.After(stopTimeout):
		log.Printf("Engine did not exit within %s", stopTimeout)
	}
	return nil
}

func (c *Client) ready() (*uci.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready || c.eng == nil {
		return nil, fmt.Errorf("%w: engine is %s", ErrNotReady, c.state)
	}
	return c.eng, nil
}

// fail marks the engine dead. Whatever was running is abandoned.
func (c *Client) fail(cause error) error {
	c.mu.Lock()
	eng := c.eng
	c.eng = nil
	c.state = Stopped
	c.mu.Unlock()

	if eng != nil {
		go eng.Close()
	}
	return fmt.Errorf("%w: %v", ErrEngineStopped, cause)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// run calls fn and waits at most timeout for it. fn keeps running in the
// background if the wait is abandoned.
func run(ctx context.Context, timeout time.Duration, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timeout after %s: %w", timeout, ctx.Err())
	}
}
