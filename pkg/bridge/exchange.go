package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/notnil/chess"

	"github.com/qnkhuat/chessbridge/pkg/eval"
	"github.com/qnkhuat/chessbridge/pkg/game"
	"github.com/qnkhuat/chessbridge/pkg/protocol"
)

func isFatal(err error) bool {
	return errors.Is(err, ErrLinkClosed) || errors.Is(err, ErrEngineFailed)
}

// handle runs one complete exchange. Only fatal errors come back; anything
// else, panics included, is answered with ERR:PARSE.
func (b *Bridge) handle(ctx context.Context, line string) (err error) {
	log.Printf("> %s", line)
	b.sink.Log("> " + line)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil && !isFatal(err) {
			log.Printf("Exchange for %q failed: %v", line, err)
			err = b.send(protocol.Error(protocol.ErrParse))
		}
	}()

	req := protocol.Parse(line)
	switch req.Kind {
	case protocol.RequestNewGame:
		return b.newGame(ctx)
	case protocol.RequestMove:
		return b.move(ctx, req.MoveText)
	default:
		return b.send(protocol.Error(protocol.ErrParse))
	}
}

func (b *Bridge) newGame(ctx context.Context) error {
	b.resetGame()
	if err := b.eng.NewGame(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	b.publish()
	b.sink.SetStatus("New game, waiting for board moves…")

	if err := b.send(protocol.NewGameAck()); err != nil {
		return err
	}
	return b.send(protocol.Check(b.auth.IsCheck()))
}

func (b *Bridge) move(ctx context.Context, text string) error {
	applied, err := b.auth.Apply(text)
	switch {
	case errors.Is(err, game.ErrIllegal):
		log.Printf("Illegal move %s", text)
		return b.send(protocol.Error(protocol.ErrIllegal))
	case errors.Is(err, game.ErrParse):
		return b.send(protocol.Error(protocol.ErrParse))
	case err != nil:
		return err
	}

	if err := b.played(ctx, applied); err != nil {
		return err
	}
	if b.auth.IsGameOver() {
		b.gameOver()
		return nil
	}

	pos := b.auth.Position()
	reply, err := b.eng.BestMove(ctx, pos, b.replyBudget)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}

	if err := b.send(protocol.Engine(reply.String(), eval.MoveText(pos, reply))); err != nil {
		return err
	}

	// the engine's move goes through the same checks as the board's
	applied, err = b.auth.Apply(reply.String())
	if err != nil {
		return fmt.Errorf("engine replied with %s: %w", reply, err)
	}
	if err := b.played(ctx, applied); err != nil {
		return err
	}
	if b.auth.IsGameOver() {
		b.gameOver()
	}
	return nil
}

// played publishes a freshly applied move and reports CHECK and EVALTXT for
// the position it produced.
func (b *Bridge) played(ctx context.Context, applied game.Applied) error {
	b.last = applied.Move
	b.hasEval = false
	b.publish()
	log.Printf("Played %s (%s)", applied.UCI, applied.Display)

	if err := b.send(protocol.Check(b.auth.IsCheck())); err != nil {
		return err
	}

	cp, err := b.evaluate(ctx)
	if err != nil {
		return err
	}
	b.cp, b.hasEval = cp, true
	b.publish()

	return b.send(protocol.Eval(cp))
}

// evaluate scores the current position from white's point of view. A
// finished game is scored here since the engine has nothing to search.
func (b *Bridge) evaluate(ctx context.Context) (int, error) {
	if b.auth.IsGameOver() {
		if b.auth.Method() != chess.Checkmate {
			return 0, nil
		}
		if b.auth.Outcome() == chess.WhiteWon {
			return eval.MateScore, nil
		}
		return -eval.MateScore, nil
	}

	score, err := b.eng.Evaluate(ctx, b.auth.Position(), b.evalBudget)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEngineFailed, err)
	}
	return eval.WhitePOV(b.auth.Turn(), score), nil
}

func (b *Bridge) gameOver() {
	status := fmt.Sprintf("Game over: %s by %s", b.auth.Outcome(), b.auth.Method())
	log.Print(status)
	b.sink.SetStatus(status)
}
