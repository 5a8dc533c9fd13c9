package link

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/qnkhuat/chessbridge/pkg/protocol"
)

// Console stands in for the board: whatever is typed at the prompt is sent
// to the bridge and every response is printed. A bare move such as e2e4 is
// sent as MOVE:e2e4.
type Console struct {
	rl *readline.Instance

	mu      sync.Mutex
	pending []byte
}

func NewConsole(historyFile string) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "board> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Console{rl: rl}, nil
}

// Read blocks until a line is entered. exit, quit, Ctrl-C and Ctrl-D end the
// stream.
func (c *Console) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.pending) == 0 {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}

		line, ok := ConsoleLine(line)
		if !ok {
			return 0, io.EOF
		}
		if line != "" {
			c.pending = []byte(line + "\n")
		}
	}

	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Console) Write(b []byte) (int, error) {
	return c.rl.Write(b)
}

func (c *Console) Close() error {
	return c.rl.Close()
}

// ConsoleLine turns typed input into a protocol line. ok is false when the
// user asked to leave.
func ConsoleLine(typed string) (line string, ok bool) {
	line = strings.TrimSpace(typed)
	switch strings.ToLower(line) {
	case "exit", "quit", "x":
		return "", false
	case "new", "newgame":
		return "NEWGAME", true
	}

	if protocol.IsMoveText(strings.ToLower(line)) {
		return "MOVE:" + strings.ToLower(line), true
	}
	return line, true
}

// Pipe joins a reader and a writer into a link, as used for stdin and
// stdout. Closing it closes neither.
func Pipe(r io.Reader, w io.Writer) io.ReadWriteCloser {
	return pipe{r, w}
}

type pipe struct {
	io.Reader
	io.Writer
}

func (pipe) Close() error { return nil }
