// Package protocol implements the line based ASCII protocol spoken with the
// sensor board.
package protocol

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

const (
	prefixMove = "MOVE:"
	cmdNewGame = "NEWGAME"

	// MaxLineLength bounds a single inbound line.
	MaxLineLength = 256
)

// Parse turns one inbound line into a Request. It never fails: anything it
// does not understand comes back as RequestMalformed.
func Parse(line string) Request {
	raw := line
	line = strings.TrimSpace(line)

	if line == cmdNewGame {
		return Request{Kind: RequestNewGame, Raw: raw}
	}

	if strings.HasPrefix(line, prefixMove) {
		move := strings.ToLower(strings.TrimSpace(line[len(prefixMove):]))
		if IsMoveText(move) {
			return Request{Kind: RequestMove, MoveText: move, Raw: raw}
		}
	}

	return Request{Kind: RequestMalformed, Raw: raw}
}

// IsMoveText reports whether s is a compact move such as e2e4 or a7a8q.
func IsMoveText(s string) bool {
	if len(s) < 4 || len(s) > 5 {
		return false
	}

	if s[0] < 'a' || s[0] > 'h' ||
		s[1] < '1' || s[1] > '8' ||
		s[2] < 'a' || s[2] > 'h' ||
		s[3] < '1' || s[3] > '8' {
		return false
	}

	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}

	return true
}

// Decoder reads requests from the board, one per line. A line longer than
// MaxLineLength is cut short and the rest of it dropped, so it still comes
// back as one malformed request.
type Decoder struct {
	scanner    *bufio.Scanner
	discarding bool
}

func NewDecoder(r io.Reader) *Decoder {
	d := &Decoder{}
	d.scanner = bufio.NewScanner(r)
	d.scanner.Buffer(make([]byte, 0, MaxLineLength), MaxLineLength)
	d.scanner.Split(d.split)
	return d
}

func (d *Decoder) split(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	if err != nil {
		return 0, nil, err
	}
	if advance > 0 || token != nil {
		if d.discarding {
			d.discarding = false
			return advance, nil, nil
		}
		return advance, token, nil
	}

	if len(data) >= MaxLineLength {
		if d.discarding {
			return len(data), nil, nil
		}
		d.discarding = true
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Next returns the next non-empty line, trimmed. It returns io.EOF once the
// link is closed.
func (d *Decoder) Next() (string, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}
	if err := d.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Decode reads and parses the next request.
func (d *Decoder) Decode() (Request, error) {
	line, err := d.Next()
	if err != nil {
		return Request{}, err
	}
	return Parse(line), nil
}

// Encoder writes responses to the board. Each response is written with a
// single Write call so lines never interleave.
type Encoder struct {
	w  io.Writer
	mu sync.Mutex
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(r Response) error {
	b, err := r.MarshalText()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(b)
	return err
}
