// Package link opens the byte streams the bridge talks over: a serial port
// to the board, an interactive console, or plain pipes.
package link

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pkg/term"
)

const (
	DefaultBaud = 115200
	// Most boards reset when the port is opened and ignore input until the
	// sketch is running again.
	DefaultSettle = 2500 * time.Millisecond
)

// OpenSerial opens device in raw mode at baud with flow control off, then
// waits settle before discarding anything the board printed while it booted.
func OpenSerial(device string, baud int, settle time.Duration) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}

	t, err := term.Open(device, term.Speed(baud), term.RawMode, term.FlowControl(term.NONE))
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", device, err)
	}

	if settle > 0 {
		log.Printf("Waiting %s for %s to settle", settle, device)
		time.Sleep(settle)
	}

	if err := t.Flush(); err != nil {
		t.Close()
		return nil, fmt.Errorf("link: flush %s: %w", device, err)
	}

	log.Printf("Opened %s at %d baud", device, baud)
	return &serialPort{Term: t, device: device}, nil
}

type serialPort struct {
	*term.Term
	device string
}

func (p *serialPort) Close() error {
	// put the line back the way we found it; the board does not care
	p.Restore()
	return p.Term.Close()
}

func (p *serialPort) String() string {
	return p.device
}
