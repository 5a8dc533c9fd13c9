// Package pkg wires a link, an engine and a display into one bridge session.
package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/qnkhuat/chessbridge/pkg/bridge"
	"github.com/qnkhuat/chessbridge/pkg/config"
	"github.com/qnkhuat/chessbridge/pkg/display"
	"github.com/qnkhuat/chessbridge/pkg/engine"
	"github.com/qnkhuat/chessbridge/pkg/link"
)

var ErrNoPort = errors.New("no serial port found")

// Session is one run of the bridge from connecting to the board until the
// link goes away. It may span any number of games.
type Session struct {
	Name string

	cfg  *config.Config
	sink display.Sink

	// replaced in tests
	openLink  func() (io.ReadWriteCloser, error)
	newEngine func() bridge.Engine
	listPorts func() ([]link.Port, error)
}

func NewSession(cfg *config.Config, sink display.Sink) *Session {
	if sink == nil {
		sink = display.Nop{}
	}
	s := &Session{
		Name:      SessionName(),
		cfg:       cfg,
		sink:      sink,
		listPorts: link.ListPorts,
	}
	s.openLink = s.dial
	s.newEngine = s.startEngine
	return s
}

// Run blocks until the session ends. Cancelling ctx ends it cleanly and
// returns nil.
func (s *Session) Run(ctx context.Context) error {
	log.Printf("Session %s starting", s.Name)

	l, err := s.openLink()
	if err != nil {
		log.Printf("Session %s could not open a link: %v", s.Name, err)
		return err
	}

	var opts []bridge.Option
	opts = append(opts, bridge.EvalBudget(s.cfg.EvalBudget), bridge.ReplyBudget(s.cfg.ReplyBudget))
	if s.cfg.StartFEN != "" {
		opts = append(opts, bridge.StartFEN(s.cfg.StartFEN))
	}

	b := bridge.New(l, s.newEngine(), s.sink, opts...)
	err = b.Run(ctx)

	log.Printf("Session %s ended: %v", s.Name, err)
	if err != nil {
		s.sink.SetStatus(fmt.Sprintf(StatusEnded, err))
	}
	return err
}

func (s *Session) startEngine() bridge.Engine {
	opts := []engine.Option{engine.SkillLevel(s.cfg.SkillLevel), engine.Threads(s.cfg.Threads)}
	if s.cfg.EngineDebug {
		opts = append(opts, engine.Debug)
	}
	return engine.New(s.cfg.Engine, opts...)
}

// dial opens the link the config asks for: the console, stdin and stdout,
// or a serial port.
func (s *Session) dial() (io.ReadWriteCloser, error) {
	switch {
	case s.cfg.Console:
		c, err := link.NewConsole(s.cfg.HistoryFile)
		if err != nil {
			return nil, err
		}
		s.sink.SetStatus(StatusConsole)
		return c, nil

	case s.cfg.Port == config.PortStdio:
		s.sink.SetStatus(StatusStdio)
		return link.Pipe(os.Stdin, os.Stdout), nil
	}

	device, err := s.choosePort()
	if err != nil {
		return nil, err
	}

	s.sink.SetStatus(fmt.Sprintf(StatusConnecting, device))
	l, err := link.OpenSerial(device, s.cfg.Baud, s.cfg.Settle)
	if err != nil {
		s.sink.SetStatus(fmt.Sprintf(StatusSerialError, device, err))
		return nil, err
	}
	s.sink.SetStatus(fmt.Sprintf(StatusConnected, device))
	return l, nil
}

// choosePort finds the device to open. An explicit device is used when it
// is listed or exists on disk. Otherwise, as with "auto", the best scoring
// port wins.
func (s *Session) choosePort() (string, error) {
	preferred := ""
	if s.cfg.Port != config.PortAuto {
		preferred = s.cfg.Port
	}

	s.sink.SetStatus(StatusSearching)
	ports, err := s.listPorts()
	if err != nil {
		log.Printf("Listing serial ports: %v", err)
	}
	for _, p := range ports {
		log.Printf("Found %s %q vid=%04x score=%d", p.Device, p.Description, p.VendorID, p.Score())
	}

	p, ok := link.ChoosePort(ports, preferred)
	if preferred != "" && (!ok || p.Device != preferred) {
		// ptys and built-in ports are not listed
		if _, err := os.Stat(preferred); err == nil {
			return preferred, nil
		}
		log.Printf("Port %s not found, searching instead", preferred)
	}
	if !ok {
		s.sink.SetStatus(StatusNoPort)
		return "", ErrNoPort
	}
	return p.Device, nil
}
