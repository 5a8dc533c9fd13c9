package pkg

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/qnkhuat/chessbridge/pkg/bridge"
	"github.com/qnkhuat/chessbridge/pkg/config"
	"github.com/qnkhuat/chessbridge/pkg/display"
	"github.com/qnkhuat/chessbridge/pkg/link"
)

type statusSink struct {
	display.Nop
	mu       sync.Mutex
	statuses []string
}

func (s *statusSink) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *statusSink) saw(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if strings.HasPrefix(st, prefix) {
			return true
		}
	}
	return false
}

type closeRecorder struct {
	io.Reader
	io.Writer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestSessionName(t *testing.T) {
	name := SessionName()
	if !regexp.MustCompile(`^[a-z]+-[a-z]+-[0-9a-f]{8}$`).MatchString(name) {
		t.Errorf("session name %q", name)
	}
	if SessionName() == name {
		t.Error("two sessions got the same name")
	}
}

func TestSessionMissingEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine = filepath.Join(t.TempDir(), "no-such-engine")

	l := &closeRecorder{Reader: strings.NewReader(""), Writer: io.Discard}
	s := NewSession(cfg, nil)
	s.openLink = func() (io.ReadWriteCloser, error) { return l, nil }

	err := s.Run(context.Background())
	if !errors.Is(err, bridge.ErrEngineFailed) {
		t.Fatalf("got %v, want %v", err, bridge.ErrEngineFailed)
	}
	if !l.closed {
		t.Error("link was left open")
	}
}

func TestSessionBadStartFEN(t *testing.T) {
	cfg := testConfig(t)
	cfg.StartFEN = "not a position"

	sink := &statusSink{}
	l := &closeRecorder{Reader: strings.NewReader(""), Writer: io.Discard}
	s := NewSession(cfg, sink)
	s.openLink = func() (io.ReadWriteCloser, error) { return l, nil }

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected an error for a bad start position")
	}
	if !l.closed {
		t.Error("link was left open")
	}
	if !sink.saw("Session ended:") {
		t.Errorf("statuses: %q", sink.statuses)
	}
}

func TestSessionSerialError(t *testing.T) {
	cfg := testConfig(t)
	// exists, but is no terminal
	cfg.Port = filepath.Join(t.TempDir(), "ttyACM9")
	if err := os.WriteFile(cfg.Port, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Settle = 0

	sink := &statusSink{}
	s := NewSession(cfg, sink)
	s.listPorts = func() ([]link.Port, error) { return nil, nil }

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected an error opening a plain file as a serial port")
	}
	if !sink.saw("Connecting: " + cfg.Port) {
		t.Errorf("statuses: %q", sink.statuses)
	}
	if !sink.saw("✗ Serial error on " + cfg.Port) {
		t.Errorf("statuses: %q", sink.statuses)
	}
}

func TestSessionNoPorts(t *testing.T) {
	cfg := testConfig(t)

	sink := &statusSink{}
	s := NewSession(cfg, sink)
	s.listPorts = func() ([]link.Port, error) { return nil, errors.New("no sysfs") }

	if err := s.Run(context.Background()); !errors.Is(err, ErrNoPort) {
		t.Fatalf("got %v, want %v", err, ErrNoPort)
	}
	if !sink.saw(StatusNoPort) {
		t.Errorf("statuses: %q", sink.statuses)
	}
}

var testPorts = []link.Port{
	{Device: "/dev/ttyUSB0", Description: "FT232R USB UART"},
	{Device: "/dev/ttyACM0", Description: "Arduino Uno R4", VendorID: 0x2341},
	{Device: "/dev/ttyUSB1", Description: "USB serial", VendorID: 0x1A86},
}

func TestSessionChoosesPort(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "ttyS3")
	if err := os.WriteFile(existing, nil, 0644); err != nil {
		t.Fatal(err)
	}

	for _, d := range []struct {
		port string
		want string
	}{
		{config.PortAuto, "/dev/ttyACM0"},
		{"/dev/ttyUSB1", "/dev/ttyUSB1"},
		{existing, existing},
		// gone since it was configured
		{"/nonexistent/ttyACM7", "/dev/ttyACM0"},
	} {
		cfg := testConfig(t)
		cfg.Port = d.port

		s := NewSession(cfg, nil)
		s.listPorts = func() ([]link.Port, error) { return testPorts, nil }

		device, err := s.choosePort()
		if err != nil {
			t.Errorf("port %s: %v", d.port, err)
			continue
		}
		if device != d.want {
			t.Errorf("port %s: chose %s, want %s", d.port, device, d.want)
		}
	}
}

func TestSessionMissingDevice(t *testing.T) {
	cfg := testConfig(t)
	cfg.Port = filepath.Join(t.TempDir(), "ttyACM9")

	sink := &statusSink{}
	s := NewSession(cfg, sink)
	s.listPorts = func() ([]link.Port, error) { return nil, nil }

	if err := s.Run(context.Background()); !errors.Is(err, ErrNoPort) {
		t.Fatalf("got %v, want %v", err, ErrNoPort)
	}
	if !sink.saw(StatusNoPort) {
		t.Errorf("statuses: %q", sink.statuses)
	}
}
