package pkg

// Status lines shown while a session finds and opens its link.
const (
	StatusSearching   = "Searching for the board…"
	StatusNoPort      = "✗ No serial port found"
	StatusConnecting  = "Connecting: %s …"
	StatusConnected   = "✓ Board: %s"
	StatusSerialError = "✗ Serial error on %s: %v"
	StatusConsole     = "✓ Console: type moves like e2e4, new or quit"
	StatusStdio       = "✓ Reading board commands from stdin"
	StatusEnded       = "Session ended: %v"
)
