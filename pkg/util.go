package pkg

import (
	"fmt"
	"log"
	"os"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
)

// InitLog sends the standard logger to dest so log lines do not end up on
// top of the board.
func InitLog(dest, prefix string) (*os.File, error) {
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}
	log.SetOutput(f)
	log.SetPrefix(prefix)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, nil
}

// SessionName returns a readable name that is unique enough to tell
// sessions apart in a shared log, like brave-otter-1a2b3c4d.
func SessionName() string {
	return fmt.Sprintf("%s-%s", petname.Generate(2, "-"), uuid.NewString()[:8])
}
