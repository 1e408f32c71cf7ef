package editor

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGen issues new record ids
type IDGen interface {
	New() (string, error)
}

// ULIDGen issues monotonic ULIDs. Safe for concurrent use.
type ULIDGen struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGen creates a ULID generator backed by crypto/rand
func NewULIDGen() *ULIDGen {
	return &ULIDGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
