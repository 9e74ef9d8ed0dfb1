// Package idgen generates identifiers for connections, messages and nodes.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID returns a monotonic, lexicographically time-ordered ULID.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// NewConnectionID identifies one live real-time connection.
func NewConnectionID() string { return "conn_" + NewULID() }

// NewMessageID identifies a persisted message. ULIDs sort by creation time.
func NewMessageID() string { return NewULID() }

// NewNodeID returns a short random id used to tag backplane publications.
func NewNodeID() (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = chars[b[i]%byte(len(chars))]
	}
	return "node-" + string(b), nil
}
