package chat

import (
	"crypto/rand"
	"fmt"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSessionID returns an identifier unique enough for one process run:
// a millisecond timestamp plus a short random base36 suffix.
func NewSessionID() string {
	return fmt.Sprintf("chat_%d_%s", time.Now().UnixMilli(), randomBase36(9))
}

func randomBase36(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = base36Alphabet[int(buf[i])%len(base36Alphabet)]
	}
	return string(buf)
}
