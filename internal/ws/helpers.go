package ws

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// newConnID returns a random connection id; entropy failure falls back to a
// timestamp so disconnect events stay correlatable.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "t-" + strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}
