package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message is one channel message as delivered by the platform.
type Message struct {
	ID           string // opaque timestamp ID, unique per channel (e.g. "1700000000.000100")
	SenderID     string
	ChannelID    string
	Text         string
	ThreadRootID string // empty for a non-threaded post; equals ID for a thread root
	Bot          bool   // authored by a bot (including ourselves)
}

// IsThreadReply reports whether the message is a reply inside a thread.
// A message with ThreadRootID equal to its own ID is a thread root, not a reply.
func (m Message) IsThreadReply() bool {
	return m.ThreadRootID != "" && m.ThreadRootID != m.ID
}

// Time parses the message ID into a wall-clock time. Platform IDs are
// "seconds.fraction" strings in Unix time.
func (m Message) Time() (time.Time, error) {
	return ParseID(m.ID)
}

// ParseID converts a "seconds.fraction" message ID to a time.Time.
func ParseID(id string) (time.Time, error) {
	sec := id
	frac := ""
	if i := strings.IndexByte(id, '.'); i >= 0 {
		sec, frac = id[:i], id[i+1:]
	}
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("chat: parse message id %q: %w", id, err)
	}
	var ns int64
	if frac != "" {
		// Pad/truncate the fraction to microseconds.
		for len(frac) < 6 {
			frac += "0"
		}
		us, err := strconv.ParseInt(frac[:6], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("chat: parse message id %q: %w", id, err)
		}
		ns = us * 1000
	}
	return time.Unix(s, ns), nil
}
