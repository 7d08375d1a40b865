// Package cheer posts encouragement replies to channel messages from an
// allow-listed set of senders.
package cheer

import (
	"strings"

	"github.com/teampulse-io/teampulse/internal/chat"
	"github.com/teampulse-io/teampulse/internal/ledger"
)

// Eligible decides whether a message gets an encouragement reply. Checks run
// in a fixed order and the first failing one wins:
//
//  1. sender is on the allow-list
//  2. message is not a thread reply
//  3. message has not been answered before
//  4. text is non-blank after trimming
//
// The only side effect is the ledger read. A ledger error fails closed: the
// message is rejected and the error is surfaced so the caller aborts the
// event instead of risking a duplicate reply.
func Eligible(msg chat.Message, allowFrom []string, led ledger.Store) (bool, error) {
	if !senderAllowed(msg.SenderID, allowFrom) {
		return false, nil
	}
	if msg.IsThreadReply() {
		return false, nil
	}
	responded, err := led.HasResponded(msg.ID)
	if err != nil {
		return false, err
	}
	if responded {
		return false, nil
	}
	if strings.TrimSpace(msg.Text) == "" {
		return false, nil
	}
	return true, nil
}

func senderAllowed(senderID string, allowFrom []string) bool {
	for _, id := range allowFrom {
		if id == senderID {
			return true
		}
	}
	return false
}
