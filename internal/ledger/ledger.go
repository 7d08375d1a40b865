// Package ledger tracks which messages have already been answered, giving the
// responder at-most-once semantics per message ID.
package ledger

// Store is the persistence interface for responded-message IDs.
//
// A Record must be durable before the caller moves on to the next event.
// When the backing store is unavailable, HasResponded returns an error and
// the caller aborts the whole response attempt: skipping one reply is safer
// than replying twice on a platform redelivery. Entries are never deleted;
// unbounded growth is an accepted limitation of this design.
//
// Stores are not required to be safe for concurrent writers. The listener is
// the single writer and processes one event at a time.
type Store interface {
	// HasResponded reports whether id was previously recorded.
	HasResponded(id string) (bool, error)
	// Record durably appends id. Recording an already-present id is a no-op.
	Record(id string) error
	// Close releases the backing store.
	Close() error
}
