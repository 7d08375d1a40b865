package chat

import (
	"context"
	"time"
)

// Client is the interface to the chat platform's Web API.
type Client interface {
	// PostMessage posts text to a channel and returns the new message's ID.
	// A non-empty ThreadRootID in opts makes the post a threaded reply.
	PostMessage(ctx context.Context, channelID, text string, opts PostOptions) (string, error)
	// UpdateMessage replaces the text of an existing message.
	UpdateMessage(ctx context.Context, channelID, messageID, text string) error
	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// AddReaction attaches a named emoji reaction to a message.
	AddReaction(ctx context.Context, channelID, messageID, name string) error
	// History returns all channel messages with a timestamp at or after oldest,
	// in chronological order, paging through the platform's cursor pagination.
	History(ctx context.Context, channelID string, oldest time.Time) ([]Message, error)
	// UserDisplayName resolves a sender ID to a human-readable name.
	UserDisplayName(ctx context.Context, userID string) (string, error)
}

// PostOptions holds optional parameters for PostMessage.
type PostOptions struct {
	ThreadRootID string // post as a reply in this thread
}

// Listener receives real-time message events from the chat platform.
type Listener interface {
	// Name returns the platform type (e.g., "slack").
	Name() string
	// Start begins listening for inbound messages. Blocks until context is cancelled.
	Start(ctx context.Context) error
	// Stop gracefully shuts down the listener.
	Stop() error
}

// Handler processes one inbound message event. The listener delivers events
// one at a time; a handler error aborts only that event.
type Handler func(ctx context.Context, msg Message) error
