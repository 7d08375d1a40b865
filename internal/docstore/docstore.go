// Package docstore appends text blocks to an external document store.
// It is a best-effort sink: callers log failures and move on.
package docstore

import "context"

// Store appends text blocks to a designated page.
type Store interface {
	// AppendBlock appends one text block to the configured target page.
	AppendBlock(ctx context.Context, text string) error
	Name() string
}
