// Package actionitem turns raw conversation text into a normalized list of
// (owner, task) pairs via a templated completion call and a line-prefix parser.
package actionitem

import (
	"context"
	"fmt"
	"strings"

	"github.com/teampulse-io/teampulse/internal/provider"
)

// Unassigned is the owner sentinel when no responsible person is identifiable.
const Unassigned = "unassigned"

// itemPrefix marks a conforming action-item line.
const itemPrefix = "- ["

const (
	extractMaxTokens   = 400
	extractTemperature = 0.3
)

// Item is one extracted action item.
type Item struct {
	Owner       string // person responsible, or Unassigned
	Description string
	Raw         string // verbatim line as the model produced it
}

// Extractor extracts action items from conversation text.
type Extractor struct {
	Provider provider.Provider
}

// Extract makes a single completion call and parses the result. Model output
// that doesn't conform to the expected line format yields zero items; that is
// not an error.
func (e *Extractor) Extract(ctx context.Context, conversation string) ([]Item, error) {
	raw, err := e.Provider.Complete(ctx, provider.CompletionRequest{
		Prompt:      extractPrompt(conversation),
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("actionitem: completion: %w", err)
	}
	return Parse(raw), nil
}

// Parse keeps only trimmed lines starting with "- [" and splits each into
// owner and description. Lines with no closing bracket keep the whole
// remainder as the description with an unassigned owner.
func Parse(raw string) []Item {
	var items []Item
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, itemPrefix) {
			continue
		}

		rest := line[len(itemPrefix):]
		owner := Unassigned
		desc := rest
		if i := strings.Index(rest, "]"); i >= 0 {
			owner = strings.TrimSpace(rest[:i])
			desc = strings.TrimSpace(rest[i+1:])
		}
		if owner == "" {
			owner = Unassigned
		}

		items = append(items, Item{
			Owner:       owner,
			Description: desc,
			Raw:         line,
		})
	}
	return items
}

func extractPrompt(conversation string) string {
	return fmt.Sprintf(`Extract today's action items (tasks, requests, decisions)
from the conversation below, each with its owner. Write every item on its own
line in the exact form "- [owner] task". Use "- [%s] task" when no owner is
identifiable. Output nothing but those lines.

Conversation:
%s

Example answer:
- [Jane] write the design doc
- [Minsu] schedule the review meeting
- [%s] collect benchmark data`, Unassigned, conversation, Unassigned)
}
