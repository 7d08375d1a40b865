package cheer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teampulse-io/teampulse/internal/chat"
	"github.com/teampulse-io/teampulse/internal/ledger"
	"github.com/teampulse-io/teampulse/internal/provider"
)

// fallbackName is used when the directory lookup fails; the reply is still
// attempted.
const fallbackName = "user"

const (
	completionMaxTokens   = 300
	completionTemperature = 0.8
)

// Responder handles one inbound message event end to end:
// filter → prompt → completion → threaded reply → reaction → ledger record.
type Responder struct {
	Chat      chat.Client
	Provider  provider.Provider
	Ledger    ledger.Store
	AllowFrom []string // sender IDs eligible for encouragement
	Reaction  string   // emoji name attached to the original message
	Logger    *slog.Logger
	Now       func() time.Time // defaults to time.Now
}

// Handle processes a single message event. Ineligible messages are dropped
// silently. Side effects are ordered so that a crash mid-event biases toward
// a duplicate reply on redelivery, never a silent drop: the ledger is written
// only after the reply post succeeded.
func (r *Responder) Handle(ctx context.Context, msg chat.Message) error {
	logger := r.logger()

	ok, err := Eligible(msg, r.AllowFrom, r.Ledger)
	if err != nil {
		return fmt.Errorf("cheer: eligibility check for %s: %w", msg.ID, err)
	}
	if !ok {
		logger.Debug("message not eligible", "id", msg.ID, "sender", msg.SenderID)
		return nil
	}

	name, err := r.Chat.UserDisplayName(ctx, msg.SenderID)
	if err != nil || name == "" {
		logger.Warn("display name lookup failed, using placeholder", "sender", msg.SenderID, "error", err)
		name = fallbackName
	}

	reply, err := r.Provider.Complete(ctx, provider.CompletionRequest{
		Prompt:      cheerPrompt(name, msg.Text),
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		// No reply and no record: a later redelivery of the same message can
		// still succeed.
		return fmt.Errorf("cheer: completion for %s: %w", msg.ID, err)
	}
	if reply == "" {
		logger.Warn("completion returned empty result, skipping", "id", msg.ID)
		return nil
	}

	text := fmt.Sprintf("*[%s] Encouragement*\n\n%s", r.now().Format("2006-01-02 15:04"), reply)
	if _, err := r.Chat.PostMessage(ctx, msg.ChannelID, text, chat.PostOptions{ThreadRootID: msg.ID}); err != nil {
		return fmt.Errorf("cheer: post reply for %s: %w", msg.ID, err)
	}

	// The reply is out. From here on failures are logged but the event is
	// still recorded, otherwise a redelivery would reply twice.
	if r.Reaction != "" {
		if err := r.Chat.AddReaction(ctx, msg.ChannelID, msg.ID, r.Reaction); err != nil {
			logger.Warn("reaction failed", "id", msg.ID, "reaction", r.Reaction, "error", err)
		}
	}

	if err := r.Ledger.Record(msg.ID); err != nil {
		return fmt.Errorf("cheer: record %s: %w", msg.ID, err)
	}

	logger.Info("encouragement posted", "id", msg.ID, "sender", msg.SenderID)
	return nil
}

func (r *Responder) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Responder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
