package report

import (
	"context"
	"log/slog"

	"github.com/teampulse-io/teampulse/internal/chat"
)

// progress is a transient channel message updated through the phases of an
// aggregation run and deleted at the end. Every step is best-effort: a dead
// progress message never fails the run.
type progress struct {
	chat      chat.Client
	channelID string
	messageID string
	logger    *slog.Logger
}

func startProgress(ctx context.Context, c chat.Client, channelID, text string, logger *slog.Logger) *progress {
	p := &progress{chat: c, channelID: channelID, logger: logger}
	id, err := c.PostMessage(ctx, channelID, text, chat.PostOptions{})
	if err != nil {
		logger.Warn("progress message post failed", "error", err)
		return p
	}
	p.messageID = id
	return p
}

func (p *progress) update(ctx context.Context, text string) {
	if p.messageID == "" {
		return
	}
	if err := p.chat.UpdateMessage(ctx, p.channelID, p.messageID, text); err != nil {
		p.logger.Warn("progress message update failed", "error", err)
	}
}

func (p *progress) finish(ctx context.Context) {
	if p.messageID == "" {
		return
	}
	if err := p.chat.DeleteMessage(ctx, p.channelID, p.messageID); err != nil {
		p.logger.Warn("progress message delete failed", "error", err)
	}
	p.messageID = ""
}
