package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teampulse-io/teampulse/internal/actionitem"
	"github.com/teampulse-io/teampulse/internal/chat"
	"github.com/teampulse-io/teampulse/internal/docstore"
	"github.com/teampulse-io/teampulse/internal/provider"
)

// noActivityNotice is posted when the day's window holds no human messages.
const noActivityNotice = "No conversation today. (nothing to summarize)"

// Aggregator runs one daily aggregation: fetch the day's messages, compute
// the metrics, and emit one report to the chat channel and the document
// store. Runs are independent; concurrent runs are a deployment mistake the
// code does not arbitrate.
type Aggregator struct {
	Chat      chat.Client
	Provider  provider.Provider
	Docs      docstore.Store // optional; nil disables the document sink
	ChannelID string
	Location  *time.Location // timezone defining "today"

	DoneMarkers         []string // defaults to DefaultDoneMarkers
	RedundancyThreshold float64  // defaults to DefaultRedundancyThreshold

	Logger *slog.Logger
	Now    func() time.Time // defaults to time.Now
}

// Run executes one aggregation. A history-fetch failure aborts the run after
// a single best-effort channel notice; failures past that point degrade the
// report instead of aborting, except the chat emission itself.
func (a *Aggregator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := a.logger().With("run", runID[:8])

	now := a.now().In(a.location())
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location())
	logger.Info("daily aggregation started", "channel", a.ChannelID, "since", start)

	prog := startProgress(ctx, a.Chat, a.ChannelID, "🔄 Generating the daily summary...", logger)

	prog.update(ctx, "📥 Collecting channel messages...")
	history, err := a.Chat.History(ctx, a.ChannelID, start)
	if err != nil {
		prog.finish(ctx)
		// One notice, then fail the run: nothing downstream is meaningful
		// without the day's messages.
		if _, nerr := a.Chat.PostMessage(ctx, a.ChannelID, "❌ Daily summary failed: could not fetch channel history.", chat.PostOptions{}); nerr != nil {
			logger.Error("failure notice post failed", "error", nerr)
		}
		return fmt.Errorf("report: history fetch: %w", err)
	}

	msgs := filterHuman(history)
	logger.Info("messages collected", "fetched", len(history), "kept", len(msgs))

	if len(msgs) == 0 {
		prog.finish(ctx)
		if _, err := a.Chat.PostMessage(ctx, a.ChannelID, noActivityNotice, chat.PostOptions{}); err != nil {
			return fmt.Errorf("report: no-activity notice: %w", err)
		}
		logger.Info("no activity, nothing to report")
		return nil
	}

	conversation := joinTexts(msgs)

	prog.update(ctx, fmt.Sprintf("📝 Classifying %d messages...", len(msgs)))
	density := a.informationDensity(ctx, msgs, logger)

	prog.update(ctx, "🤖 Summarizing the conversation...")
	summary := a.summarize(ctx, conversation, logger)

	prog.update(ctx, "📝 Extracting action items...")
	extractor := &actionitem.Extractor{Provider: a.Provider}
	items, err := extractor.Extract(ctx, conversation)
	if err != nil {
		logger.Warn("action-item extraction failed, reporting zero items", "error", err)
		items = nil
	}

	redundancy, redundancyAvailable := a.redundancyRatio(ctx, msgs, logger)

	rep := &Report{
		RunID:                     runID,
		GeneratedAt:               now,
		MessageCount:              len(msgs),
		InformationDensity:        density,
		ActionItems:               items,
		AvgResponseLatencyMinutes: AvgResponseLatencyMinutes(msgs),
		Summary:                   summary,
		SummaryWordCount:          WordCount(summary),
		SpeakerDistribution:       SpeakerDistribution(msgs),
		RedundancyRatio:           redundancy,
		RedundancyAvailable:       redundancyAvailable,
		CompletionRatio:           CompletionRatio(items, msgs, a.doneMarkers()),
	}

	prog.update(ctx, "📤 Posting the report...")
	if _, err := a.Chat.PostMessage(ctx, a.ChannelID, rep.ChannelText(), chat.PostOptions{}); err != nil {
		prog.finish(ctx)
		return fmt.Errorf("report: post report: %w", err)
	}

	// Independent best-effort sink: a document-store failure never rolls back
	// the chat emission.
	if a.Docs != nil {
		if err := a.Docs.AppendBlock(ctx, rep.DocBlock()); err != nil {
			logger.Error("document store append failed", "store", a.Docs.Name(), "error", err)
		} else {
			logger.Info("report appended to document store", "store", a.Docs.Name())
		}
	}

	prog.finish(ctx)
	logger.Info("daily aggregation finished",
		"messages", rep.MessageCount,
		"action_items", len(rep.ActionItems),
		"information_density", rep.InformationDensity,
	)
	return nil
}

// informationDensity classifies each message with a binary-label completion
// call. A failed or malformed classification counts as chatter, not a crash.
func (a *Aggregator) informationDensity(ctx context.Context, msgs []chat.Message, logger *slog.Logger) float64 {
	informative := 0
	for _, m := range msgs {
		answer, err := a.Provider.Complete(ctx, provider.CompletionRequest{
			Prompt:    classifyPrompt(m.Text),
			MaxTokens: classifyMaxTokens,
		})
		if err != nil {
			logger.Warn("message classification failed", "id", m.ID, "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(answer), "informative") {
			informative++
		}
	}
	return float64(informative) / float64(len(msgs))
}

func (a *Aggregator) summarize(ctx context.Context, conversation string, logger *slog.Logger) string {
	summary, err := a.Provider.Complete(ctx, provider.CompletionRequest{
		Prompt:      summaryPrompt(conversation),
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		logger.Warn("summary generation failed", "error", err)
		return ""
	}
	return summary
}

// redundancyRatio embeds all message texts and compares unordered pairs.
// Providers without embeddings make the metric unavailable rather than zero.
func (a *Aggregator) redundancyRatio(ctx context.Context, msgs []chat.Message, logger *slog.Logger) (float64, bool) {
	if len(msgs) < 2 {
		return 0, true
	}

	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}

	vectors, err := a.Provider.Embed(ctx, texts)
	if err != nil {
		if errors.Is(err, provider.ErrNoEmbeddings) {
			logger.Info("provider has no embeddings, skipping redundancy metric", "provider", a.Provider.Name())
		} else {
			logger.Warn("embedding failed, skipping redundancy metric", "error", err)
		}
		return 0, false
	}

	threshold := a.RedundancyThreshold
	if threshold == 0 {
		threshold = DefaultRedundancyThreshold
	}
	return RedundancyRatio(vectors, threshold), true
}

// filterHuman drops bot-authored and text-less messages.
func filterHuman(msgs []chat.Message) []chat.Message {
	var out []chat.Message
	for _, m := range msgs {
		if m.Bot || strings.TrimSpace(m.Text) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// joinTexts concatenates message texts newline-joined, in original order.
func joinTexts(msgs []chat.Message) string {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return strings.Join(texts, "\n")
}

func (a *Aggregator) doneMarkers() []string {
	if len(a.DoneMarkers) > 0 {
		return a.DoneMarkers
	}
	return DefaultDoneMarkers
}

func (a *Aggregator) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return time.Local
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
