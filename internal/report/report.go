// Package report computes the daily conversation summary and productivity
// metrics and emits one report per run to the chat channel and the document
// store.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teampulse-io/teampulse/internal/actionitem"
)

// Report is the fixed-shape record produced once per aggregation run. It has
// no persistence of its own; each run is independent.
type Report struct {
	RunID       string
	GeneratedAt time.Time

	MessageCount              int
	InformationDensity        float64 // fraction of messages classified informative, in [0,1]
	ActionItems               []actionitem.Item
	AvgResponseLatencyMinutes float64
	Summary                   string
	SummaryWordCount          int
	SpeakerDistribution       map[string]int
	RedundancyRatio           float64
	RedundancyAvailable       bool // false when the provider has no embeddings
	CompletionRatio           float64
}

// ChannelText renders the report for the chat channel: the free-text summary,
// the action-item list, and the metric block.
func (r *Report) ChannelText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*[%s] Daily conversation summary*\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	if r.Summary != "" {
		b.WriteString(r.Summary)
	} else {
		b.WriteString("(summary unavailable)")
	}

	b.WriteString("\n\n*Today's action items*\n")
	if len(r.ActionItems) == 0 {
		b.WriteString("(none)")
	} else {
		for i, item := range r.ActionItems {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(item.Raw)
		}
	}

	b.WriteString("\n\n")
	b.WriteString(r.metricsText())
	return b.String()
}

// DocBlock renders the report for the document-store append.
func (r *Report) DocBlock() string {
	return fmt.Sprintf("[Productivity metrics report] %s (run %s)\n%s",
		r.GeneratedAt.Format("2006-01-02 15:04"), r.RunID, r.metricsText())
}

func (r *Report) metricsText() string {
	var b strings.Builder
	b.WriteString("*Today's productivity metrics*\n")
	fmt.Fprintf(&b, "Information density: %.2f\n", r.InformationDensity)
	fmt.Fprintf(&b, "Action items: %d\n", len(r.ActionItems))
	fmt.Fprintf(&b, "Avg response latency: %.1f min\n", r.AvgResponseLatencyMinutes)
	fmt.Fprintf(&b, "Summary length: %d words\n", r.SummaryWordCount)
	fmt.Fprintf(&b, "Speaker distribution: %s\n", formatDistribution(r.SpeakerDistribution))
	if r.RedundancyAvailable {
		fmt.Fprintf(&b, "Redundancy ratio: %.2f\n", r.RedundancyRatio)
	} else {
		b.WriteString("Redundancy ratio: n/a\n")
	}
	fmt.Fprintf(&b, "Action-item completion: %.2f", r.CompletionRatio)
	return b.String()
}

// formatDistribution renders sender counts deterministically, sorted by
// sender ID.
func formatDistribution(dist map[string]int) string {
	if len(dist) == 0 {
		return "(none)"
	}
	ids := make([]string, 0, len(dist))
	for id := range dist {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s=%d", id, dist[id])
	}
	return strings.Join(parts, ", ")
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
