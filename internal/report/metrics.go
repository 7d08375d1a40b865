package report

import (
	"math"
	"strings"

	"github.com/teampulse-io/teampulse/internal/actionitem"
	"github.com/teampulse-io/teampulse/internal/chat"
)

// DefaultDoneMarkers are the completion-indicating substrings used by the
// action-item completion metric when the config doesn't override them.
var DefaultDoneMarkers = []string{
	"done", "merged", "completed", "finished", "fixed", "shipped", "resolved",
	"완료", "머지", "해결",
}

// DefaultRedundancyThreshold is the cosine-similarity cutoff above which two
// messages count as redundant.
const DefaultRedundancyThreshold = 0.85

// SpeakerDistribution counts messages per sender.
func SpeakerDistribution(msgs []chat.Message) map[string]int {
	dist := make(map[string]int, len(msgs))
	for _, m := range msgs {
		sender := m.SenderID
		if sender == "" {
			sender = "unknown"
		}
		dist[sender]++
	}
	return dist
}

// AvgResponseLatencyMinutes averages, over every thread reply whose root is
// also in the set, the minutes between root and reply. Returns 0 when no such
// pair exists.
func AvgResponseLatencyMinutes(msgs []chat.Message) float64 {
	roots := make(map[string]chat.Message, len(msgs))
	for _, m := range msgs {
		roots[m.ID] = m
	}

	var total float64
	var count int
	for _, m := range msgs {
		if !m.IsThreadReply() {
			continue
		}
		root, ok := roots[m.ThreadRootID]
		if !ok {
			continue
		}
		replyAt, err := m.Time()
		if err != nil {
			continue
		}
		rootAt, err := root.Time()
		if err != nil {
			continue
		}
		total += replyAt.Sub(rootAt).Minutes()
		count++
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// RedundancyRatio is the fraction of unordered message pairs whose embedding
// cosine similarity is at or above threshold. Returns 0 for fewer than two
// vectors (no pairs to compare).
func RedundancyRatio(vectors [][]float64, threshold float64) float64 {
	n := len(vectors)
	if n < 2 {
		return 0
	}

	var redundant, pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs++
			if cosine(vectors[i], vectors[j]) >= threshold {
				redundant++
			}
		}
	}
	return float64(redundant) / float64(pairs)
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CompletionRatio marks an action item done when some message text contains
// both the first token of the item's description and one of the completion
// markers. Returns 0 when there are no items, never a division error.
func CompletionRatio(items []actionitem.Item, msgs []chat.Message, markers []string) float64 {
	if len(items) == 0 {
		return 0
	}

	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = strings.ToLower(m.Text)
	}

	done := 0
	for _, item := range items {
		token := firstToken(item.Description)
		if token == "" {
			continue
		}
		if itemDone(token, texts, markers) {
			done++
		}
	}
	return float64(done) / float64(len(items))
}

func itemDone(token string, texts []string, markers []string) bool {
	for _, text := range texts {
		if !strings.Contains(text, token) {
			continue
		}
		for _, marker := range markers {
			if strings.Contains(text, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

func firstToken(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
