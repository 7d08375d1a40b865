package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/teampulse-io/teampulse/internal/chat"
	"github.com/teampulse-io/teampulse/internal/provider"
)

// fakeChat is an in-memory chat.Client. Posted messages get sequential IDs so
// the progress-message lifecycle can be asserted.
type fakeChat struct {
	history    []chat.Message
	historyErr error
	postErr    func(text string) error

	posted  []string
	updates []string
	deleted []string
	nextID  int
}

func (f *fakeChat) PostMessage(_ context.Context, _, text string, _ chat.PostOptions) (string, error) {
	if f.postErr != nil {
		if err := f.postErr(text); err != nil {
			return "", err
		}
	}
	f.posted = append(f.posted, text)
	f.nextID++
	return fmt.Sprintf("%d.1", 900+f.nextID), nil
}

func (f *fakeChat) UpdateMessage(_ context.Context, _, _, text string) error {
	f.updates = append(f.updates, text)
	return nil
}

func (f *fakeChat) DeleteMessage(_ context.Context, _, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeChat) AddReaction(context.Context, string, string, string) error { return nil }

func (f *fakeChat) History(context.Context, string, time.Time) ([]chat.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeChat) UserDisplayName(_ context.Context, userID string) (string, error) {
	return userID, nil
}

// routedProvider answers each prompt family with a canned response.
type routedProvider struct {
	classify string // answer for per-message classification
	summary  string
	items    string // answer for action-item extraction
	embedErr error
	vectors  [][]float64
}

func (p *routedProvider) Complete(_ context.Context, req provider.CompletionRequest) (string, error) {
	switch {
	case strings.Contains(req.Prompt, "informative or chatter"):
		return p.classify, nil
	case strings.Contains(req.Prompt, "action items"):
		return p.items, nil
	default:
		return p.summary, nil
	}
}

func (p *routedProvider) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	if p.vectors != nil {
		return p.vectors, nil
	}
	vecs := make([][]float64, len(texts))
	for i := range vecs {
		vecs[i] = []float64{1, 0}
	}
	return vecs, nil
}

func (p *routedProvider) Name() string { return "routed" }

// fakeDocs records appended blocks.
type fakeDocs struct {
	blocks []string
	err    error
}

func (d *fakeDocs) AppendBlock(_ context.Context, text string) error {
	if d.err != nil {
		return d.err
	}
	d.blocks = append(d.blocks, text)
	return nil
}

func (d *fakeDocs) Name() string { return "fake-docs" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dayMessages() []chat.Message {
	return []chat.Message{
		{ID: "1000.1", SenderID: "U1", ChannelID: "C1", Text: "starting on the importer today"},
		{ID: "1100.1", SenderID: "U2", ChannelID: "C1", Text: "I'll review the design doc"},
		{ID: "1200.1", SenderID: "U1", ChannelID: "C1", Text: "importer merged, done"},
	}
}

func newAggregator(fc *fakeChat, p provider.Provider, docs *fakeDocs) *Aggregator {
	a := &Aggregator{
		Chat:      fc,
		Provider:  p,
		ChannelID: "C1",
		Location:  time.UTC,
		Logger:    quietLogger(),
		Now:       func() time.Time { return time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC) },
	}
	if docs != nil {
		a.Docs = docs
	}
	return a
}

// reportPost picks the final report out of the posted messages, skipping the
// transient progress message.
func reportPost(t *testing.T, fc *fakeChat) string {
	t.Helper()
	for _, text := range fc.posted {
		if strings.Contains(text, "Daily conversation summary") {
			return text
		}
	}
	t.Fatalf("no report posted; posts: %q", fc.posted)
	return ""
}

func TestRun_FullReport(t *testing.T) {
	fc := &fakeChat{history: dayMessages()}
	p := &routedProvider{
		classify: "informative",
		summary:  "The importer shipped.",
		items:    "- [U1] land the importer",
	}
	docs := &fakeDocs{}
	a := newAggregator(fc, p, docs)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := reportPost(t, fc)
	for _, want := range []string{
		"The importer shipped.",
		"- [U1] land the importer",
		"Information density: 1.00",
		"Speaker distribution: U1=2, U2=1",
		"Redundancy ratio: 1.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}

	if len(docs.blocks) != 1 || !strings.Contains(docs.blocks[0], "[Productivity metrics report]") {
		t.Errorf("doc blocks = %q", docs.blocks)
	}
	if len(fc.deleted) == 0 {
		t.Error("progress message never deleted")
	}
}

func TestRun_NoActivityPostsNoticeOnly(t *testing.T) {
	fc := &fakeChat{history: []chat.Message{
		{ID: "1000.1", SenderID: "B1", Text: "bot noise", Bot: true},
		{ID: "1100.1", SenderID: "U1", Text: "   "},
	}}
	a := newAggregator(fc, &routedProvider{}, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, text := range fc.posted {
		if strings.Contains(text, "Daily conversation summary") {
			t.Errorf("report posted for an empty day:\n%s", text)
		}
		if text == noActivityNotice {
			found = true
		}
	}
	if !found {
		t.Errorf("no-activity notice missing; posts: %q", fc.posted)
	}
}

func TestRun_HistoryFailurePostsNoticeAndFails(t *testing.T) {
	fc := &fakeChat{historyErr: errors.New("rate limited")}
	a := newAggregator(fc, &routedProvider{}, nil)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected history error to surface")
	}

	var found bool
	for _, text := range fc.posted {
		if strings.Contains(text, "could not fetch channel history") {
			found = true
		}
	}
	if !found {
		t.Errorf("failure notice missing; posts: %q", fc.posted)
	}
}

func TestRun_ReportPostFailureFailsRun(t *testing.T) {
	fc := &fakeChat{history: dayMessages()}
	fc.postErr = func(text string) error {
		if strings.Contains(text, "Daily conversation summary") {
			return errors.New("channel gone")
		}
		return nil
	}
	docs := &fakeDocs{}
	a := newAggregator(fc, &routedProvider{classify: "chatter"}, docs)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected report post failure to surface")
	}
	if len(docs.blocks) != 0 {
		t.Error("document store written despite failed chat emission")
	}
}

func TestRun_DocStoreFailureDoesNotFailRun(t *testing.T) {
	fc := &fakeChat{history: dayMessages()}
	docs := &fakeDocs{err: errors.New("notion 503")}
	a := newAggregator(fc, &routedProvider{classify: "chatter", summary: "s"}, docs)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run should tolerate a document-store failure: %v", err)
	}
	reportPost(t, fc)
}

func TestRun_NoEmbeddingsReportsNA(t *testing.T) {
	fc := &fakeChat{history: dayMessages()}
	p := &routedProvider{classify: "chatter", summary: "s", embedErr: provider.ErrNoEmbeddings}
	a := newAggregator(fc, p, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text := reportPost(t, fc); !strings.Contains(text, "Redundancy ratio: n/a") {
		t.Errorf("missing n/a redundancy line:\n%s", text)
	}
}

func TestFilterHuman(t *testing.T) {
	msgs := []chat.Message{
		{ID: "1.0", SenderID: "U1", Text: "hello"},
		{ID: "2.0", SenderID: "B1", Text: "automated", Bot: true},
		{ID: "3.0", SenderID: "U2", Text: " \t"},
		{ID: "4.0", SenderID: "U3", Text: "bye"},
	}

	got := filterHuman(msgs)
	if len(got) != 2 || got[0].ID != "1.0" || got[1].ID != "4.0" {
		t.Errorf("filterHuman = %+v", got)
	}
}

func TestJoinTexts(t *testing.T) {
	msgs := []chat.Message{
		{ID: "1.0", Text: "first"},
		{ID: "2.0", Text: "second"},
	}
	if got := joinTexts(msgs); got != "first\nsecond" {
		t.Errorf("joinTexts = %q", got)
	}
}
