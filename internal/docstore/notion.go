package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const notionAPIVersion = "2022-06-28"

// NotionStore implements Store by appending paragraph blocks to a Notion page.
type NotionStore struct {
	client  *http.Client
	baseURL string
	token   string
	pageID  string
	backoff time.Duration
}

// NotionOption configures a NotionStore.
type NotionOption func(*NotionStore)

// WithNotionBaseURL sets a custom API base URL.
func WithNotionBaseURL(url string) NotionOption {
	return func(s *NotionStore) { s.baseURL = url }
}

// WithNotionHTTPClient sets a custom HTTP client.
func WithNotionHTTPClient(c *http.Client) NotionOption {
	return func(s *NotionStore) { s.client = c }
}

// WithNotionRetryBackoff sets the pause before the single retry.
func WithNotionRetryBackoff(d time.Duration) NotionOption {
	return func(s *NotionStore) { s.backoff = d }
}

// NewNotion creates a Notion document store targeting one page.
func NewNotion(token, pageID string, opts ...NotionOption) *NotionStore {
	s := &NotionStore{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.notion.com",
		token:   token,
		pageID:  pageID,
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *NotionStore) Name() string { return "notion" }

// AppendBlock appends one paragraph block to the target page, with at most
// one retry on transient failure.
func (s *NotionStore) AppendBlock(ctx context.Context, text string) error {
	body := notionAppendRequest{
		Children: []notionBlock{{
			Object: "block",
			Type:   "paragraph",
			Paragraph: notionParagraph{
				RichText: []notionRichText{{
					Type: "text",
					Text: notionText{Content: text},
				}},
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("notion: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff):
			}
		}

		retryable, err := s.doOnce(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (s *NotionStore) doOnce(ctx context.Context, payload []byte) (bool, error) {
	url := fmt.Sprintf("%s/v1/blocks/%s/children", s.baseURL, s.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("notion: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionAPIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("notion: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("notion: api error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return false, nil
}

// --- Notion wire format types ---

type notionAppendRequest struct {
	Children []notionBlock `json:"children"`
}

type notionBlock struct {
	Object    string          `json:"object"`
	Type      string          `json:"type"`
	Paragraph notionParagraph `json:"paragraph"`
}

type notionParagraph struct {
	RichText []notionRichText `json:"rich_text"`
}

type notionRichText struct {
	Type string     `json:"type"`
	Text notionText `json:"text"`
}

type notionText struct {
	Content string `json:"content"`
}
