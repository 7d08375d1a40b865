package slackchat

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/teampulse-io/teampulse/internal/chat"
)

// Config holds Slack client configuration.
type Config struct {
	BotToken string // xoxb-... Bot User OAuth Token
	AppToken string // xapp-... App-Level Token (for Socket Mode)
}

// Client implements chat.Client over the Slack Web API.
type Client struct {
	api    *slack.Client
	logger *slog.Logger
	botID  string
}

// historyPageSize is the per-request limit for conversations.history.
const historyPageSize = 200

// NewClient creates a Slack Web API client and verifies authentication.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("slack: bot_token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []slack.Option{
		// Every Web API call is bounded; a stuck call must not stall the process.
		slack.OptionHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.AppToken))
	}
	api := slack.New(cfg.BotToken, opts...)

	authResp, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("slack: auth test: %w", err)
	}
	logger.Info("slack bot authorized", "user", authResp.User, "team", authResp.Team)

	return &Client{
		api:    api,
		logger: logger,
		botID:  authResp.UserID,
	}, nil
}

// BotID returns the authenticated bot's user ID.
func (c *Client) BotID() string { return c.botID }

// PostMessage posts text to a channel, optionally as a threaded reply.
func (c *Client) PostMessage(ctx context.Context, channelID, text string, opts chat.PostOptions) (string, error) {
	msgOpts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if opts.ThreadRootID != "" {
		msgOpts = append(msgOpts, slack.MsgOptionTS(opts.ThreadRootID))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, msgOpts...)
	if err != nil {
		return "", fmt.Errorf("slack: post message: %w", err)
	}
	return ts, nil
}

// UpdateMessage replaces the text of a previously posted message.
func (c *Client) UpdateMessage(ctx context.Context, channelID, messageID, text string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, messageID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: update message: %w", err)
	}
	return nil
}

// DeleteMessage removes a previously posted message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_, _, err := c.api.DeleteMessageContext(ctx, channelID, messageID)
	if err != nil {
		return fmt.Errorf("slack: delete message: %w", err)
	}
	return nil
}

// AddReaction attaches a named emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channelID, messageID, name string) error {
	err := c.api.AddReactionContext(ctx, name, slack.ItemRef{
		Channel:   channelID,
		Timestamp: messageID,
	})
	if err != nil {
		return fmt.Errorf("slack: add reaction: %w", err)
	}
	return nil
}

// History fetches all messages since oldest, following cursor pagination,
// and returns them in chronological order.
func (c *Client) History(ctx context.Context, channelID string, oldest time.Time) ([]chat.Message, error) {
	params := &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    formatTS(oldest),
		Limit:     historyPageSize,
	}

	var out []chat.Message
	for {
		resp, err := c.api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("slack: conversation history: %w", err)
		}
		for _, m := range resp.Messages {
			out = append(out, messageFromHistory(channelID, m))
		}
		cursor := resp.ResponseMetaData.NextCursor
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	// Slack returns newest-first; flip to original order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// UserDisplayName resolves a user ID to a display name.
func (c *Client) UserDisplayName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("slack: user info: %w", err)
	}
	if name := user.Profile.DisplayName; name != "" {
		return name, nil
	}
	if user.RealName != "" {
		return user.RealName, nil
	}
	return user.Name, nil
}

// messageFromHistory maps a Slack history entry to the chat model.
func messageFromHistory(channelID string, m slack.Message) chat.Message {
	return chat.Message{
		ID:           m.Timestamp,
		SenderID:     m.User,
		ChannelID:    channelID,
		Text:         m.Text,
		ThreadRootID: m.ThreadTimestamp,
		Bot:          m.BotID != "" || m.SubType == "bot_message",
	}
}

// formatTS renders a time as a Slack "oldest" timestamp parameter.
func formatTS(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}
