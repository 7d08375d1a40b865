package slackchat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/teampulse-io/teampulse/internal/chat"
)

// Listener implements chat.Listener for Slack via Socket Mode. Events are
// handled one at a time: the handler returns before the next event is read.
type Listener struct {
	client    *Client
	socket    *socketmode.Client
	channelID string
	handler   chat.Handler
	logger    *slog.Logger
	cancel    context.CancelFunc
}

// NewListener creates a Socket Mode listener that delivers message events in
// channelID to handler. The client must have been built with an app token.
func NewListener(client *Client, channelID string, handler chat.Handler, logger *slog.Logger) (*Listener, error) {
	if client == nil {
		return nil, fmt.Errorf("slack: client is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("slack: handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		client:    client,
		socket:    socketmode.New(client.api),
		channelID: channelID,
		handler:   handler,
		logger:    logger,
	}, nil
}

func (l *Listener) Name() string { return "slack" }

// Start begins listening for events. Blocks until the context is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)

	go l.handleEvents(ctx)

	l.logger.Info("slack listener started (socket mode)")
	return l.socket.RunContext(ctx)
}

// Stop gracefully shuts down the listener.
func (l *Listener) Stop() error {
	if l.cancel != nil {
		l.cancel()
	}
	return nil
}

func (l *Listener) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-l.socket.Events:
			if event.Type == socketmode.EventTypeEventsAPI {
				l.handleEventsAPI(ctx, event)
			}
		}
	}
}

func (l *Listener) handleEventsAPI(ctx context.Context, event socketmode.Event) {
	eventsAPIEvent, ok := event.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}

	l.socket.Ack(*event.Request)

	if ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent); ok {
		l.handleMessage(ctx, ev)
	}
}

func (l *Listener) handleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	msg, ok := l.messageFromEvent(ev)
	if !ok {
		return
	}

	if err := l.handler(ctx, msg); err != nil {
		l.logger.Error("slack inbound handler error",
			"channel", ev.Channel,
			"user", ev.User,
			"error", err,
		)
	}
}

// messageFromEvent maps an Events API message to the chat model, dropping
// events the pipeline never handles: bot posts (including our own), message
// subtypes (edits, deletes, joins), and other channels.
func (l *Listener) messageFromEvent(ev *slackevents.MessageEvent) (chat.Message, bool) {
	if ev.BotID != "" || ev.User == "" || ev.User == l.client.botID {
		return chat.Message{}, false
	}
	if ev.SubType != "" {
		return chat.Message{}, false
	}
	if l.channelID != "" && ev.Channel != l.channelID {
		return chat.Message{}, false
	}

	return chat.Message{
		ID:           ev.TimeStamp,
		SenderID:     ev.User,
		ChannelID:    ev.Channel,
		Text:         ev.Text,
		ThreadRootID: ev.ThreadTimeStamp,
	}, true
}
