// Command pulsed is the real-time listener daemon: it watches the configured
// channel for messages from allow-listed senders and posts encouragement
// replies. With a report schedule configured it also runs the daily
// aggregation in-process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	slackchat "github.com/teampulse-io/teampulse/internal/chat/slack"
	"github.com/teampulse-io/teampulse/internal/cheer"
	"github.com/teampulse-io/teampulse/internal/config"
	"github.com/teampulse-io/teampulse/internal/docstore"
	"github.com/teampulse-io/teampulse/internal/ledger"
	"github.com/teampulse-io/teampulse/internal/provider"
	"github.com/teampulse-io/teampulse/internal/report"
	"github.com/teampulse-io/teampulse/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to config JSON file (default: env config)")
	envFile := flag.String("env", "", "Optional .env file to load before reading the environment")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			logger.Error("failed to load env file", "path", *envFile, "error", err)
			os.Exit(1)
		}
	} else {
		godotenv.Load() // best-effort ./.env
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Slack.AppToken == "" {
		logger.Error("slack.app_token is required for the listener (Socket Mode)")
		os.Exit(1)
	}

	logger.Info("pulsed starting", "channel", cfg.Slack.ChannelID)

	prov := buildProvider(cfg, logger)

	os.MkdirAll(cfg.DataDir, 0o755)
	led, err := ledger.NewSQLiteStore(filepath.Join(cfg.DataDir, "responses.db"))
	if err != nil {
		logger.Error("failed to open response ledger", "error", err)
		os.Exit(1)
	}
	defer led.Close()

	client, err := slackchat.NewClient(slackchat.Config{
		BotToken: cfg.Slack.BotToken,
		AppToken: cfg.Slack.AppToken,
	}, logger.With("component", "slack"))
	if err != nil {
		logger.Error("failed to init slack client", "error", err)
		os.Exit(1)
	}

	responder := &cheer.Responder{
		Chat:      client,
		Provider:  prov,
		Ledger:    led,
		AllowFrom: cfg.Cheer.AllowFrom,
		Reaction:  cfg.Cheer.Reaction,
		Logger:    logger.With("component", "cheer"),
	}

	listener, err := slackchat.NewListener(client, cfg.Slack.ChannelID, responder.Handle, logger.With("component", "listener"))
	if err != nil {
		logger.Error("failed to init slack listener", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go safeGo(logger, "listener", func() {
		if err := listener.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("slack listener stopped", "error", err)
		}
	})

	if cfg.Report.Schedule != "" {
		aggregator := &report.Aggregator{
			Chat:                client,
			Provider:            prov,
			Docs:                buildDocStore(cfg),
			ChannelID:           cfg.Slack.ChannelID,
			Location:            cfg.Location(),
			DoneMarkers:         cfg.Report.DoneMarkers,
			RedundancyThreshold: cfg.Report.RedundancyThreshold,
			Logger:              logger.With("component", "report"),
		}

		sched := scheduler.New(logger.With("component", "scheduler"))
		if err := sched.AddJob("daily-report", cfg.Report.Schedule, func(ctx context.Context) {
			if err := aggregator.Run(ctx); err != nil {
				logger.Error("scheduled daily report failed", "error", err)
			}
		}); err != nil {
			logger.Error("failed to schedule daily report", "error", err)
			os.Exit(1)
		}
		go safeGo(logger, "scheduler", func() { sched.Start(ctx) })
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())
	listener.Stop()
	cancel()
	logger.Info("pulsed stopped")
}

// buildProvider constructs the completion provider from config.
func buildProvider(cfg *config.Config, logger *slog.Logger) provider.Provider {
	switch cfg.Provider.Type {
	case "anthropic":
		var opts []provider.AnthropicOption
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, provider.WithAnthropicBaseURL(cfg.Provider.BaseURL))
		}
		if cfg.Provider.Model != "" {
			opts = append(opts, provider.WithAnthropicModel(cfg.Provider.Model))
		}
		p := provider.NewAnthropic(cfg.Provider.APIKey, opts...)
		logger.Info("provider initialized", "type", p.Name(), "model", cfg.Provider.Model)
		return p
	default: // "openai" or empty
		var opts []provider.OpenAIOption
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, provider.WithBaseURL(cfg.Provider.BaseURL))
		}
		if cfg.Provider.Model != "" {
			opts = append(opts, provider.WithModel(cfg.Provider.Model))
		}
		if cfg.Provider.EmbedModel != "" {
			opts = append(opts, provider.WithEmbedModel(cfg.Provider.EmbedModel))
		}
		p := provider.NewOpenAI(cfg.Provider.APIKey, opts...)
		logger.Info("provider initialized", "type", p.Name(), "model", cfg.Provider.Model)
		return p
	}
}

// buildDocStore constructs the optional document-store sink.
func buildDocStore(cfg *config.Config) docstore.Store {
	if cfg.Notion == nil {
		return nil
	}
	return docstore.NewNotion(cfg.Notion.Token, cfg.Notion.PageID)
}

// safeGo runs fn with panic recovery.
func safeGo(logger *slog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("goroutine panicked", "name", name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
