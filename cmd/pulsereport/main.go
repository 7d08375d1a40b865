// Command pulsereport runs the daily aggregation once and exits: it fetches
// today's channel messages, computes the productivity metrics, and posts one
// report to the channel and the document store. Exit code is non-zero on an
// unrecoverable failure.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	slackchat "github.com/teampulse-io/teampulse/internal/chat/slack"
	"github.com/teampulse-io/teampulse/internal/config"
	"github.com/teampulse-io/teampulse/internal/docstore"
	"github.com/teampulse-io/teampulse/internal/provider"
	"github.com/teampulse-io/teampulse/internal/report"
)

// runTimeout bounds one aggregation run end to end, including the per-message
// classification calls.
const runTimeout = 15 * time.Minute

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

	client, err := slackchat.NewClient(slackchat.Config{
		BotToken: cfg.Slack.BotToken,
	}, logger.With("component", "slack"))
	if err != nil {
		logger.Error("failed to init slack client", "error", err)
		os.Exit(1)
	}

	aggregator := &report.Aggregator{
		Chat:                client,
		Provider:            buildProvider(cfg, logger),
		Docs:                buildDocStore(cfg),
		ChannelID:           cfg.Slack.ChannelID,
		Location:            cfg.Location(),
		DoneMarkers:         cfg.Report.DoneMarkers,
		RedundancyThreshold: cfg.Report.RedundancyThreshold,
		Logger:              logger.With("component", "report"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := aggregator.Run(ctx); err != nil {
		logger.Error("daily aggregation failed", "error", err)
		os.Exit(1)
	}
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
