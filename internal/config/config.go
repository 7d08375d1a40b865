package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the top-level teampulse configuration.
type Config struct {
	Slack    SlackConfig    `json:"slack"`
	Provider ProviderConfig `json:"provider"`
	Notion   *NotionConfig  `json:"notion,omitempty"`
	Cheer    CheerConfig    `json:"cheer"`
	Report   ReportConfig   `json:"report"`
	DataDir  string         `json:"data_dir"`
}

// SlackConfig holds chat platform credentials and the target channel.
type SlackConfig struct {
	BotToken  string `json:"bot_token"` // xoxb-...
	AppToken  string `json:"app_token"` // xapp-... (Socket Mode, listener only)
	ChannelID string `json:"channel_id"`
}

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	Type       string `json:"type,omitempty"` // "openai" (default) or "anthropic"
	APIKey     string `json:"api_key"`
	BaseURL    string `json:"base_url,omitempty"`
	Model      string `json:"model,omitempty"`
	EmbedModel string `json:"embed_model,omitempty"`
}

// NotionConfig holds document-store credentials and the target page.
type NotionConfig struct {
	Token  string `json:"token"`
	PageID string `json:"page_id"`
}

// CheerConfig holds encouragement-responder settings.
type CheerConfig struct {
	AllowFrom []string `json:"allow_from"` // sender IDs eligible for encouragement
	Reaction  string   `json:"reaction,omitempty"`
}

// ReportConfig holds daily-aggregation settings.
type ReportConfig struct {
	Timezone            string   `json:"timezone,omitempty"` // IANA zone defining "today"
	Schedule            string   `json:"schedule,omitempty"` // optional cron spec for the in-process daily run
	DoneMarkers         []string `json:"done_markers,omitempty"`
	RedundancyThreshold float64  `json:"redundancy_threshold,omitempty"`
}

const (
	defaultReaction = "clap"
	defaultTimezone = "Asia/Seoul"
	defaultDataDir  = "./data"
)

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds the config from environment variables with PULSE_ prefix.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Slack: SlackConfig{
			BotToken:  os.Getenv("PULSE_SLACK_BOT_TOKEN"),
			AppToken:  os.Getenv("PULSE_SLACK_APP_TOKEN"),
			ChannelID: os.Getenv("PULSE_CHANNEL_ID"),
		},
		Cheer: CheerConfig{
			AllowFrom: splitList(os.Getenv("PULSE_CHEER_ALLOW_FROM")),
			Reaction:  os.Getenv("PULSE_CHEER_REACTION"),
		},
		Report: ReportConfig{
			Timezone:    os.Getenv("PULSE_TIMEZONE"),
			Schedule:    os.Getenv("PULSE_REPORT_SCHEDULE"),
			DoneMarkers: splitList(os.Getenv("PULSE_REPORT_DONE_MARKERS")),
		},
		DataDir: os.Getenv("PULSE_DATA_DIR"),
	}

	if v := os.Getenv("PULSE_REDUNDANCY_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: PULSE_REDUNDANCY_THRESHOLD: invalid number %q", v)
		}
		cfg.Report.RedundancyThreshold = f
	}

	// Provider from env, Anthropic key winning when both are set.
	if apiKey := os.Getenv("PULSE_ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.Provider = ProviderConfig{
			Type:   "anthropic",
			APIKey: apiKey,
			Model:  os.Getenv("PULSE_MODEL"),
		}
	} else if apiKey := os.Getenv("PULSE_OPENAI_API_KEY"); apiKey != "" {
		cfg.Provider = ProviderConfig{
			Type:       "openai",
			APIKey:     apiKey,
			BaseURL:    os.Getenv("PULSE_OPENAI_BASE_URL"),
			Model:      os.Getenv("PULSE_MODEL"),
			EmbedModel: os.Getenv("PULSE_EMBED_MODEL"),
		}
	}

	if token := os.Getenv("PULSE_NOTION_TOKEN"); token != "" {
		cfg.Notion = &NotionConfig{
			Token:  token,
			PageID: os.Getenv("PULSE_NOTION_PAGE_ID"),
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cheer.Reaction == "" {
		c.Cheer.Reaction = defaultReaction
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = defaultTimezone
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
}

// Validate checks for required fields.
func (c *Config) Validate() error {
	var errs []string

	if c.Slack.BotToken == "" {
		errs = append(errs, "slack.bot_token is required")
	}
	if c.Slack.ChannelID == "" {
		errs = append(errs, "slack.channel_id is required")
	}

	if c.Provider.APIKey == "" {
		errs = append(errs, "provider.api_key is required")
	}
	switch c.Provider.Type {
	case "", "openai", "anthropic":
	default:
		errs = append(errs, fmt.Sprintf("provider.type %q is not supported", c.Provider.Type))
	}

	if c.Notion != nil {
		if c.Notion.Token == "" {
			errs = append(errs, "notion.token is required")
		}
		if c.Notion.PageID == "" {
			errs = append(errs, "notion.page_id is required")
		}
	}

	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("report.timezone %q is not a valid IANA zone", c.Report.Timezone))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Location returns the report timezone. Call only after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	return result
}
