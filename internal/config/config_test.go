package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validJSON = `{
	"slack": {
		"bot_token": "xoxb-test",
		"app_token": "xapp-test",
		"channel_id": "C123"
	},
	"provider": {
		"type": "openai",
		"api_key": "sk-test"
	},
	"cheer": {
		"allow_from": ["U1", "U2"]
	}
}`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Slack.BotToken != "xoxb-test" || cfg.Slack.ChannelID != "C123" {
		t.Errorf("slack = %+v", cfg.Slack)
	}
	if len(cfg.Cheer.AllowFrom) != 2 || cfg.Cheer.AllowFrom[0] != "U1" {
		t.Errorf("allow_from = %v", cfg.Cheer.AllowFrom)
	}

	// Defaults fill the omitted fields.
	if cfg.Cheer.Reaction != "clap" {
		t.Errorf("reaction = %q, want default clap", cfg.Cheer.Reaction)
	}
	if cfg.Report.Timezone != "Asia/Seoul" {
		t.Errorf("timezone = %q, want default Asia/Seoul", cfg.Report.Timezone)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("data_dir = %q, want default ./data", cfg.DataDir)
	}
	if cfg.Notion != nil {
		t.Errorf("notion = %+v, want nil when omitted", cfg.Notion)
	}
}

func TestLoad_FileMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	if _, err := Load(writeConfigFile(t, "{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Provider: ProviderConfig{Type: "gemini"},
		Notion:   &NotionConfig{},
		Report:   ReportConfig{Timezone: "Mars/Olympus"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{
		"slack.bot_token is required",
		"slack.channel_id is required",
		"provider.api_key is required",
		`provider.type "gemini" is not supported`,
		"notion.token is required",
		"notion.page_id is required",
		`report.timezone "Mars/Olympus" is not a valid IANA zone`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}
}

func TestValidate_AnthropicType(t *testing.T) {
	cfg := &Config{
		Slack:    SlackConfig{BotToken: "xoxb", ChannelID: "C1"},
		Provider: ProviderConfig{Type: "anthropic", APIKey: "sk"},
		Report:   ReportConfig{Timezone: "UTC"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func clearPulseEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PULSE_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearPulseEnv(t)
	t.Setenv("PULSE_SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("PULSE_SLACK_APP_TOKEN", "xapp-env")
	t.Setenv("PULSE_CHANNEL_ID", "C9")
	t.Setenv("PULSE_CHEER_ALLOW_FROM", "U1, U2,,U3")
	t.Setenv("PULSE_OPENAI_API_KEY", "sk-env")
	t.Setenv("PULSE_MODEL", "gpt-4o")
	t.Setenv("PULSE_REDUNDANCY_THRESHOLD", "0.9")
	t.Setenv("PULSE_NOTION_TOKEN", "secret")
	t.Setenv("PULSE_NOTION_PAGE_ID", "page-1")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Slack.BotToken != "xoxb-env" || cfg.Slack.ChannelID != "C9" {
		t.Errorf("slack = %+v", cfg.Slack)
	}
	if len(cfg.Cheer.AllowFrom) != 3 || cfg.Cheer.AllowFrom[2] != "U3" {
		t.Errorf("allow_from = %v", cfg.Cheer.AllowFrom)
	}
	if cfg.Provider.Type != "openai" || cfg.Provider.APIKey != "sk-env" || cfg.Provider.Model != "gpt-4o" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Report.RedundancyThreshold != 0.9 {
		t.Errorf("threshold = %v", cfg.Report.RedundancyThreshold)
	}
	if cfg.Notion == nil || cfg.Notion.PageID != "page-1" {
		t.Errorf("notion = %+v", cfg.Notion)
	}
}

func TestLoadFromEnv_AnthropicWins(t *testing.T) {
	clearPulseEnv(t)
	t.Setenv("PULSE_SLACK_BOT_TOKEN", "xoxb")
	t.Setenv("PULSE_CHANNEL_ID", "C1")
	t.Setenv("PULSE_ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("PULSE_OPENAI_API_KEY", "sk-oa")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Provider.Type != "anthropic" || cfg.Provider.APIKey != "sk-ant" {
		t.Errorf("provider = %+v, want anthropic key to win", cfg.Provider)
	}
}

func TestLoadFromEnv_BadThreshold(t *testing.T) {
	clearPulseEnv(t)
	t.Setenv("PULSE_SLACK_BOT_TOKEN", "xoxb")
	t.Setenv("PULSE_CHANNEL_ID", "C1")
	t.Setenv("PULSE_OPENAI_API_KEY", "sk")
	t.Setenv("PULSE_REDUNDANCY_THRESHOLD", "very high")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error for non-numeric threshold")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Report: ReportConfig{Timezone: "Asia/Seoul"}}
	if got := cfg.Location().String(); got != "Asia/Seoul" {
		t.Errorf("Location = %q", got)
	}

	cfg.Report.Timezone = "not-a-zone"
	if got := cfg.Location().String(); got != "UTC" {
		t.Errorf("Location fallback = %q, want UTC", got)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,", []string{"a", "b"}},
		{",,", nil},
	}
	for _, tt := range tests {
		got := splitList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}
