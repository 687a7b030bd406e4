package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.SQLitePath != "messages.db" {
		t.Fatalf("unexpected defaults: port=%q sqlite=%q", cfg.HTTPPort, cfg.SQLitePath)
	}
	if cfg.LLMModel != "gpt-4.1" {
		t.Fatalf("expected default model gpt-4.1, got %q", cfg.LLMModel)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("expected default system prompt, got %q", cfg.SystemPrompt)
	}
	if !cfg.APIKeyRequired {
		t.Fatalf("expected api key guard enabled by default")
	}
	if cfg.UsePostgres() {
		t.Fatalf("expected sqlite backend without DATABASE_URL")
	}
	if cfg.SlackEventTTL() != time.Hour || cfg.SMSRateWindow() != time.Minute {
		t.Fatalf("unexpected durations: ttl=%s window=%s", cfg.SlackEventTTL(), cfg.SMSRateWindow())
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost/relay")
	t.Setenv("HISTORY_WINDOW", "20")
	t.Setenv("API_KEY_REQUIRED", "false")
	t.Setenv("SLACK_SIGNING_SECRET", "shh")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.UsePostgres() {
		t.Fatalf("expected postgres backend")
	}
	if cfg.HistoryWindow != 20 || cfg.APIKeyRequired || cfg.SlackSigningSecret != "shh" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfig_RequiresOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when OPENAI_API_KEY is missing")
	}
}
