package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "")
	t.Setenv("HISTORY_PAGE_SIZE", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := LoadConfig()
	if cfg.ContextWindow != 10 {
		t.Errorf("expected context window 10, got %d", cfg.ContextWindow)
	}
	if cfg.HistoryPageSize != 20 {
		t.Errorf("expected history page size 20, got %d", cfg.HistoryPageSize)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("expected 24h cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.LLMProvider != ProviderAnthropic {
		t.Errorf("expected anthropic provider, got %q", cfg.LLMProvider)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "4")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_URL", "off")
	t.Setenv("LLM_PROVIDER", "OpenAI")

	cfg := LoadConfig()
	if cfg.ContextWindow != 4 {
		t.Errorf("expected context window 4, got %d", cfg.ContextWindow)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.CacheTTL)
	}
	if cfg.CacheEnabled() {
		t.Errorf("expected cache disabled for REDIS_URL=off")
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("expected provider to be lower-cased, got %q", cfg.LLMProvider)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{LLMProvider: ProviderAnthropic, DBName: "helpdesk", ContextWindow: 10, HistoryPageSize: 20}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing api key error")
	}
	cfg.ClaudeAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.LLMProvider = "bard"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestLoadPersona(t *testing.T) {
	base := Persona{
		SystemPrompt: "base prompt",
		Fallbacks:    Fallbacks{RateLimit: "rl", Timeout: "to", Auth: "auth", Unavailable: "down"},
	}

	got, err := LoadPersona("", base)
	if err != nil || got != base {
		t.Fatalf("empty path should return base, got %+v, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "persona.yaml")
	content := "system_prompt: |\n  You are a bike shop assistant.\nfallbacks:\n  timeout: Too slow, try again.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = LoadPersona(path, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SystemPrompt != "You are a bike shop assistant.\n" {
		t.Errorf("unexpected prompt %q", got.SystemPrompt)
	}
	if got.Fallbacks.Timeout != "Too slow, try again." {
		t.Errorf("unexpected timeout fallback %q", got.Fallbacks.Timeout)
	}
	if got.Fallbacks.Auth != "auth" {
		t.Errorf("expected untouched fallback to keep base value, got %q", got.Fallbacks.Auth)
	}
}
