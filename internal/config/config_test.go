package config

import (
	"path/filepath"
	"testing"
)

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("DEEPSEEK_API_KEY", "sk-deepseek")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")

	cases := map[string]string{
		"openai":    "sk-openai",
		"deepseek":  "sk-deepseek",
		"anthropic": "sk-anthropic",
		"unknown":   "",
	}
	for provider, want := range cases {
		if got := APIKeyFromEnv(provider); got != want {
			t.Errorf("APIKeyFromEnv(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestDBPathUnderDataDir(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/aichat-test"}
	want := filepath.Join("/tmp/aichat-test", "chat.db")
	if got := cfg.DBPath(); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("AICHAT_TEST_DIR", "/data/aichat")

	if got := expandEnv("${AICHAT_TEST_DIR}"); got != "/data/aichat" {
		t.Errorf("expected braces form expanded, got %q", got)
	}
	if got := expandEnv("$AICHAT_TEST_DIR"); got != "/data/aichat" {
		t.Errorf("expected bare form expanded, got %q", got)
	}
	if got := expandEnv("/literal/path"); got != "/literal/path" {
		t.Errorf("expected literal path untouched, got %q", got)
	}
}
