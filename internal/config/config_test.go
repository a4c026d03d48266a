package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewManager_DefaultsWithoutFile(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := m.Get()

	if cfg.Port != "8080" {
		t.Errorf("port = %q; want 8080", cfg.Port)
	}
	if cfg.LLM.Model != "deepseek-chat" || cfg.LLM.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("llm.timeout = %v; want 60s", cfg.LLM.Timeout)
	}
	if cfg.LLM.TestMode {
		t.Errorf("test mode must default to false")
	}
	if cfg.Export.Dir != "exports" {
		t.Errorf("export.dir = %q; want exports", cfg.Export.Dir)
	}
	if cfg.Books.PingAttempts != 5 || cfg.Books.PingDelay != time.Second {
		t.Errorf("unexpected books ping defaults: %+v", cfg.Books)
	}
	if m.ConfigFile() != "" {
		t.Errorf("expected no config file, got %q", m.ConfigFile())
	}
}

func TestNewManager_ReadsFile(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
llm:
  api_key: sk-test
  test_mode: true
  timeout: 5s
session:
  ttl: 30m
books:
  dsn: postgres://u:p@db:5432/books
`)

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := m.Get()

	if cfg.Port != "9090" {
		t.Errorf("port = %q; want 9090", cfg.Port)
	}
	if cfg.LLM.APIKey != "sk-test" || !cfg.LLM.TestMode || cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("session.ttl = %v; want 30m", cfg.Session.TTL)
	}
	if cfg.Books.DSN != "postgres://u:p@db:5432/books" {
		t.Errorf("books.dsn = %q", cfg.Books.DSN)
	}
	// untouched keys keep defaults
	if cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("llm.model = %q; want default", cfg.LLM.Model)
	}
}

func TestNewManager_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "llm:\n  api_key: from-file\n")
	t.Setenv("DEVDESK_LLM_API_KEY", "from-env")
	t.Setenv("DEVDESK_LLM_TEST_MODE", "true")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := m.Get()
	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("api key = %q; want from-env", cfg.LLM.APIKey)
	}
	if !cfg.LLM.TestMode {
		t.Errorf("expected test mode from env")
	}
}

func TestNewManager_MissingExplicitFile(t *testing.T) {
	if _, err := NewManager(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestManager_ReloadRunsCallbacks(t *testing.T) {
	path := writeConfig(t, "llm:\n  test_mode: false\n")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var got []bool
	m.OnChange(func(c *Config) { got = append(got, c.LLM.TestMode) })

	if err := os.WriteFile(path, []byte("llm:\n  test_mode: true\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := m.v.ReadInConfig(); err != nil {
		t.Fatalf("re-read config: %v", err)
	}
	if err := m.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if len(got) != 1 || !got[0] {
		t.Fatalf("callbacks saw %v; want [true]", got)
	}
	if !m.Get().LLM.TestMode {
		t.Fatalf("Get() not updated after reload")
	}
}
