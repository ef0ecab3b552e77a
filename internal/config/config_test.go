package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 37711 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Delivery.TickSeconds != 30 {
		t.Errorf("TickSeconds = %d", cfg.Delivery.TickSeconds)
	}
	if cfg.Addr() != "127.0.0.1:37711" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadFromXDGPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := `
[server]
port = 9999

[delivery]
tick_seconds = 10
webhook_url = "http://localhost:8080/hook"
`
	if err := os.MkdirAll(filepath.Join(dir, "mantrad"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mantrad", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	// Unset fields keep their defaults.
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want default", cfg.Server.Bind)
	}
	if cfg.Delivery.TickSeconds != 10 || cfg.Delivery.WebhookURL != "http://localhost:8080/hook" {
		t.Errorf("Delivery = %+v", cfg.Delivery)
	}
}

func TestLoadHealsBadTickInterval(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := os.MkdirAll(filepath.Join(dir, "mantrad"), 0755); err != nil {
		t.Fatal(err)
	}
	content := "[delivery]\ntick_seconds = 0\n"
	if err := os.WriteFile(filepath.Join(dir, "mantrad", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Delivery.TickSeconds != 30 {
		t.Errorf("TickSeconds = %d, want healed to 30", cfg.Delivery.TickSeconds)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := os.MkdirAll(filepath.Join(dir, "mantrad"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mantrad", "config.toml"), []byte("{not toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("malformed config should error")
	}
}
