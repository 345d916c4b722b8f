package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "habitroom.db" {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.SessionSecret == "" {
		t.Fatal("expected a fallback session secret")
	}
	if cfg.BackfillCron != "" {
		t.Fatal("backfill cron should default to disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", " data/app.db ")
	t.Setenv("BACKFILL_CRON", "5 0 * * *")
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ListenAddr != ":9001" {
		t.Fatalf("unexpected listen addr: %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "data/app.db" {
		t.Fatalf("expected trimmed database path, got %q", cfg.DatabasePath)
	}
	if cfg.BackfillCron != "5 0 * * *" {
		t.Fatalf("unexpected backfill cron: %s", cfg.BackfillCron)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("listen_addr: \":7000\"\nbackfill_cron: \"0 1 * * *\"\nallowed_ws_origins:\n  - https://habit.example.com\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("PORT", "9001")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// 文件值优先于环境变量
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected file to override env, got %s", cfg.ListenAddr)
	}
	if cfg.BackfillCron != "0 1 * * *" {
		t.Fatalf("unexpected backfill cron: %s", cfg.BackfillCron)
	}
	if len(cfg.AllowedWSOrigins) != 1 {
		t.Fatalf("unexpected ws origins: %v", cfg.AllowedWSOrigins)
	}
	// 文件未覆盖的字段保持环境/默认值
	if cfg.Port != "9001" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
}

func TestLoadBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [oops"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
