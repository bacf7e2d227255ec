package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: 127.0.0.1
  port: 9090
  engine: fasthttp
storage:
  data_dir: /var/lib/anonymchat
admin:
  username: root
  password: toor
uploads:
  max_bytes: 1024
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Server.Engine != "fasthttp" || cfg.Admin.Username != "root" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.UploadLimit() != 1024 {
		t.Fatalf("upload limit = %d", cfg.UploadLimit())
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	min, max := cfg.NicknameBounds()
	if min != 3 || max != 20 {
		t.Fatalf("bounds = %d..%d", min, max)
	}
	if cfg.UploadLimit() != 10<<20 {
		t.Fatalf("upload limit = %d", cfg.UploadLimit())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANONYMCHAT_ADDR", "10.0.0.5:7000")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("ANONYMCHAT_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ANONYMCHAT_RECONCILE_ENABLED", "true")

	cfg := &Config{}
	if !LoadEnvOverrides(cfg) {
		t.Fatalf("env not detected")
	}
	if cfg.Server.Address != "10.0.0.5" || cfg.Server.Port != 7000 {
		t.Fatalf("addr override: %+v", cfg.Server)
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "secret" {
		t.Fatalf("admin override: %+v", cfg.Admin)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 2 {
		t.Fatalf("cors override: %v", cfg.Security.CORS.AllowedOrigins)
	}
	if !cfg.Reconcile.Enabled {
		t.Fatalf("reconcile override not applied")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/from/flag", true); got != "/from/flag" {
		t.Fatalf("flag path = %q", got)
	}
	t.Setenv("ANONYMCHAT_CONFIG", "/from/env")
	if got := ResolveConfigPath("/default", false); got != "/from/env" {
		t.Fatalf("env path = %q", got)
	}
}
