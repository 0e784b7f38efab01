package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9090"

[storage]
redis_ttl_seconds = 300
s3_region = "eu-west-1"
s3_endpoint = "http://localhost:9000"
s3_force_path_style = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	sc := cfg.storageConfig()
	if sc.RedisTTL != 5*time.Minute {
		t.Errorf("redis ttl = %v, want 5m", sc.RedisTTL)
	}
	if sc.S3Region != "eu-west-1" {
		t.Errorf("s3 region = %q", sc.S3Region)
	}
	if sc.S3Endpoint != "http://localhost:9000" {
		t.Errorf("s3 endpoint = %q", sc.S3Endpoint)
	}
	if !sc.S3ForcePathStyle {
		t.Error("s3 force path style should be set")
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadConfigMissingDefaultIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("addr = %q, want default %q", cfg.Server.Addr, defaultAddr)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\nredis_ttl_seconds = 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("addr = %q, want default %q", cfg.Server.Addr, defaultAddr)
	}
	if cfg.Storage.RedisTTLSeconds != 60 {
		t.Errorf("redis ttl = %d, want 60", cfg.Storage.RedisTTLSeconds)
	}
}
