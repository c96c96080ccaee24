package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.toml")); err != nil {
		t.Fatalf("Missing config should not fail: %v", err)
	}
	if Session.Backend != "memory" {
		t.Fatalf("Expected memory session backend by default, got %q", Session.Backend)
	}
	if API.TimeoutDuration() <= 0 {
		t.Fatal("Default API timeout must be positive")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
[common]
listen_addr = "0.0.0.0:9000"
debug = true

[api]
base_url = "http://blog.internal/api/v1"
timeout = 3

[session]
backend = "redis"
redis_addr = "cache:6379"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("Couldn't load config: %v", err)
	}
	if Common.ListenAddr != "0.0.0.0:9000" || !Common.Debug {
		t.Fatalf("Common section not decoded: %#v", Common)
	}
	if API.BaseURL != "http://blog.internal/api/v1" || API.TimeoutDuration().Seconds() != 3 {
		t.Fatalf("API section not decoded: %#v", API)
	}
	if Session.Backend != "redis" || Session.RedisAddr != "cache:6379" {
		t.Fatalf("Session section not decoded: %#v", Session)
	}
	// Unset keys keep their defaults
	if Common.PublicURL != "http://localhost:8080" {
		t.Fatalf("Expected default public URL, got %q", Common.PublicURL)
	}
}

func TestLoadInvalidBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[session]\nbackend = \"etcd\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err == nil {
		t.Fatal("Unknown session backend should be rejected")
	}
}

func TestFlagPersistence(t *testing.T) {
	SetConfigV2Path(filepath.Join(t.TempDir(), "flags.json"))
	flg := GenFlag("test.persistence", 5, "Persistence test flag")

	flg.Update(12)

	// Reset the in-memory value, then read it back from disk
	flg.(*flag[int]).val = 0
	if err := LoadConfigV2(context.Background()); err != nil {
		t.Fatalf("Couldn't load flags: %v", err)
	}
	if flg.Value() != 12 {
		t.Fatalf("Expected flag value 12 after reload, got %d", flg.Value())
	}
}

func TestFlagOverrides(t *testing.T) {
	SetConfigV2Path(filepath.Join(t.TempDir(), "flags.json"))
	num := GenFlag("test.override.num", 1, "Numeric override")
	str := GenFlag("test.override.str", "a", "String override")
	t.Setenv(overridesEnv, "test.override.num=42,test.override.str=hello,bogus")

	if err := LoadConfigV2(context.Background()); err != nil {
		t.Fatalf("Couldn't load flags: %v", err)
	}
	if num.Value() != 42 {
		t.Fatalf("Expected 42, got %d", num.Value())
	}
	if str.Value() != "hello" {
		t.Fatalf("Expected hello, got %q", str.Value())
	}

	if _, ok := GetFlag[string]("test.override.num"); ok {
		t.Fatal("GetFlag must not match flags of another type")
	}
}
