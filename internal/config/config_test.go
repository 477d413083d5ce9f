package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 50051 || cfg.Notifier != NotifierLocal || cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Limits.AuthPerMinute != 10 || cfg.Mongo.Database != "chat_db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 6000\nstore: memory\nauth:\n  secret: from-file\nlog:\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Fatalf("env must override file, got port %d", cfg.Server.Port)
	}
	if cfg.Auth.Secret != "from-file" || cfg.Log.Level != "debug" {
		t.Fatalf("file values not loaded: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 50051},
			Store:    StoreMemory,
			Notifier: NotifierLocal,
			Auth:     AuthConfig{Secret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"mongo without uri", func(c *Config) { c.Store = StoreMongo }, true},
		{"mongo with uri", func(c *Config) { c.Store = StoreMongo; c.Mongo.URI = "mongodb://x" }, false},
		{"unknown store", func(c *Config) { c.Store = "sqlite" }, true},
		{"change feed needs mongo", func(c *Config) { c.Notifier = NotifierMongo }, true},
		{"unknown notifier", func(c *Config) { c.Notifier = "kafka" }, true},
		{"no secret", func(c *Config) { c.Auth.Secret = "" }, true},
		{"keys only", func(c *Config) { c.Auth = AuthConfig{Keys: "k1:a,k2:b", ActiveKid: "k2"} }, false},
		{"bad keys", func(c *Config) { c.Auth.Keys = "k1" }, true},
		{"active kid missing", func(c *Config) { c.Auth.Keys = "k1:a"; c.Auth.ActiveKid = "k9" }, true},
		{"tls required", func(c *Config) { c.Server.RequireTLS = true }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKeyMap(t *testing.T) {
	keys, err := AuthConfig{Keys: "k1:one,,k2:two:with-colon"}.KeyMap()
	if err != nil {
		t.Fatalf("KeyMap failed: %v", err)
	}
	if len(keys) != 2 || keys["k1"] != "one" || keys["k2"] != "two:with-colon" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if keys, _ := (AuthConfig{}).KeyMap(); keys != nil {
		t.Fatalf("expected nil map, got %v", keys)
	}
}
