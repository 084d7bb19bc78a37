package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"lifeadmin/internal/config"
	"lifeadmin/internal/log"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Kind: Memory}, false},
		{"sqlite with path", Config{Kind: SQLite, SQLitePath: "x.db"}, false},
		{"sqlite without path", Config{Kind: SQLite}, true},
		{"redis without addr", Config{Kind: Redis}, true},
		{"unknown type", Config{Kind: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil || !strings.Contains(err.Error(), "sqlite, memory, redis") {
		t.Errorf("unknown backend error = %v", err)
	}
	got, err := FromAppConfig(&config.Config{DataBackend: "redis", RedisAddr: "r:6379", RedisDB: 2})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Kind != Redis || got.RedisAddr != "r:6379" || got.RedisDB != 2 {
		t.Errorf("FromAppConfig = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Nop())

	t.Run("memory", func(t *testing.T) {
		res, err := f.Open(ctx, Config{Kind: Memory})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer res.Close()
		if err := res.Persistence.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if b, ok, _ := res.Persistence.Get(ctx, "k"); !ok || string(b) != "v" {
			t.Errorf("Get = %q, %v", b, ok)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "lifeadmin.db")
		res, err := f.Open(ctx, Config{Kind: SQLite, SQLitePath: path})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if res.Schema != 1 {
			t.Errorf("Schema = %d, want 1", res.Schema)
		}
		if err := res.Persistence.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if err := res.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		again, err := f.Open(ctx, Config{Kind: SQLite, SQLitePath: path})
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		defer again.Close()
		if b, ok, _ := again.Persistence.Get(ctx, "k"); !ok || string(b) != "v" {
			t.Errorf("document lost across reopen: %q, %v", b, ok)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := f.Open(ctx, Config{Kind: SQLite}); err == nil {
			t.Error("missing path should fail")
		}
	})
}
