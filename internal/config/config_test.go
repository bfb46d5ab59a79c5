package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID: "test-host-abc",
		LogDir: "/home/user/.local/share/ctx/log",
		BlobStore: BlobStoreConfig{
			Type:   "filesystem",
			FSRoot: "/home/user/.local/share/ctx/blobs",
		},
		Metadata: MetadataStoreConfig{Type: "sqlite", DataDir: "/home/user/.local/share/ctx/db"},
		Denylist: []string{"**/.env*", "**/*.key"},
		RenderLimit: RenderLimitConfig{DefaultBudgetTokens: 4096},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.BlobStore.Type != "filesystem" {
		t.Errorf("BlobStore.Type = %q, want %q", got.BlobStore.Type, "filesystem")
	}
	if got.BlobStore.FSRoot != original.BlobStore.FSRoot {
		t.Errorf("BlobStore.FSRoot = %q, want %q", got.BlobStore.FSRoot, original.BlobStore.FSRoot)
	}
	if got.Metadata.Type != "sqlite" {
		t.Errorf("Metadata.Type = %q, want %q", got.Metadata.Type, "sqlite")
	}
	if len(got.Denylist) != 2 {
		t.Fatalf("len(Denylist) = %d, want 2", len(got.Denylist))
	}
	if got.RenderLimit.DefaultBudgetTokens != 4096 {
		t.Errorf("RenderLimit.DefaultBudgetTokens = %d, want %d", got.RenderLimit.DefaultBudgetTokens, 4096)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/ctx")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %q, want %q", cfg.HostID, "host-1")
	}
	if cfg.LogDir != "/data/ctx/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/ctx/log")
	}
	if cfg.BlobStore.FSRoot != "/data/ctx/blobs" {
		t.Errorf("BlobStore.FSRoot = %q, want %q", cfg.BlobStore.FSRoot, "/data/ctx/blobs")
	}
	if cfg.Metadata.DataDir != "/data/ctx/db" {
		t.Errorf("Metadata.DataDir = %q, want %q", cfg.Metadata.DataDir, "/data/ctx/db")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ctx.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ctx.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ctx.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Metadata = MetadataStoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/ctx.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
