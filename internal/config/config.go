package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the configuration needed to wire a ctx application:
// where blobs and metadata live, where logs go, and default redaction
// and denylist settings. It intentionally does not describe how a
// config file is located on disk (env vars, XDG paths) — that belongs
// to the CLI, not the core.
type Config struct {
	HostID      string             `toml:"host_id"`
	LogDir      string             `toml:"log_dir"`
	BlobStore   BlobStoreConfig    `toml:"blob_store"`
	Metadata    MetadataStoreConfig `toml:"metadata_store"`
	Denylist    []string           `toml:"denylist"`
	RenderLimit RenderLimitConfig  `toml:"render_limit"`
}

// RenderLimitConfig holds the default render budget applied to packs
// that don't specify their own.
type RenderLimitConfig struct {
	DefaultBudgetTokens int `toml:"default_budget_tokens"`
}

// BlobStoreConfig configures the blob store backend. Tagged union: Type
// determines which other fields are relevant.
type BlobStoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", or "s3"

	// filesystem
	FSRoot string `toml:"fs_root,omitempty"`

	// s3
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
}

// MetadataStoreConfig configures the metadata store backend. Tagged
// union: Type determines which other fields are relevant.
type MetadataStoreConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with sensible on-disk defaults rooted at
// baseDir.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID: hostID,
		LogDir: filepath.Join(baseDir, "log"),
		BlobStore: BlobStoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "blobs"),
		},
		Metadata: MetadataStoreConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		RenderLimit: RenderLimitConfig{DefaultBudgetTokens: 8000},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file at path, failing if one already exists.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
