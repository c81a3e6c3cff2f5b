package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := NewConfig()
	cfg.Seeds = []string{"https://example.com/"}
	return cfg
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.StorageBackend != StorageDisk {
		t.Errorf("StorageBackend = %q, want disk", cfg.StorageBackend)
	}
	if cfg.DedupStore != DedupMemory {
		t.Errorf("DedupStore = %q, want memory", cfg.DedupStore)
	}
	if cfg.DataDir == "" {
		t.Error("DataDir is empty")
	}
	if len(cfg.Retry.Categories) == 0 {
		t.Error("Retry config has no categories")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"max depth zero is valid", func(c *Config) { c.MaxDepth = 0 }, nil},
		{"no seeds", func(c *Config) { c.Seeds = nil }, ErrNoSeeds},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }, ErrInvalidRequestDelay},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"unknown backend", func(c *Config) { c.StorageBackend = "s3" }, ErrUnknownStorageBackend},
		{"kafka without brokers", func(c *Config) { c.StorageBackend = StorageKafka }, ErrKafkaNotConfigured},
		{"kafka configured", func(c *Config) {
			c.StorageBackend = StorageKafka
			c.KafkaBrokers = []string{"localhost:9092"}
		}, nil},
		{"unknown dedup", func(c *Config) { c.DedupStore = "etcd" }, ErrUnknownDedupStore},
		{"redis without addr", func(c *Config) { c.DedupStore = DedupRedis }, ErrRedisNotConfigured},
		{"conflicting reports", func(c *Config) {
			c.JSONReport = true
			c.MarkdownReport = true
		}, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
