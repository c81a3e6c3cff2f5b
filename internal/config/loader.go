package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".arachne.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML shape of the configuration file. Durations are strings
// in Go syntax ("500ms", "2s"). Pointer fields distinguish "absent" from
// zero so the file only overrides what it mentions.
type File struct {
	Seeds           []string       `yaml:"seeds,omitempty"`
	MaxDepth        *int           `yaml:"max_depth,omitempty"`
	Concurrency     *int           `yaml:"concurrency,omitempty"`
	RequestDelay    string         `yaml:"request_delay,omitempty"`
	Timeout         string         `yaml:"timeout,omitempty"`
	UserAgent       string         `yaml:"user_agent,omitempty"`
	MaxBodySize     *int64         `yaml:"max_body_size,omitempty"`
	RespectRobots   *bool          `yaml:"respect_robots,omitempty"`
	AllowURLRevisit *bool          `yaml:"allow_url_revisit,omitempty"`
	FollowExternal  *bool          `yaml:"follow_external,omitempty"`
	Storage         StorageFile    `yaml:"storage,omitempty"`
	Dedup           DedupFile      `yaml:"dedup,omitempty"`
	Retry           *RetryFile     `yaml:"retry,omitempty"`
}

// StorageFile selects and configures the storage backend.
type StorageFile struct {
	Backend string   `yaml:"backend,omitempty"`
	DataDir string   `yaml:"data_dir,omitempty"`
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// DedupFile selects and configures the visited-set store.
type DedupFile struct {
	Store string `yaml:"store,omitempty"`
	Addr  string `yaml:"addr,omitempty"`
}

// LoadConfigFile loads a configuration file from path. If the file does
// not exist, it returns ErrConfigNotFound so callers can decide whether a
// missing file is fatal.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
// 1. If configPath is specified, use it directly
// 2. Look for .arachne.yml in the current directory
// 3. Look for .arachne.yml in the user's home directory
//
// Returns the path if found, or "" otherwise.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Apply overlays the file's settings onto cfg. Fields absent from the
// file keep their current values.
func (f *File) Apply(cfg *Config) error {
	if len(f.Seeds) > 0 {
		cfg.Seeds = f.Seeds
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.RequestDelay != "" {
		d, err := time.ParseDuration(f.RequestDelay)
		if err != nil {
			return fmt.Errorf("invalid request_delay: %w", err)
		}
		cfg.RequestDelay = d
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != nil {
		cfg.MaxBodySize = *f.MaxBodySize
	}
	if f.RespectRobots != nil {
		cfg.RespectRobots = *f.RespectRobots
	}
	if f.AllowURLRevisit != nil {
		cfg.AllowURLRevisit = *f.AllowURLRevisit
	}
	if f.FollowExternal != nil {
		cfg.FollowExternal = *f.FollowExternal
	}

	if f.Storage.Backend != "" {
		cfg.StorageBackend = f.Storage.Backend
	}
	if f.Storage.DataDir != "" {
		cfg.DataDir = f.Storage.DataDir
	}
	if len(f.Storage.Brokers) > 0 {
		cfg.KafkaBrokers = f.Storage.Brokers
	}
	if f.Storage.Topic != "" {
		cfg.KafkaTopic = f.Storage.Topic
	}

	if f.Dedup.Store != "" {
		cfg.DedupStore = f.Dedup.Store
	}
	if f.Dedup.Addr != "" {
		cfg.RedisAddr = f.Dedup.Addr
	}

	if f.Retry != nil {
		retryCfg, err := f.Retry.Build()
		if err != nil {
			return err
		}
		cfg.Retry = retryCfg
	}
	return nil
}
