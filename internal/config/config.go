package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/arachne/internal/retry"
)

// Default configuration values.
const (
	// DefaultMaxDepth of 3 reaches listing, item, and detail pages of
	// most sites without wandering off into archives. Depth 0 crawls
	// only the seeds.
	DefaultMaxDepth = 3

	// DefaultConcurrency of 8 workers keeps a steady request pipeline
	// without looking like a flood to the target host.
	DefaultConcurrency = 8

	// DefaultRequestDelay spaces requests one second apart across all
	// workers. This is a politeness setting; lower it only for hosts
	// you control.
	DefaultRequestDelay = 1 * time.Second

	// DefaultTimeout bounds one fetch end to end.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	// 10MB covers HTML and JSON pages while bounding memory per worker.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies the crawler in HTTP requests so
	// operators can recognize the traffic in their logs.
	DefaultUserAgent = "arachne/1.0 (+https://github.com/nao1215/arachne)"

	// DefaultKafkaTopic is the topic items are published to when the
	// kafka backend is selected without an explicit topic.
	DefaultKafkaTopic = "arachne-items"

	// AppName is the application name used for XDG directory paths.
	AppName = "arachne"
)

// Storage backend names accepted in configuration.
const (
	StorageDisk   = "disk"
	StorageSQLite = "sqlite"
	StorageKafka  = "kafka"
)

// Dedup store names accepted in configuration.
const (
	DedupMemory = "memory"
	DedupRedis  = "redis"
)

// Config holds all options for one crawl. It is populated from defaults,
// an optional YAML file, and CLI flags, in that order, then treated as an
// immutable snapshot once the crawl starts.
type Config struct {
	// Seeds are the URLs the crawl starts from.
	Seeds []string

	// MaxDepth is the inclusive depth limit. Requests deeper than this
	// are dropped silently and counted. Depth 0 crawls only the seeds.
	MaxDepth int

	// Concurrency is the number of parallel fetch workers.
	Concurrency int

	// RequestDelay is the minimum interval between requests across all
	// workers. Zero disables the politeness delay.
	RequestDelay time.Duration

	// Timeout is the per-request deadline.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the response body cap in bytes. Zero uses the
	// default.
	MaxBodySize int64

	// RespectRobots gates requests on the target host's robots.txt.
	RespectRobots bool

	// AllowURLRevisit disables URL dedup so the same page can be fetched
	// more than once within a crawl.
	AllowURLRevisit bool

	// FollowExternal lets the built-in link spider leave the seed hosts.
	FollowExternal bool

	// StorageBackend selects where items are persisted: disk, sqlite, or
	// kafka.
	StorageBackend string

	// DataDir is the base directory for the disk and sqlite backends.
	// Defaults to the XDG data directory.
	DataDir string

	// KafkaBrokers are the broker addresses for the kafka backend.
	KafkaBrokers []string

	// KafkaTopic is the topic for the kafka backend.
	KafkaTopic string

	// DedupStore selects the visited-set store: memory or redis.
	DedupStore string

	// RedisAddr is the Redis address for the redis dedup store.
	RedisAddr string

	// Retry holds the per-category retry policies.
	Retry retry.Config

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport emits the crawl summary as JSON instead of text.
	JSONReport bool

	// MarkdownReport emits the crawl summary as Markdown instead of text.
	MarkdownReport bool

	// ReportFile writes the crawl summary to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is the YAML config file path. If empty, the tool
	// searches for .arachne.yml in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a Config with default values. Callers override fields
// from file and flags after creation.
func NewConfig() *Config {
	return &Config{
		MaxDepth:       DefaultMaxDepth,
		Concurrency:    DefaultConcurrency,
		RequestDelay:   DefaultRequestDelay,
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		StorageBackend: StorageDisk,
		DataDir:        XDGDataDir(),
		KafkaTopic:     DefaultKafkaTopic,
		DedupStore:     DedupMemory,
		Retry:          retry.DefaultConfig(),
	}
}

// XDGDataDir returns the XDG data directory for arachne.
// On Linux: ~/.local/share/arachne
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for arachne.
// On Linux: ~/.config/arachne
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once before the crawl starts, so every later stage can trust
// the snapshot.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.StorageBackend {
	case StorageDisk, StorageSQLite:
	case StorageKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return ErrKafkaNotConfigured
		}
	default:
		return ErrUnknownStorageBackend
	}

	switch c.DedupStore {
	case DedupMemory:
	case DedupRedis:
		if c.RedisAddr == "" {
			return ErrRedisNotConfigured
		}
	default:
		return ErrUnknownDedupStore
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
