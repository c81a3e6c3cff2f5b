package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/arachne/internal/config"
	"github.com/nao1215/arachne/internal/dedup"
	"github.com/nao1215/arachne/internal/engine"
	"github.com/nao1215/arachne/internal/log"
	"github.com/nao1215/arachne/internal/report"
	"github.com/nao1215/arachne/internal/spider"
	"github.com/nao1215/arachne/internal/storage"
	"github.com/nao1215/arachne/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl one or more websites",
		Long: `Crawl fetches the given seed URLs and follows same-host links up to the
configured depth. Extracted page data is persisted to the selected
storage backend; requests that exhaust their retry budget are persisted
as error records.

Examples:
  # Crawl a site with defaults (depth 3, disk storage)
  arachne crawl https://example.com

  # Crawl only the seed pages into SQLite
  arachne crawl --depth 0 --storage sqlite https://example.com

  # Publish items to Kafka and dedup through Redis
  arachne crawl --storage kafka --kafka-brokers localhost:9092 \
    --dedup redis --redis-addr localhost:6379 https://example.com

  # Emit a Markdown report to a file
  arachne crawl --markdown -o report.md https://example.com

Configuration file (.arachne.yml) example:
  max_depth: 2
  request_delay: 500ms
  storage:
    backend: sqlite
  retry:
    categories:
      http_error:
        max_retries: 5
        backoff: exponential`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (0 crawls only the seeds)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of parallel fetch workers")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Minimum interval between requests across all workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Response body cap in bytes")
	cmd.Flags().Bool("respect-robots", false,
		"Honor robots.txt on target hosts")
	cmd.Flags().Bool("allow-revisit", false,
		"Allow the same URL to be fetched more than once")
	cmd.Flags().Bool("follow-external", false,
		"Follow links to hosts outside the seed set")

	// Storage flags
	cmd.Flags().StringP("storage", "s", config.StorageDisk,
		"Storage backend: disk, sqlite, or kafka")
	cmd.Flags().String("data-dir", "",
		"Base directory for the disk and sqlite backends (default: XDG data dir)")
	cmd.Flags().StringSlice("kafka-brokers", nil,
		"Kafka broker addresses for the kafka backend")
	cmd.Flags().String("kafka-topic", config.DefaultKafkaTopic,
		"Kafka topic for the kafka backend")

	// Dedup flags
	cmd.Flags().String("dedup", config.DedupMemory,
		"Visited-set store: memory or redis")
	cmd.Flags().String("redis-addr", "",
		"Redis address for the redis dedup store")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .arachne.yml in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Graceful shutdown: the first signal stops admission and drains
	// in-flight requests, a second one kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig assembles the crawl configuration: defaults, then the YAML
// file, then explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPathFlag

	// An explicitly named config file must exist; the default search may
	// come up empty.
	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Seeds = args
	}
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyFlags overrides cfg with every flag the user set explicitly.
// Untouched flags keep the file or default value.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("delay") {
		if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if flags.Changed("respect-robots") {
		if cfg.RespectRobots, err = flags.GetBool("respect-robots"); err != nil {
			return err
		}
	}
	if flags.Changed("allow-revisit") {
		if cfg.AllowURLRevisit, err = flags.GetBool("allow-revisit"); err != nil {
			return err
		}
	}
	if flags.Changed("follow-external") {
		if cfg.FollowExternal, err = flags.GetBool("follow-external"); err != nil {
			return err
		}
	}
	if flags.Changed("storage") {
		if cfg.StorageBackend, err = flags.GetString("storage"); err != nil {
			return err
		}
	}
	if flags.Changed("data-dir") {
		if cfg.DataDir, err = flags.GetString("data-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("kafka-brokers") {
		if cfg.KafkaBrokers, err = flags.GetStringSlice("kafka-brokers"); err != nil {
			return err
		}
	}
	if flags.Changed("kafka-topic") {
		if cfg.KafkaTopic, err = flags.GetString("kafka-topic"); err != nil {
			return err
		}
	}
	if flags.Changed("dedup") {
		if cfg.DedupStore, err = flags.GetString("dedup"); err != nil {
			return err
		}
	}
	if flags.Changed("redis-addr") {
		if cfg.RedisAddr, err = flags.GetString("redis-addr"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	return nil
}

// runCrawl wires storage, dedup, transport, and the engine together and
// runs the built-in link spider over the seeds.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	manager, err := buildStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	visited, err := buildDedup(cfg)
	if err != nil {
		return err
	}

	fetcher := transport.NewHTTPFetcher(
		transport.WithUserAgent(cfg.UserAgent),
		transport.WithTimeout(cfg.Timeout),
		transport.WithRequestDelay(cfg.RequestDelay),
		transport.WithMaxBodySize(cfg.MaxBodySize),
	)

	e, err := engine.New(cfg, fetcher, manager,
		engine.WithLogger(logger),
		engine.WithDedupStore(visited),
	)
	if err != nil {
		return err
	}

	var spiderOpts []spider.LinkOption
	if cfg.FollowExternal {
		spiderOpts = append(spiderOpts, spider.WithFollowExternal())
	}
	sp, err := spider.NewLinkSpider("link", cfg.Seeds, manager, spiderOpts...)
	if err != nil {
		return err
	}

	fmt.Printf("Crawling %d seed(s)...\n", len(cfg.Seeds))
	startTime := time.Now()

	summary, err := e.Run(ctx, sp)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("Crawl finished in %s\n", time.Since(startTime).Round(time.Millisecond))

	return outputReport(cfg, summary)
}

// buildStorage creates the configured backend and routes the data and
// error categories to it.
func buildStorage(cfg *config.Config) (*storage.Manager, error) {
	manager := storage.NewManager(storage.CategoryData)

	switch cfg.StorageBackend {
	case config.StorageDisk:
		for _, category := range []storage.Category{storage.CategoryData, storage.CategoryError, storage.CategoryRaw} {
			backend, err := storage.NewDiskBackend(cfg.DataDir, category.String())
			if err != nil {
				return nil, fmt.Errorf("failed to create disk storage: %w", err)
			}
			manager.Register(category, backend)
		}

	case config.StorageSQLite:
		store, err := storage.OpenSQLite(cfg.DataDir, storage.DefaultSQLiteOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		for _, category := range []storage.Category{storage.CategoryData, storage.CategoryError, storage.CategoryRaw} {
			manager.Register(category, store.Collection(category.String()))
		}

	case config.StorageKafka:
		// Error records go to a sibling topic so consumers of the item
		// stream never see them.
		manager.Register(storage.CategoryData, storage.NewKafkaBackend(cfg.KafkaBrokers, cfg.KafkaTopic))
		manager.Register(storage.CategoryError, storage.NewKafkaBackend(cfg.KafkaBrokers, cfg.KafkaTopic+"-errors"))

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
	return manager, nil
}

// buildDedup creates the configured visited-set store.
func buildDedup(cfg *config.Config) (dedup.Store, error) {
	switch cfg.DedupStore {
	case config.DedupMemory:
		return dedup.NewMemoryStore(), nil
	case config.DedupRedis:
		store, err := dedup.NewRedisStore(cfg.RedisAddr, config.AppName, dedup.DefaultRedisTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown dedup store: %s", cfg.DedupStore)
	}
}

// outputReport writes the crawl summary in the requested format.
func outputReport(cfg *config.Config, summary *engine.Summary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(summary)
	return err
}
