package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/config"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/helpers"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/internal/crawler"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/logger"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/cache"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/publisher"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/sink"
	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/worker"
)

var (
	stores  []string
	outDir  string
	timeout time.Duration
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	var rootCmd = &cobra.Command{
		Use:   "monitor-a05s",
		Short: "Monitor Samsung Galaxy A05s prices in Brazilian stores",
		Long: `monitor-a05s searches Kabum, Magazine Luiza and Mercado Livre for the
Samsung Galaxy A05s (128GB, 6GB RAM), prints the first matching listings of
each store and saves them as CSV and JSON.`,
		Example: `  # Run every store
  monitor-a05s

  # Only Kabum, saving into ./out
  monitor-a05s --store kabum --out-dir out`,
		Args:         cobra.NoArgs,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringSliceVarP(&stores, "store", "s", nil, "Store to monitor (mercado-livre, magazine-luiza, kabum), can be used multiple times")
	rootCmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for the CSV and JSON files (defaults to OUTPUT_DIR)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Time budget per store (defaults to STORE_TIMEOUT_SECONDS)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if len(stores) > 0 {
		cfg.Stores = make([]string, 0, len(stores))
		for _, s := range stores {
			cfg.Stores = append(cfg.Stores, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if timeout > 0 {
		cfg.StoreTimeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("stores", cfg.Stores).
		Dur("store_timeout", cfg.StoreTimeout).
		Msg("Starting application")

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Create scrapers
	scrapers := crawler.CreateScrapers(cfg, services.Cache, helpers.NewHTTPFetcher(cfg.HTTPTimeout))
	if len(scrapers) == 0 {
		return fmt.Errorf("no scrapers were created for stores %v", cfg.Stores)
	}

	log.Info().
		Int("scraper_count", len(scrapers)).
		Msg("Created scrapers")

	out := sink.New(cfg.OutputDir, os.Stdout)
	w := worker.NewWorker(scrapers, out, services.Publisher, cfg.StoreTimeout, cfg.MaxParallelStores)

	out.Started()
	summaries := w.Run(ctx)
	out.Finished()

	for _, s := range summaries {
		log.Info().
			Str("store", s.Store).
			Str("status", string(s.Status)).
			Int("count", s.Count).
			Dur("elapsed", s.Elapsed).
			Msg("Store summary")
	}

	if ctx.Err() != nil {
		log.Info().Msg("Interrupted, shutting down")
	}
	return nil
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher: %v", err)
		}
	}
}

// initializeServices connects the optional block cache and publisher.
// A service that is not configured or not reachable is left nil.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := cacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unreachable, rate-limit blocking disabled: %v", cfg.MemcacheAddr, err)
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := redisPublisher.Ping(pingCtx); err != nil {
			logger.Warn("Redis at %s unreachable, publishing disabled: %v", cfg.RedisAddr, err)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}
