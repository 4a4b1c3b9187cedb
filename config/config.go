package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	perrors "github.com/guilhermeLira011/monitor-preco-samsung-a05s/pkg/errors"
)

// Store identifiers accepted by STORES and RELAXED_STORES
const (
	StoreMercadoLivre  = "mercado-livre"
	StoreMagazineLuiza = "magazine-luiza"
	StoreKabum         = "kabum"
)

var knownStores = []string{StoreMercadoLivre, StoreMagazineLuiza, StoreKabum}

// Config represents the application configuration
type Config struct {
	// Redis configuration, publishing is disabled when RedisAddr is empty
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration, rate-limit blocking is disabled when MemcacheAddr is empty
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Run configuration
	Stores            []string
	RelaxedStores     []string
	OutputDir         string
	StoreTimeout      time.Duration
	MaxParallelStores int
	RequestInterval   time.Duration
	HTTPTimeout       time.Duration

	// Store origins
	KabumURL              string
	MagaluURL             string
	MercadoLivreURL       string
	MercadoLivreSearchURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))
	timeoutSeconds, _ := strconv.Atoi(getEnv("STORE_TIMEOUT_SECONDS", "120"))
	maxParallel, _ := strconv.Atoi(getEnv("MAX_PARALLEL_STORES", "1"))
	intervalMillis, _ := strconv.Atoi(getEnv("REQUEST_INTERVAL_MS", "3000"))
	httpTimeoutSeconds, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "15"))

	return &Config{
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisDB:               redisDB,
		RedisStream:           getEnv("REDIS_STREAM", "a05s:listings"),
		RedisStreamMaxLength:  streamMaxLength,
		MemcacheAddr:          os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:        time.Duration(blockSeconds) * time.Second,
		Stores:                splitList(getEnv("STORES", strings.Join(knownStores, ","))),
		RelaxedStores:         splitList(os.Getenv("RELAXED_STORES")),
		OutputDir:             getEnv("OUTPUT_DIR", "."),
		StoreTimeout:          time.Duration(timeoutSeconds) * time.Second,
		MaxParallelStores:     maxParallel,
		RequestInterval:       time.Duration(intervalMillis) * time.Millisecond,
		HTTPTimeout:           time.Duration(httpTimeoutSeconds) * time.Second,
		KabumURL:              getEnv("KABUM_URL", "https://www.kabum.com.br"),
		MagaluURL:             getEnv("MAGALU_URL", "https://www.magazineluiza.com.br"),
		MercadoLivreURL:       getEnv("MERCADOLIVRE_URL", "https://www.mercadolivre.com.br"),
		MercadoLivreSearchURL: getEnv("MERCADOLIVRE_SEARCH_URL", "https://lista.mercadolivre.com.br"),
		Environment:           getEnv("MONITOR_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the run cannot work with
func (c *Config) Validate() error {
	if len(c.Stores) == 0 {
		return perrors.NewConfiguration("no stores configured", nil)
	}
	for _, s := range c.Stores {
		if !IsKnownStore(s) {
			return perrors.NewConfiguration(fmt.Sprintf("unknown store %q (known: %s)", s, strings.Join(knownStores, ", ")), nil)
		}
	}
	for _, s := range c.RelaxedStores {
		if !IsKnownStore(s) {
			return perrors.NewConfiguration(fmt.Sprintf("unknown relaxed store %q", s), nil)
		}
	}
	if c.StoreTimeout <= 0 {
		return perrors.NewConfiguration(fmt.Sprintf("store timeout must be positive, got %v", c.StoreTimeout), nil)
	}
	if c.MaxParallelStores < 1 {
		return perrors.NewConfiguration(fmt.Sprintf("max parallel stores must be at least 1, got %d", c.MaxParallelStores), nil)
	}
	if c.RequestInterval < 0 {
		return perrors.NewConfiguration("request interval must not be negative", nil)
	}
	if c.OutputDir == "" {
		return perrors.NewConfiguration("output directory must not be empty", nil)
	}
	return nil
}

// IsRelaxed reports whether the relaxed match tier is enabled for a store
func (c *Config) IsRelaxed(store string) bool {
	for _, s := range c.RelaxedStores {
		if s == store {
			return true
		}
	}
	return false
}

// IsKnownStore reports whether name identifies a supported store
func IsKnownStore(name string) bool {
	for _, s := range knownStores {
		if s == name {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
