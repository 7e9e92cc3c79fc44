package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP API configuration
	HTTPAddr string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables publishing

	// Resolution policy: user IDs allowed to resolve markets. Empty means any
	// caller may resolve, which matches the permissive reference behavior.
	ResolverUserIDs []string

	// Betting bounds. Amounts are lamports; MaxBetAmount 0 means unbounded.
	MaxBetAmount int64

	// Environment is "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// load loads configuration from the environment, with .env as a fallback
func load() (*Config, error) {
	// Best-effort; absence of a .env file is the normal case in production
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    getEnvWithDefault("HTTP_ADDR", ":8080"),
		NATSServers: os.Getenv("NATS_SERVERS"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if ids := os.Getenv("RESOLVER_USER_IDS"); ids != "" {
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				config.ResolverUserIDs = append(config.ResolverUserIDs, id)
			}
		}
	}

	if maxBet := os.Getenv("MAX_BET_AMOUNT"); maxBet != "" {
		parsed, err := strconv.ParseInt(maxBet, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid MAX_BET_AMOUNT: %q", maxBet)
		}
		config.MaxBetAmount = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment: "test",
		HTTPAddr:    ":0",
	}
}
