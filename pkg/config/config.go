package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Hathor node
	NodeURL string
	Network string

	// Wallet
	WalletMode      string // "mock", "session" or "snap"
	SessionRelayURL string
	SnapID          string

	// Contract registry: settlement token id -> nano contract id
	ContractRegistry map[string]string

	// Settlement polling
	HistoryPollInterval time.Duration
	HistoryPageSize     int

	// Balance cache
	BalanceCacheTTL time.Duration

	// Bankroll circuit breaker
	BreakerCheckInterval time.Duration
	BreakerBetMultiplier float64
	BreakerMinBalance    int64
	BreakerHysteresis    float64

	// Journal
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Hathor node defaults
		NodeURL: getEnvOrDefault("HATHOR_NODE_URL", "https://node1.mainnet.hathor.network/v1a"),
		Network: getEnvOrDefault("HATHOR_NETWORK", "mainnet"),

		// Wallet defaults
		WalletMode:      getEnvOrDefault("WALLET_MODE", "mock"),
		SessionRelayURL: getEnvOrDefault("SESSION_RELAY_URL", "wss://relay.walletconnect.com"),
		SnapID:          getEnvOrDefault("SNAP_ID", "npm:@hathor/snap"),

		ContractRegistry: parseRegistry(os.Getenv("CONTRACT_REGISTRY")),

		// Settlement polling defaults
		HistoryPollInterval: getDurationOrDefault("HISTORY_POLL_INTERVAL", 5*time.Second),
		HistoryPageSize:     getIntOrDefault("HISTORY_PAGE_SIZE", 50),

		// Balance cache defaults
		BalanceCacheTTL: getDurationOrDefault("BALANCE_CACHE_TTL", 30*time.Second),

		// Circuit breaker defaults
		BreakerCheckInterval: getDurationOrDefault("BREAKER_CHECK_INTERVAL", time.Minute),
		BreakerBetMultiplier: getFloatOrDefault("BREAKER_BET_MULTIPLIER", 3.0),
		BreakerMinBalance:    int64(getIntOrDefault("BREAKER_MIN_BALANCE", 100)),
		BreakerHysteresis:    getFloatOrDefault("BREAKER_HYSTERESIS", 1.5),

		// Journal defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "hathordice"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "hathordice123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "hathor_dice"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.NodeURL == "" {
		return fmt.Errorf("HATHOR_NODE_URL cannot be empty")
	}

	if c.WalletMode != "mock" && c.WalletMode != "session" && c.WalletMode != "snap" {
		return fmt.Errorf("WALLET_MODE must be 'mock', 'session' or 'snap', got %q", c.WalletMode)
	}

	if c.HistoryPollInterval <= 0 {
		return fmt.Errorf("HISTORY_POLL_INTERVAL must be positive, got %s", c.HistoryPollInterval)
	}

	if c.HistoryPageSize <= 0 {
		return fmt.Errorf("HISTORY_PAGE_SIZE must be positive, got %d", c.HistoryPageSize)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

// parseRegistry parses "token=contractId" pairs separated by commas, e.g.
// "00=00abc...,000c=00def...". Malformed pairs are skipped.
func parseRegistry(raw string) map[string]string {
	registry := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		token, contract, ok := strings.Cut(pair, "=")
		if !ok || token == "" || contract == "" {
			continue
		}

		registry[strings.TrimSpace(token)] = strings.TrimSpace(contract)
	}

	return registry
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
