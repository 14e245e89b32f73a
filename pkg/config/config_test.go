package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WalletMode != "mock" {
		t.Errorf("expected default wallet mode 'mock', got %q", cfg.WalletMode)
	}

	if cfg.HistoryPollInterval != 5*time.Second {
		t.Errorf("expected default poll interval 5s, got %s", cfg.HistoryPollInterval)
	}

	if cfg.StorageMode != "console" {
		t.Errorf("expected default storage mode 'console', got %q", cfg.StorageMode)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("WALLET_MODE", "snap")
	t.Setenv("HISTORY_POLL_INTERVAL", "2s")
	t.Setenv("HISTORY_PAGE_SIZE", "25")
	t.Setenv("CONTRACT_REGISTRY", "00=00aabb, 000c=00ccdd")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WalletMode != "snap" {
		t.Errorf("expected wallet mode 'snap', got %q", cfg.WalletMode)
	}

	if cfg.HistoryPollInterval != 2*time.Second {
		t.Errorf("expected poll interval 2s, got %s", cfg.HistoryPollInterval)
	}

	if cfg.HistoryPageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.HistoryPageSize)
	}

	if cfg.ContractRegistry["00"] != "00aabb" || cfg.ContractRegistry["000c"] != "00ccdd" {
		t.Errorf("unexpected registry: %v", cfg.ContractRegistry)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "bad-wallet-mode", mutate: func(c *Config) { c.WalletMode = "ledger" }, wantErr: true},
		{name: "empty-node-url", mutate: func(c *Config) { c.NodeURL = "" }, wantErr: true},
		{name: "zero-poll-interval", mutate: func(c *Config) { c.HistoryPollInterval = 0 }, wantErr: true},
		{name: "zero-page-size", mutate: func(c *Config) { c.HistoryPageSize = 0 }, wantErr: true},
		{name: "bad-storage-mode", mutate: func(c *Config) { c.StorageMode = "redis" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				HTTPPort:            "8080",
				NodeURL:             "https://node1.testnet.hathor.network/v1a",
				WalletMode:          "mock",
				HistoryPollInterval: time.Second,
				HistoryPageSize:     50,
				StorageMode:         "console",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseRegistry(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{name: "empty", raw: "", expected: 0},
		{name: "single", raw: "00=00aa", expected: 1},
		{name: "multiple", raw: "00=00aa,000c=00bb", expected: 2},
		{name: "malformed-pair-skipped", raw: "00=00aa,garbage,=00bb", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := parseRegistry(tt.raw)
			if len(registry) != tt.expected {
				t.Errorf("expected %d entries, got %d: %v", tt.expected, len(registry), registry)
			}
		})
	}
}
