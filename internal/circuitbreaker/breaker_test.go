package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeBalance serves a settable balance.
type fakeBalance struct {
	mu      sync.Mutex
	balance int64
	err     error
}

func (f *fakeBalance) Balance(ctx context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.balance, f.err
}

func (f *fakeBalance) set(balance int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.balance = balance
}

func validConfig(t *testing.T, wallet BalanceFetcher) *Config {
	t.Helper()

	return &Config{
		CheckInterval:   time.Minute,
		BetMultiplier:   3.0,
		MinAbsolute:     500,
		HysteresisRatio: 1.5,
		Wallet:          wallet,
		Token:           "00",
		Logger:          zaptest.NewLogger(t),
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid-config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "nil-wallet",
			mutate:  func(cfg *Config) { cfg.Wallet = nil },
			wantErr: "wallet cannot be nil",
		},
		{
			name:    "nil-logger",
			mutate:  func(cfg *Config) { cfg.Logger = nil },
			wantErr: "logger cannot be nil",
		},
		{
			name:    "zero-check-interval",
			mutate:  func(cfg *Config) { cfg.CheckInterval = 0 },
			wantErr: "check interval must be positive",
		},
		{
			name:    "zero-bet-multiplier",
			mutate:  func(cfg *Config) { cfg.BetMultiplier = 0 },
			wantErr: "bet multiplier must be positive",
		},
		{
			name:    "zero-min-absolute",
			mutate:  func(cfg *Config) { cfg.MinAbsolute = 0 },
			wantErr: "min absolute must be positive",
		},
		{
			name:    "hysteresis-below-one",
			mutate:  func(cfg *Config) { cfg.HysteresisRatio = 0.9 },
			wantErr: "hysteresis ratio must be >= 1.0",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(t, &fakeBalance{balance: 10_000})
			tt.mutate(cfg)

			breaker, err := New(cfg)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, breaker.IsEnabled())
		})
	}
}

func TestNewNilConfig(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
}

func TestRecordBetRaisesThresholds(t *testing.T) {
	t.Parallel()

	breaker, err := New(validConfig(t, &fakeBalance{balance: 10_000}))
	require.NoError(t, err)

	// Below the absolute floor, the floor wins.
	breaker.RecordBet(10)

	status := breaker.GetStatus()
	assert.Equal(t, int64(500), status.DisableThreshold)

	// Big bets push the dynamic threshold above the floor: avg 1000 * 3.0.
	for i := 0; i < rollingWindow; i++ {
		breaker.RecordBet(1000)
	}

	status = breaker.GetStatus()
	assert.Equal(t, int64(3000), status.DisableThreshold)
	assert.Equal(t, int64(4500), status.EnableThreshold)
	assert.Equal(t, rollingWindow, status.RecentBetCount)
	assert.Equal(t, int64(1000), status.AvgBetSize)
}

func TestRecordBetIgnoresInvalidSizes(t *testing.T) {
	t.Parallel()

	breaker, err := New(validConfig(t, &fakeBalance{balance: 10_000}))
	require.NoError(t, err)

	breaker.RecordBet(0)
	breaker.RecordBet(-5)

	assert.Equal(t, 0, breaker.GetStatus().RecentBetCount)
}

func TestCheckBalanceHysteresis(t *testing.T) {
	t.Parallel()

	wallet := &fakeBalance{balance: 10_000}

	breaker, err := New(validConfig(t, wallet))
	require.NoError(t, err)

	ctx := context.Background()

	// Healthy balance keeps the gate open.
	require.NoError(t, breaker.CheckBalance(ctx))
	assert.True(t, breaker.IsEnabled())

	// Dropping below the disable threshold closes it.
	wallet.set(499)
	require.NoError(t, breaker.CheckBalance(ctx))
	assert.False(t, breaker.IsEnabled())

	// Recovering past the disable threshold but short of the enable
	// threshold keeps it closed (hysteresis).
	wallet.set(600)
	require.NoError(t, breaker.CheckBalance(ctx))
	assert.False(t, breaker.IsEnabled())

	// Clearing the enable threshold reopens it.
	wallet.set(800)
	require.NoError(t, breaker.CheckBalance(ctx))
	assert.True(t, breaker.IsEnabled())
}

func TestCheckBalanceError(t *testing.T) {
	t.Parallel()

	wallet := &fakeBalance{err: errors.New("relay unreachable")}

	breaker, err := New(validConfig(t, wallet))
	require.NoError(t, err)

	err = breaker.CheckBalance(context.Background())
	require.Error(t, err)

	// A failed check never flips the gate.
	assert.True(t, breaker.IsEnabled())
}
