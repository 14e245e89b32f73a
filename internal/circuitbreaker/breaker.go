// Package circuitbreaker pauses bet placement when the wallet's bankroll
// runs low. Thresholds adapt to the player's recent bet sizes so a
// high-roller and a micro-bettor both get a sensible floor.
package circuitbreaker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// BalanceFetcher is the slice of the wallet client the breaker polls.
// Both wallet.Client and test fakes implement it.
type BalanceFetcher interface {
	Balance(ctx context.Context, token string) (int64, error)
}

// rollingWindow is how many recent bets feed the threshold calculation.
const rollingWindow = 20

// BankrollCircuitBreaker monitors the wallet balance and gates bet
// placement. It recalculates its thresholds from a rolling window of recent
// bet sizes and applies hysteresis so the gate does not flap around the
// threshold.
type BankrollCircuitBreaker struct {
	enabled atomic.Bool // Atomic for lock-free reads

	// Configuration
	checkInterval   time.Duration
	wallet          BalanceFetcher
	token           string
	logger          *zap.Logger
	betMultiplier   float64 // Multiplier for avg bet size
	minAbsolute     int64   // Absolute minimum balance in base units
	hysteresisRatio float64 // Re-enable at ratio * disable threshold

	// Protected by mutex
	mu               sync.RWMutex
	lastBalance      int64
	lastCheck        time.Time
	recentBets       []int64 // Rolling window of bet sizes
	disableThreshold int64
	enableThreshold  int64
}

// Config holds circuit breaker configuration.
type Config struct {
	CheckInterval   time.Duration
	BetMultiplier   float64
	MinAbsolute     int64
	HysteresisRatio float64
	Wallet          BalanceFetcher
	Token           string
	Logger          *zap.Logger
}

// Status holds current circuit breaker status for debugging.
type Status struct {
	Enabled          bool
	LastBalance      int64
	LastCheck        time.Time
	DisableThreshold int64
	EnableThreshold  int64
	AvgBetSize       int64
	RecentBetCount   int
}

// New creates a new circuit breaker with the given configuration.
func New(cfg *Config) (*BankrollCircuitBreaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Wallet == nil {
		return nil, fmt.Errorf("wallet cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive")
	}
	if cfg.BetMultiplier <= 0 {
		return nil, fmt.Errorf("bet multiplier must be positive")
	}
	if cfg.MinAbsolute <= 0 {
		return nil, fmt.Errorf("min absolute must be positive")
	}
	if cfg.HysteresisRatio < 1.0 {
		return nil, fmt.Errorf("hysteresis ratio must be >= 1.0")
	}

	breaker := &BankrollCircuitBreaker{
		checkInterval:    cfg.CheckInterval,
		wallet:           cfg.Wallet,
		token:            cfg.Token,
		logger:           cfg.Logger,
		betMultiplier:    cfg.BetMultiplier,
		minAbsolute:      cfg.MinAbsolute,
		hysteresisRatio:  cfg.HysteresisRatio,
		recentBets:       make([]int64, 0, rollingWindow),
		disableThreshold: cfg.MinAbsolute, // Start with minimum
		enableThreshold:  int64(float64(cfg.MinAbsolute) * cfg.HysteresisRatio),
	}

	// Start enabled by default
	breaker.enabled.Store(true)

	BreakerEnabled.Set(1)
	BreakerDisableThreshold.Set(float64(breaker.disableThreshold))
	BreakerEnableThreshold.Set(float64(breaker.enableThreshold))
	BreakerAvgBetSize.Set(0)

	return breaker, nil
}

// IsEnabled returns true if bets may be placed.
// This is lock-free and safe to call from hot paths.
func (b *BankrollCircuitBreaker) IsEnabled() bool {
	return b.enabled.Load()
}

// RecordBet adds a successfully placed bet to the rolling window and
// recalculates thresholds.
func (b *BankrollCircuitBreaker) RecordBet(amount int64) {
	if amount <= 0 {
		b.logger.Warn("invalid-bet-size", zap.Int64("amount", amount))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.recentBets = append(b.recentBets, amount)
	if len(b.recentBets) > rollingWindow {
		b.recentBets = b.recentBets[1:]
	}

	avgBetSize := b.avgBetSizeLocked()

	b.disableThreshold = int64(float64(avgBetSize) * b.betMultiplier)
	if b.disableThreshold < b.minAbsolute {
		b.disableThreshold = b.minAbsolute
	}
	b.enableThreshold = int64(float64(b.disableThreshold) * b.hysteresisRatio)

	BreakerAvgBetSize.Set(float64(avgBetSize))
	BreakerDisableThreshold.Set(float64(b.disableThreshold))
	BreakerEnableThreshold.Set(float64(b.enableThreshold))

	b.logger.Debug("thresholds-updated",
		zap.Int64("avg-bet-size", avgBetSize),
		zap.Int("bet-count", len(b.recentBets)),
		zap.Int64("disable-threshold", b.disableThreshold),
		zap.Int64("enable-threshold", b.enableThreshold))
}

// CheckBalance fetches the current balance and updates the gate state.
func (b *BankrollCircuitBreaker) CheckBalance(ctx context.Context) error {
	start := time.Now()
	defer func() {
		BreakerCheckDuration.Observe(time.Since(start).Seconds())
	}()

	balance, err := b.wallet.Balance(ctx, b.token)
	if err != nil {
		b.logger.Error("failed-to-check-balance", zap.Error(err))
		return fmt.Errorf("get balance: %w", err)
	}

	b.mu.Lock()
	b.lastBalance = balance
	b.lastCheck = time.Now()
	disableThreshold := b.disableThreshold
	enableThreshold := b.enableThreshold
	b.mu.Unlock()

	currentlyEnabled := b.enabled.Load()

	BreakerBalance.Set(float64(balance))

	// State transition logic with hysteresis
	shouldDisable := currentlyEnabled && balance < disableThreshold
	shouldEnable := !currentlyEnabled && balance >= enableThreshold

	switch {
	case shouldDisable:
		b.enabled.Store(false)
		BreakerEnabled.Set(0)
		BreakerStateChanges.Inc()

		b.logger.Warn("circuit-breaker-disabled",
			zap.Int64("balance", balance),
			zap.Int64("disable-threshold", disableThreshold),
			zap.Int64("enable-threshold", enableThreshold))

	case shouldEnable:
		b.enabled.Store(true)
		BreakerEnabled.Set(1)
		BreakerStateChanges.Inc()

		b.logger.Info("circuit-breaker-enabled",
			zap.Int64("balance", balance),
			zap.Int64("disable-threshold", disableThreshold),
			zap.Int64("enable-threshold", enableThreshold))

	default:
		b.logger.Debug("balance-checked",
			zap.Int64("balance", balance),
			zap.Bool("enabled", currentlyEnabled))
	}

	return nil
}

// Start begins the background monitoring loop. It runs until the context is
// cancelled.
func (b *BankrollCircuitBreaker) Start(ctx context.Context) {
	b.logger.Info("circuit-breaker-started",
		zap.Duration("check-interval", b.checkInterval),
		zap.Float64("bet-multiplier", b.betMultiplier),
		zap.Int64("min-absolute", b.minAbsolute),
		zap.Float64("hysteresis-ratio", b.hysteresisRatio))

	// Check balance immediately on startup
	err := b.CheckBalance(ctx)
	if err != nil {
		b.logger.Error("initial-balance-check-failed", zap.Error(err))
	}

	go b.monitorLoop(ctx)
}

func (b *BankrollCircuitBreaker) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(b.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("circuit-breaker-stopped")
			return
		case <-ticker.C:
			err := b.CheckBalance(ctx)
			if err != nil {
				// Log error but continue monitoring
				b.logger.Error("balance-check-error", zap.Error(err))
			}
		}
	}
}

// GetStatus returns current circuit breaker status for debugging and HTTP
// endpoints.
func (b *BankrollCircuitBreaker) GetStatus() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Status{
		Enabled:          b.enabled.Load(),
		LastBalance:      b.lastBalance,
		LastCheck:        b.lastCheck,
		DisableThreshold: b.disableThreshold,
		EnableThreshold:  b.enableThreshold,
		AvgBetSize:       b.avgBetSizeLocked(),
		RecentBetCount:   len(b.recentBets),
	}
}

// avgBetSizeLocked computes the rolling average. Caller holds at least a
// read lock.
func (b *BankrollCircuitBreaker) avgBetSizeLocked() int64 {
	if len(b.recentBets) == 0 {
		return 0
	}

	var sum int64
	for _, amount := range b.recentBets {
		sum += amount
	}

	return sum / int64(len(b.recentBets))
}
