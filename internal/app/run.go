package app

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/healthprobe"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("wallet-mode", a.cfg.WalletMode),
		zap.String("node-url", a.cfg.NodeURL),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Attach the wallet transport
	err := a.connectWallet(a.ctx)
	if err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}

	a.healthChecker.SetReady(healthprobe.ComponentWallet, true)

	// Load the contract configuration before accepting bets
	state, err := a.tracker.RefreshState(a.ctx)
	if err != nil {
		return fmt.Errorf("load contract state: %w", err)
	}

	a.healthChecker.SetReady(healthprobe.ComponentFullnode, true)

	a.logger.Info("contract-state-loaded",
		zap.String("contract-id", state.ContractID),
		zap.Int64("max-bet", state.MaxBetAmount),
		zap.Int64("house-edge-bps", state.HouseEdgeBasisPoints),
		zap.Int64("bit-length", state.RandomBitLength))

	// Start bankroll monitoring
	a.breaker.Start(a.ctx)

	// Start settlement tracker
	a.wg.Add(1)
	go a.runTracker()

	a.healthChecker.SetReady(healthprobe.ComponentTracker, true)

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runTracker() {
	defer a.wg.Done()
	err := a.tracker.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("settlement-tracker-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
