package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/healthprobe"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(healthprobe.ComponentWallet, false)
	a.healthChecker.SetReady(healthprobe.ComponentFullnode, false)
	a.healthChecker.SetReady(healthprobe.ComponentTracker, false)

	// Cancel context to stop the polling loop
	a.cancel()

	// Shutdown components in dependency order
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Disconnect wallet (closes the relay session if one is attached)
	a.walletClient.Disconnect()

	// Close the settlement journal
	err = a.journal.Close()
	if err != nil {
		a.logger.Error("journal-close-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.balanceCache.Close()

	a.logger.Info("application-shutdown-complete")

	return nil
}
