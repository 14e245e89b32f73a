package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// RecordSettlement pretty-prints a settled bet to console.
func (c *ConsoleStorage) RecordSettlement(ctx context.Context, bet *types.Bet) error {
	fmt.Println("\n" + "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	switch bet.Result {
	case types.BetWin:
		fmt.Printf("🎉 BET WON\n")
	case types.BetLose:
		fmt.Printf("💸 BET LOST\n")
	default:
		fmt.Printf("⚠️  BET VOIDED\n")
	}
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Tx:        %s\n", shortHash(bet.ID))
	fmt.Printf("Player:    %s\n", bet.Player)
	fmt.Printf("Stake:     %d\n", bet.Amount)
	fmt.Printf("Threshold: %d\n", bet.Threshold)
	if bet.LuckyNumber != nil {
		fmt.Printf("Drawn:     %d\n", *bet.LuckyNumber)
	}
	fmt.Printf("Payout:    %d\n", bet.Payout)
	fmt.Printf("Settled:   %s\n", bet.SettledAt.Format("2006-01-02 15:04:05"))
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	return nil
}

func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}

	return hash
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
