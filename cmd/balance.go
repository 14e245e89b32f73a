package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hathordice/hathor-dice/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check the connected wallet's balance",
	Long: `Connects the configured wallet transport and displays:
- The wallet's network
- The wallet's first address
- The unlocked HTR balance`,
	RunE: runBalance,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	client, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer client.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	network, err := client.wallet.ConnectedNetwork(ctx)
	if err != nil {
		return fmt.Errorf("get network: %w", err)
	}

	balance, err := client.wallet.Balance(ctx, "00")
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	fmt.Printf("=== Wallet ===\n\n")
	fmt.Printf("Mode:    %s\n", cfg.WalletMode)
	fmt.Printf("Network: %s\n", network.Network)
	fmt.Printf("Address: %s\n", client.wallet.ConnectedAddress())
	fmt.Printf("Balance: %d HTR (base units, unlocked)\n", balance)

	return nil
}
