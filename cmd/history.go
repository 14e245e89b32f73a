package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hathordice/hathor-dice/internal/contract"
	"github.com/hathordice/hathor-dice/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent bets settled by the contract",
	Long: `Fetches the dice contract's recent transaction history from the
fullnode and lists the bet transactions, newest first. No wallet is
needed.`,
	RunE: runHistory,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("token", "t", "00", "Token uid the contract settles")
	historyCmd.Flags().IntP("count", "n", 20, "How many entries to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	token, _ := cmd.Flags().GetString("token")
	count, _ := cmd.Flags().GetInt("count")

	reader := contract.New(&contract.Config{
		NodeURL:  cfg.NodeURL,
		Registry: cfg.ContractRegistry,
		Logger:   logger,
	})

	contractID, err := reader.ContractForToken(token)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	page, err := reader.FetchHistory(ctx, contractID, count, "")
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	fmt.Printf("=== Recent Transactions (%s) ===\n\n", contractID)

	if len(page.Entries) == 0 {
		fmt.Printf("No transactions yet\n")
		return nil
	}

	for i := range page.Entries {
		entry := &page.Entries[i]

		status := "pending"
		if entry.IsVoided {
			status = "voided"
		} else if entry.Confirmed() {
			status = "confirmed"
		}

		fmt.Printf("%s  %-10s  %-9s  %s\n",
			time.Unix(entry.Timestamp, 0).Format(time.RFC3339),
			entry.NCMethod,
			status,
			entry.Hash)
	}

	if page.HasMore {
		fmt.Printf("\n(more entries available; raise --count to see them)\n")
	}

	return nil
}
