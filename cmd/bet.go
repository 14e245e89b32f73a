package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hathordice/hathor-dice/internal/odds"
	"github.com/hathordice/hathor-dice/internal/settlement"
	"github.com/hathordice/hathor-dice/pkg/config"
	"github.com/hathordice/hathor-dice/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var betCmd = &cobra.Command{
	Use:   "bet",
	Short: "Place a single bet and wait for settlement",
	Long: `Places one bet through the configured wallet and polls the contract
history until it settles.

The wager is given as --amount plus exactly one of:
  --chance     target win chance in percent (converted to a threshold)
  --threshold  raw contract threshold

Example:
  hathor-dice bet --amount 1000 --chance 50`,
	RunE: runBet,
}

//nolint:gochecknoglobals // Cobra flag targets
var (
	betAmount    int64
	betChance    float64
	betThreshold int64
	betWait      time.Duration
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(betCmd)

	betCmd.Flags().Int64VarP(&betAmount, "amount", "a", 0, "Bet amount in base units")
	betCmd.Flags().Float64VarP(&betChance, "chance", "c", 0, "Win chance in percent (0-100)")
	betCmd.Flags().Int64Var(&betThreshold, "threshold", 0, "Raw contract threshold")
	betCmd.Flags().DurationVarP(&betWait, "wait", "w", 2*time.Minute, "How long to wait for settlement")

	_ = betCmd.MarkFlagRequired("amount")
	betCmd.MarkFlagsOneRequired("chance", "threshold")
	betCmd.MarkFlagsMutuallyExclusive("chance", "threshold")
}

func runBet(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), betWait)
	defer cancel()

	session, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer session.close()

	state, err := session.tracker.RefreshState(ctx)
	if err != nil {
		return fmt.Errorf("load contract state: %w", err)
	}

	threshold := betThreshold
	if threshold == 0 {
		threshold = odds.WinChanceToThreshold(betChance, state.RandomBitLength)
	}

	chance := odds.ThresholdToWinChance(threshold, state.RandomBitLength)
	multiplier := odds.Multiplier(threshold, state.RandomBitLength, state.HouseEdgeBasisPoints)

	fmt.Printf("=== Placing Bet ===\n\n")
	fmt.Printf("Amount:     %d\n", betAmount)
	fmt.Printf("Threshold:  %d (of %d)\n", threshold, state.MaxThreshold())
	fmt.Printf("Win chance: %.4f%%\n", chance)
	fmt.Printf("Multiplier: %.4fx\n\n", multiplier)

	bet, err := session.tracker.PlaceBet(ctx, betAmount, threshold)
	if err != nil {
		return fmt.Errorf("place bet: %w", err)
	}

	fmt.Printf("Submitted: %s\n", bet.ID)
	fmt.Printf("Potential payout: %d\n\n", bet.PotentialPayout)
	fmt.Printf("Waiting for settlement (up to %s)...\n\n", betWait)

	settledBet, err := waitForSettlement(ctx, session.tracker, cfg.HistoryPollInterval)
	if err != nil {
		return err
	}

	printSettlement(settledBet)

	return nil
}

// waitForSettlement drives poll cycles until the tracker surfaces a settled
// bet or the context expires.
func waitForSettlement(ctx context.Context, tracker *settlement.Tracker, interval time.Duration) (types.Bet, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return types.Bet{}, fmt.Errorf("bet did not settle in time: %w", ctx.Err())
		case bet := <-tracker.Settled():
			return bet, nil
		case <-ticker.C:
			err := tracker.Poll(ctx)
			if err != nil {
				fmt.Printf("poll error: %v\n", err)
			}
		}
	}
}

func printSettlement(bet types.Bet) {
	fmt.Printf("=== Settlement ===\n\n")

	switch bet.Result {
	case types.BetWin:
		fmt.Printf("Result: WIN ✅\n")
	case types.BetLose:
		fmt.Printf("Result: LOSE ❌\n")
	case types.BetFailed:
		fmt.Printf("Result: FAILED (transaction voided)\n")
	case types.BetPending:
		fmt.Printf("Result: still pending\n")
	}

	if bet.LuckyNumber != nil {
		fmt.Printf("Lucky number: %d (needed ≤ %d)\n", *bet.LuckyNumber, bet.Threshold)
	}

	fmt.Printf("Payout: %d\n", bet.Payout)

	if bet.Error != "" {
		fmt.Printf("Note: %s\n", bet.Error)
	}
}
