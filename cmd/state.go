package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hathordice/hathor-dice/internal/contract"
	"github.com/hathordice/hathor-dice/internal/odds"
	"github.com/hathordice/hathor-dice/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the dice contract's configuration",
	Long: `Fetches the dice contract's current state from the fullnode and
prints the betting limits, house edge and a sample odds table. No wallet
is needed.`,
	RunE: runState,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.Flags().StringP("token", "t", "00", "Token uid the contract settles")
}

func runState(cmd *cobra.Command, args []string) error {
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

	state, err := reader.FetchState(ctx, contractID)
	if err != nil {
		return fmt.Errorf("fetch contract state: %w", err)
	}

	fmt.Printf("=== Dice Contract ===\n\n")
	fmt.Printf("Contract:            %s\n", state.ContractID)
	fmt.Printf("Token:               %s\n", state.TokenID)
	fmt.Printf("Max bet:             %d\n", state.MaxBetAmount)
	fmt.Printf("House edge:          %.2f%%\n", float64(state.HouseEdgeBasisPoints)/100)
	fmt.Printf("Random bits:         %d (thresholds 1-%d)\n", state.RandomBitLength, state.MaxThreshold())
	fmt.Printf("Available liquidity: %d\n", state.AvailableLiquidity)
	fmt.Printf("Total provided:      %d\n\n", state.TotalLiquidityProvided)

	fmt.Printf("=== Odds ===\n\n")
	fmt.Printf("%10s  %12s  %10s\n", "chance", "threshold", "multiplier")

	for _, chance := range []float64{1, 5, 10, 25, 50, 75, 90, 95} {
		threshold := odds.WinChanceToThreshold(chance, state.RandomBitLength)
		multiplier := odds.Multiplier(threshold, state.RandomBitLength, state.HouseEdgeBasisPoints)
		fmt.Printf("%9.2f%%  %12d  %9.4fx\n", chance, threshold, multiplier)
	}

	return nil
}
