package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "hathor-dice",
	Short: "Provably fair dice betting client for Hathor nano contracts",
	Long: `Client for a provably fair dice game settled by a Hathor nano
contract. Bets deposit tokens into the contract together with a threshold;
the contract draws a random number and the bet wins when the draw lands at
or below the threshold.

The client submits bets through a connected wallet (mock, remote session or
snap), polls the fullnode for settlement results, and exposes the tracked
bets over an HTTP API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Load .env before any command reads the environment. Missing file is
	// fine; the defaults cover local development.
	_ = godotenv.Load()
}
