package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hathordice/hathor-dice/internal/app"
	"github.com/hathordice/hathor-dice/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the dice client daemon",
	Long: `Starts the dice client, which will:
1. Connect the configured wallet transport (mock, session or snap)
2. Load the dice contract's configuration from the fullnode
3. Poll the contract's transaction history for settlements
4. Serve the bet list and contract state over HTTP

Use --topic to supply the approved session topic in session wallet mode.`,
	RunE: runDaemon,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("token", "t", "", "Token uid to bet with (defaults to HTR)")
	runCmd.Flags().String("topic", "", "Approved session topic (session wallet mode)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Get flags
	token, _ := cmd.Flags().GetString("token")
	topic, _ := cmd.Flags().GetString("topic")

	// Create app with options
	opts := &app.Options{
		Token:        token,
		SessionTopic: topic,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
