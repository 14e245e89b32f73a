package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/internal/contract"
	"github.com/hathordice/hathor-dice/internal/settlement"
	"github.com/hathordice/hathor-dice/pkg/cache"
	"github.com/hathordice/hathor-dice/pkg/config"
	"github.com/hathordice/hathor-dice/pkg/wallet"
)

// cliClient bundles the components a one-shot command needs: a connected
// wallet, the contract reader and a tracker scoped to the command's
// lifetime. No HTTP surface and no background polling loop.
type cliClient struct {
	cache   cache.Cache
	wallet  *wallet.Client
	session *wallet.SessionTransport
	reader  *contract.Reader
	tracker *settlement.Tracker
}

func newSession(cfg *config.Config, logger *zap.Logger) (*cliClient, error) {
	balanceCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	walletClient, err := wallet.NewClient(&wallet.ClientConfig{
		Mode:            wallet.Mode(cfg.WalletMode),
		Cache:           balanceCache,
		BalanceCacheTTL: cfg.BalanceCacheTTL,
		Logger:          logger,
		Prefs:           wallet.NewPrefs("", logger),
	})
	if err != nil {
		balanceCache.Close()
		return nil, fmt.Errorf("create wallet client: %w", err)
	}

	client := &cliClient{
		cache:  balanceCache,
		wallet: walletClient,
		reader: contract.New(&contract.Config{
			NodeURL:  cfg.NodeURL,
			Registry: cfg.ContractRegistry,
			Logger:   logger,
		}),
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = client.connect(connectCtx, cfg, logger)
	if err != nil {
		balanceCache.Close()
		return nil, err
	}

	token := "00"
	contractID, err := client.reader.ContractForToken(token)
	if err != nil {
		client.close()
		return nil, err
	}

	client.tracker, err = settlement.New(&settlement.Config{
		Wallet:       walletClient,
		Reader:       client.reader,
		ContractID:   contractID,
		Token:        token,
		PollInterval: cfg.HistoryPollInterval,
		PageSize:     cfg.HistoryPageSize,
		Logger:       logger,
	})
	if err != nil {
		client.close()
		return nil, fmt.Errorf("create tracker: %w", err)
	}

	return client, nil
}

func (c *cliClient) connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	mock := wallet.NewMockTransport(&wallet.MockConfig{
		Latency: 150 * time.Millisecond,
		Network: cfg.Network,
		Address: "WMockPlayerAddress000000000000000",
		Balance: 100_000_00,
		Logger:  logger,
	})

	switch wallet.Mode(cfg.WalletMode) {
	case wallet.ModeMock:
		return c.wallet.ConnectWithRequestFunc(ctx, mock.Request)

	case wallet.ModeSession:
		topic := os.Getenv("SESSION_TOPIC")
		if topic == "" {
			return fmt.Errorf("session wallet mode needs SESSION_TOPIC set to the approved topic")
		}

		c.session = wallet.NewSessionTransport(&wallet.SessionConfig{
			RelayURL: cfg.SessionRelayURL,
			Network:  cfg.Network,
			Logger:   logger,
		})

		err := c.session.Connect(ctx, topic)
		if err != nil {
			return err
		}

		return c.wallet.ConnectWithSession(ctx, c.session)

	case wallet.ModeSnap:
		snap := wallet.NewSnapTransport(&wallet.SnapConfig{
			SnapID: cfg.SnapID,
			Invoke: mock.Request,
			Logger: logger,
		})

		return c.wallet.ConnectWithRequestFunc(ctx, snap.Request)
	}

	return fmt.Errorf("unknown wallet mode %q", cfg.WalletMode)
}

func (c *cliClient) close() {
	c.wallet.Disconnect()
	c.cache.Close()
}
