package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/internal/circuitbreaker"
	"github.com/hathordice/hathor-dice/internal/contract"
	"github.com/hathordice/hathor-dice/internal/settlement"
	"github.com/hathordice/hathor-dice/internal/storage"
	"github.com/hathordice/hathor-dice/pkg/cache"
	"github.com/hathordice/hathor-dice/pkg/config"
	"github.com/hathordice/hathor-dice/pkg/healthprobe"
	"github.com/hathordice/hathor-dice/pkg/httpserver"
	"github.com/hathordice/hathor-dice/pkg/wallet"
)

// defaultToken is the HTR native token uid.
const defaultToken = "00"

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	if opts.Token == "" {
		opts.Token = defaultToken
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	balanceCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	walletClient, session, err := setupWallet(cfg, logger, balanceCache)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup wallet: %w", err)
	}

	reader := setupReader(cfg, logger)

	journal, err := setupJournal(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup journal: %w", err)
	}

	breaker, err := setupBreaker(cfg, logger, walletClient, opts.Token)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup circuit breaker: %w", err)
	}

	tracker, err := setupTracker(cfg, logger, walletClient, reader, journal, breaker, opts.Token)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup tracker: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, healthChecker, tracker)

	return &App{
		cfg:           cfg,
		opts:          opts,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		walletClient:  walletClient,
		session:       session,
		reader:        reader,
		tracker:       tracker,
		breaker:       breaker,
		journal:       journal,
		balanceCache:  balanceCache,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New(
		healthprobe.ComponentWallet,
		healthprobe.ComponentFullnode,
		healthprobe.ComponentTracker,
	)
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

// setupWallet constructs the wallet client and, in session mode, the relay
// transport. Transports are attached during startup, not here.
func setupWallet(cfg *config.Config, logger *zap.Logger, balanceCache cache.Cache) (*wallet.Client, *wallet.SessionTransport, error) {
	prefs := wallet.NewPrefs("", logger)

	client, err := wallet.NewClient(&wallet.ClientConfig{
		Mode:            wallet.Mode(cfg.WalletMode),
		Cache:           balanceCache,
		BalanceCacheTTL: cfg.BalanceCacheTTL,
		Logger:          logger,
		Prefs:           prefs,
	})
	if err != nil {
		return nil, nil, err
	}

	var session *wallet.SessionTransport
	if cfg.WalletMode == "session" {
		session = wallet.NewSessionTransport(&wallet.SessionConfig{
			RelayURL: cfg.SessionRelayURL,
			Network:  cfg.Network,
			Logger:   logger,
		})
	}

	return client, session, nil
}

func setupReader(cfg *config.Config, logger *zap.Logger) *contract.Reader {
	return contract.New(&contract.Config{
		NodeURL:  cfg.NodeURL,
		Registry: cfg.ContractRegistry,
		Logger:   logger,
	})
}

func setupJournal(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupBreaker(
	cfg *config.Config,
	logger *zap.Logger,
	walletClient *wallet.Client,
	token string,
) (*circuitbreaker.BankrollCircuitBreaker, error) {
	return circuitbreaker.New(&circuitbreaker.Config{
		CheckInterval:   cfg.BreakerCheckInterval,
		BetMultiplier:   cfg.BreakerBetMultiplier,
		MinAbsolute:     cfg.BreakerMinBalance,
		HysteresisRatio: cfg.BreakerHysteresis,
		Wallet:          walletClient,
		Token:           token,
		Logger:          logger,
	})
}

func setupTracker(
	cfg *config.Config,
	logger *zap.Logger,
	walletClient *wallet.Client,
	reader *contract.Reader,
	journal storage.Storage,
	breaker *circuitbreaker.BankrollCircuitBreaker,
	token string,
) (*settlement.Tracker, error) {
	contractID, err := reader.ContractForToken(token)
	if err != nil {
		return nil, err
	}

	return settlement.New(&settlement.Config{
		Wallet:       walletClient,
		Reader:       reader,
		Journal:      journal,
		Breaker:      breaker,
		ContractID:   contractID,
		Token:        token,
		PollInterval: cfg.HistoryPollInterval,
		PageSize:     cfg.HistoryPageSize,
		Logger:       logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	tracker *settlement.Tracker,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Tracker:       tracker,
	})
}

// connectWallet attaches the configured transport to the wallet client.
func (a *App) connectWallet(ctx context.Context) error {
	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connectCancel()

	switch wallet.Mode(a.cfg.WalletMode) {
	case wallet.ModeMock:
		mock := wallet.NewMockTransport(&wallet.MockConfig{
			Latency: 150 * time.Millisecond,
			Network: a.cfg.Network,
			Address: "WMockPlayerAddress000000000000000",
			Balance: 100_000_00,
			Logger:  a.logger,
		})

		return a.walletClient.ConnectWithRequestFunc(connectCtx, mock.Request)

	case wallet.ModeSession:
		err := a.session.Connect(connectCtx, a.opts.SessionTopic)
		if err != nil {
			return err
		}

		return a.walletClient.ConnectWithSession(connectCtx, a.session)

	case wallet.ModeSnap:
		// The snap's invoke entry point lives in the browser extension
		// host; outside it, the snap envelope is exercised through the
		// mock invoker.
		mock := wallet.NewMockTransport(&wallet.MockConfig{
			Latency: 150 * time.Millisecond,
			Network: a.cfg.Network,
			Address: "WMockPlayerAddress000000000000000",
			Balance: 100_000_00,
			Logger:  a.logger,
		})

		snap := wallet.NewSnapTransport(&wallet.SnapConfig{
			SnapID: a.cfg.SnapID,
			Invoke: mock.Request,
			Logger: a.logger,
		})

		return a.walletClient.ConnectWithRequestFunc(connectCtx, snap.Request)
	}

	return fmt.Errorf("unknown wallet mode %q", a.cfg.WalletMode)
}
