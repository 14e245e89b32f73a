package app

import (
	"context"
	"sync"

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

// App is the main application orchestrator: it owns the wallet session, the
// contract reader, the settlement tracker and the HTTP surface, and wires
// their lifecycles together.
type App struct {
	cfg           *config.Config
	opts          *Options
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	walletClient  *wallet.Client
	session       *wallet.SessionTransport
	reader        *contract.Reader
	tracker       *settlement.Tracker
	breaker       *circuitbreaker.BankrollCircuitBreaker
	journal       storage.Storage
	balanceCache  cache.Cache
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	Token        string // settlement token, defaults to HTR ("00")
	SessionTopic string // required for session wallet mode
}
