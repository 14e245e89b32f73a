// Package settlement owns the lifecycle of locally-issued bets: it submits
// them through the wallet transport and reconciles them against the
// contract's polled transaction history until each reaches exactly one
// terminal state.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/internal/odds"
	"github.com/hathordice/hathor-dice/internal/storage"
	"github.com/hathordice/hathor-dice/pkg/types"
)

// betMethod is the nano contract method that places a wager.
const betMethod = "bet"

// maxPollPages bounds how many history pages one poll cycle follows.
const maxPollPages = 5

// Wallet is the slice of the wallet client the tracker submits through.
type Wallet interface {
	ConnectedAddress() string
	SendNanoContractTx(ctx context.Context, params *types.SendNanoContractTxParams) (*types.SendNanoContractTxResult, error)
}

// Breaker gates bet placement on bankroll health. Optional.
type Breaker interface {
	IsEnabled() bool
	RecordBet(amount int64)
}

// NodeReader is the slice of the contract reader the tracker polls.
type NodeReader interface {
	FetchState(ctx context.Context, contractID string) (*types.ContractState, error)
	FetchHistory(ctx context.Context, contractID string, count int, after string) (*types.HistoryPage, error)
}

// Tracker reconciles pending bets against the contract's append-only
// history. It is the exclusive owner of the authoritative Bet copies;
// consumers get value copies only.
type Tracker struct {
	wallet       Wallet
	reader       NodeReader
	journal      storage.Storage
	breaker      Breaker
	contractID   string
	token        string
	pollInterval time.Duration
	pageSize     int
	logger       *zap.Logger

	mu      sync.RWMutex
	state   *types.ContractState
	bets    map[string]*types.Bet
	settled chan types.Bet
}

// Config holds tracker configuration.
type Config struct {
	Wallet       Wallet
	Reader       NodeReader
	Journal      storage.Storage
	Breaker      Breaker
	ContractID   string
	Token        string
	PollInterval time.Duration
	PageSize     int
	Logger       *zap.Logger
}

// New creates a settlement tracker.
func New(cfg *Config) (*Tracker, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Wallet == nil || cfg.Reader == nil {
		return nil, errors.New("wallet and reader cannot be nil")
	}

	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	if cfg.PageSize <= 0 {
		return nil, errors.New("page size must be positive")
	}

	return &Tracker{
		wallet:       cfg.Wallet,
		reader:       cfg.Reader,
		journal:      cfg.Journal,
		breaker:      cfg.Breaker,
		contractID:   cfg.ContractID,
		token:        cfg.Token,
		pollInterval: cfg.PollInterval,
		pageSize:     cfg.PageSize,
		logger:       cfg.Logger,
		bets:         make(map[string]*types.Bet),
		settled:      make(chan types.Bet, 64),
	}, nil
}

// RefreshState refetches the contract configuration and replaces the
// snapshot wholesale.
func (t *Tracker) RefreshState(ctx context.Context) (*types.ContractState, error) {
	state, err := t.reader.FetchState(ctx, t.contractID)
	if err != nil {
		return nil, fmt.Errorf("fetch contract state: %w", err)
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	return state, nil
}

// State returns the current contract snapshot, nil before the first fetch.
func (t *Tracker) State() *types.ContractState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.state
}

// PlaceBet validates and submits one wager. The returned bet is pending,
// keyed by the ledger-assigned transaction hash; a failed submission never
// produces a Bet record.
func (t *Tracker) PlaceBet(ctx context.Context, amount int64, threshold int64) (types.Bet, error) {
	t.mu.RLock()
	state := t.state
	t.mu.RUnlock()

	if state == nil {
		return types.Bet{}, types.NewWalletError(types.ErrContractUnavailable, "",
			"contract state not loaded")
	}

	err := odds.ValidateBet(amount, threshold, state)
	if err != nil {
		return types.Bet{}, err
	}

	if t.breaker != nil && !t.breaker.IsEnabled() {
		return types.Bet{}, types.NewWalletError(types.ErrValidation, "",
			"bet placement paused, bankroll below safety threshold")
	}

	player := t.wallet.ConnectedAddress()

	result, err := t.wallet.SendNanoContractTx(ctx, &types.SendNanoContractTxParams{
		NCID:   t.contractID,
		Method: betMethod,
		Args:   []any{player, t.token, threshold},
		Actions: []types.NanoContractAction{
			{Type: types.ActionDeposit, Amount: amount, Token: t.token},
		},
		PushTx: true,
	})
	if err != nil {
		return types.Bet{}, err
	}

	bet := &types.Bet{
		ID:              result.Hash,
		Player:          player,
		Amount:          amount,
		Threshold:       threshold,
		Result:          types.BetPending,
		PotentialPayout: odds.Payout(amount, threshold, state.RandomBitLength, state.HouseEdgeBasisPoints),
		IsYourBet:       true,
		PlacedAt:        time.Unix(result.Timestamp, 0),
	}

	t.mu.Lock()
	t.bets[bet.ID] = bet
	t.mu.Unlock()

	if t.breaker != nil {
		t.breaker.RecordBet(amount)
	}

	BetsPlacedTotal.Inc()
	PendingBets.Inc()

	t.logger.Info("bet-placed",
		zap.String("tx-hash", bet.ID),
		zap.Int64("amount", amount),
		zap.Int64("threshold", threshold),
		zap.Int64("potential-payout", bet.PotentialPayout))

	return *bet, nil
}

// Run starts the reconciliation polling loop (blocking). The loop is
// cancelled through ctx; cancellation on teardown prevents an orphaned
// timer from mutating state after the owning scope is gone.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info("settlement-tracker-starting",
		zap.Duration("poll-interval", t.pollInterval),
		zap.String("contract-id", t.contractID))

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	pollErr := t.Poll(ctx)
	if pollErr != nil {
		t.logger.Error("initial-poll-failed", zap.Error(pollErr))
		PollErrorsTotal.Inc()
	}

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("settlement-tracker-stopping")
			return ctx.Err()
		case <-ticker.C:
			pollErr = t.Poll(ctx)
			if pollErr != nil {
				t.logger.Error("poll-failed", zap.Error(pollErr))
				PollErrorsTotal.Inc()
			}
		}
	}
}

// Poll performs one reconciliation cycle: fetch history snapshots and match
// every locally-tracked pending bet strictly by transaction id. The
// snapshot is never mutated; reconciliation is pure matching against the
// in-memory pending set.
func (t *Tracker) Poll(ctx context.Context) error {
	start := time.Now()
	defer func() {
		PollDuration.Observe(time.Since(start).Seconds())
	}()

	cursor := ""

	for page := 0; page < maxPollPages; page++ {
		history, err := t.reader.FetchHistory(ctx, t.contractID, t.pageSize, cursor)
		if err != nil {
			return fmt.Errorf("fetch history page %d: %w", page, err)
		}

		for i := range history.Entries {
			t.reconcile(&history.Entries[i])
		}

		if !history.HasMore || len(history.Entries) == 0 {
			break
		}

		if !t.hasPending() {
			break
		}

		cursor = history.Entries[len(history.Entries)-1].Hash
	}

	t.logger.Debug("poll-complete",
		zap.Int("tracked-bets", t.trackedCount()),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// reconcile applies one history entry to the tracked set. Matching is
// strictly by transaction id; amounts and timestamps are never used as join
// keys. The one-way transition guard makes duplicate observations no-ops.
func (t *Tracker) reconcile(entry *types.HistoryEntry) {
	if entry.NCMethod != betMethod {
		return
	}

	if !entry.Confirmed() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bet, tracked := t.bets[entry.Hash]
	if !tracked {
		t.ingestForeign(entry)
		return
	}

	if bet.Result.Terminal() {
		// Already settled on a previous cycle; duplicate observation.
		return
	}

	t.settle(bet, entry)
}

// settle transitions a pending bet to its terminal state. Caller holds the
// write lock.
func (t *Tracker) settle(bet *types.Bet, entry *types.HistoryEntry) {
	bet.SettledAt = time.Unix(entry.Timestamp, 0)

	if entry.IsVoided {
		bet.Result = types.BetFailed
		bet.Payout = 0
	} else {
		event, err := decodeSettlementEvent(entry)
		if err != nil {
			// Absorbed: the bet must still reach a terminal state once the
			// ledger confirms it, just without the optional decoration.
			DecodeFailuresTotal.Inc()
			t.logger.Warn("settlement-event-undecodable",
				zap.String("tx-hash", bet.ID),
				zap.Error(err))

			bet.Result = types.BetLose
			bet.Payout = 0
			bet.Error = "settlement event undecodable"
		} else {
			lucky := event.LuckyNumber
			bet.LuckyNumber = &lucky
			// The decoded payout is taken verbatim, never recomputed: the
			// client-side figure is only ever a pre-settlement estimate.
			bet.Payout = event.Payout

			if lucky <= bet.Threshold {
				bet.Result = types.BetWin
			} else {
				bet.Result = types.BetLose
			}
		}
	}

	PendingBets.Dec()
	BetsSettledTotal.WithLabelValues(string(bet.Result)).Inc()

	t.logger.Info("bet-settled",
		zap.String("tx-hash", bet.ID),
		zap.String("result", string(bet.Result)),
		zap.Int64("payout", bet.Payout))

	t.journalSettlement(bet)
	t.notify(*bet)
}

// ingestForeign records a confirmed bet placed by another player, marked
// settled immediately. Its threshold is unknown at this boundary, so the
// result is derived from the decoded payout. Caller holds the write lock.
func (t *Tracker) ingestForeign(entry *types.HistoryEntry) {
	bet := &types.Bet{
		ID:        entry.Hash,
		Player:    entry.NCAddress,
		IsYourBet: false,
		PlacedAt:  time.Unix(entry.Timestamp, 0),
		SettledAt: time.Unix(entry.Timestamp, 0),
	}

	if entry.IsVoided {
		bet.Result = types.BetFailed
	} else {
		event, err := decodeSettlementEvent(entry)
		if err != nil {
			DecodeFailuresTotal.Inc()
			bet.Result = types.BetLose
			bet.Error = "settlement event undecodable"
		} else {
			lucky := event.LuckyNumber
			bet.LuckyNumber = &lucky
			bet.Payout = event.Payout

			if event.Payout > 0 {
				bet.Result = types.BetWin
			} else {
				bet.Result = types.BetLose
			}
		}
	}

	t.bets[bet.ID] = bet
	t.pruneSettledLocked()
}

// maxTrackedSettled bounds how many settled bets stay in memory; pending
// bets are never pruned.
const maxTrackedSettled = 500

// pruneSettledLocked evicts the oldest settled bets beyond the retention
// bound. Caller holds the write lock.
func (t *Tracker) pruneSettledLocked() {
	var settled []*types.Bet

	for _, bet := range t.bets {
		if bet.Result.Terminal() {
			settled = append(settled, bet)
		}
	}

	if len(settled) <= maxTrackedSettled {
		return
	}

	sort.Slice(settled, func(i, j int) bool {
		return settled[i].SettledAt.Before(settled[j].SettledAt)
	})

	for _, bet := range settled[:len(settled)-maxTrackedSettled] {
		delete(t.bets, bet.ID)
	}
}

// journalSettlement records a terminal transition in the write-only
// journal. Journal failures never block settlement.
func (t *Tracker) journalSettlement(bet *types.Bet) {
	if t.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := t.journal.RecordSettlement(ctx, bet)
	if err != nil {
		t.logger.Warn("journal-write-failed",
			zap.String("tx-hash", bet.ID),
			zap.Error(err))
	}
}

// notify surfaces a terminal bet on the settled channel without ever
// blocking the poll cycle.
func (t *Tracker) notify(bet types.Bet) {
	if !bet.IsYourBet {
		return
	}

	select {
	case t.settled <- bet:
	default:
		t.logger.Warn("settled-channel-full", zap.String("tx-hash", bet.ID))
	}
}

// Settled returns the channel carrying this session's terminal bets.
func (t *Tracker) Settled() <-chan types.Bet {
	return t.settled
}

// Bets returns value copies of all tracked bets: pending first (newest
// placed first), then settled by descending settlement time.
func (t *Tracker) Bets() []types.Bet {
	t.mu.RLock()
	defer t.mu.RUnlock()

	bets := make([]types.Bet, 0, len(t.bets))
	for _, bet := range t.bets {
		bets = append(bets, *bet)
	}

	sort.Slice(bets, func(i, j int) bool {
		iPending := !bets[i].Result.Terminal()
		jPending := !bets[j].Result.Terminal()

		if iPending != jPending {
			return iPending
		}

		if iPending {
			return bets[i].PlacedAt.After(bets[j].PlacedAt)
		}

		return bets[i].SettledAt.After(bets[j].SettledAt)
	})

	return bets
}

// Bet returns a value copy of one tracked bet by transaction hash.
func (t *Tracker) Bet(id string) (types.Bet, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	bet, found := t.bets[id]
	if !found {
		return types.Bet{}, false
	}

	return *bet, true
}

func (t *Tracker) hasPending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, bet := range t.bets {
		if !bet.Result.Terminal() {
			return true
		}
	}

	return false
}

func (t *Tracker) trackedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.bets)
}
