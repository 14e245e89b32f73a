package httpserver

import (
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// BetSource is the read-only view of the settlement tracker the HTTP API
// serves. The tracker keeps the authoritative copies; this surface only
// sees value snapshots.
type BetSource interface {
	Bets() []types.Bet
	State() *types.ContractState
}

// BetsHandler serves the bet list and contract state endpoints.
type BetsHandler struct {
	source BetSource
	logger *zap.Logger
}

// NewBetsHandler creates a bets API handler.
func NewBetsHandler(source BetSource, logger *zap.Logger) *BetsHandler {
	return &BetsHandler{
		source: source,
		logger: logger,
	}
}

// HandleBets serves all tracked bets, pending first, settled by descending
// settlement time.
func (h *BetsHandler) HandleBets(w http.ResponseWriter, r *http.Request) {
	bets := h.source.Bets()

	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(map[string]any{
		"bets":  bets,
		"count": len(bets),
	})
	if err != nil {
		h.logger.Warn("encode-bets-response-failed", zap.Error(err))
	}
}

// HandleState serves the current contract state snapshot.
func (h *BetsHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	state := h.source.State()
	if state == nil {
		http.Error(w, `{"error": "contract state not loaded"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(state)
	if err != nil {
		h.logger.Warn("encode-state-response-failed", zap.Error(err))
	}
}
