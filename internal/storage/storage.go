package storage

import (
	"context"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// Storage is a write-only sink for settled bets. It is a journal, never a
// source of truth: nothing in the client ever reads it back.
type Storage interface {
	// RecordSettlement records a bet's terminal state.
	RecordSettlement(ctx context.Context, bet *types.Bet) error

	// Close closes the storage connection.
	Close() error
}
