package types

import "time"

// BetResult is the lifecycle state of a wager.
type BetResult string

const (
	BetPending BetResult = "pending"
	BetWin     BetResult = "win"
	BetLose    BetResult = "lose"
	BetFailed  BetResult = "failed"
)

// Terminal reports whether the result is final. Once terminal, a bet is
// immutable.
func (r BetResult) Terminal() bool {
	return r == BetWin || r == BetLose || r == BetFailed
}

// Bet is one wager from submission to settlement. The ID is the settlement
// transaction hash assigned by the ledger, never by this client; it is the
// only join key used during reconciliation.
type Bet struct {
	ID              string    `json:"id"`
	Player          string    `json:"player"`
	Amount          int64     `json:"amount"` // stake in the token's smallest unit
	Threshold       int64     `json:"threshold"`
	Result          BetResult `json:"result"`
	Payout          int64     `json:"payout"`           // 0 until terminal, then the decoded value verbatim
	PotentialPayout int64     `json:"potential_payout"` // advisory estimate, computed at submission
	LuckyNumber     *int64    `json:"lucky_number,omitempty"`
	IsYourBet       bool      `json:"is_your_bet"`
	Error           string    `json:"error,omitempty"`
	PlacedAt        time.Time `json:"placed_at"`
	SettledAt       time.Time `json:"settled_at"`
}
