package types

// ContractState is the dice contract's configuration as observed by this
// client. It is an immutable snapshot: a refetch replaces the whole value,
// fields are never mutated in place.
type ContractState struct {
	ContractID             string `json:"contract_id"`
	TokenID                string `json:"token_id"`
	MaxBetAmount           int64  `json:"max_bet_amount"` // smallest unit
	HouseEdgeBasisPoints   int64  `json:"house_edge_basis_points"`
	RandomBitLength        int64  `json:"random_bit_length"`
	AvailableLiquidity     int64  `json:"available_liquidity"`
	TotalLiquidityProvided int64  `json:"total_liquidity_provided"`
}

// MaxThreshold is the largest playable threshold, 2^bitLength - 1.
func (s *ContractState) MaxThreshold() int64 {
	return (int64(1) << uint(s.RandomBitLength)) - 1
}

// HistoryEntry is one transaction in the contract's append-only history as
// returned by the fullnode.
type HistoryEntry struct {
	Hash       string          `json:"hash"`
	Timestamp  int64           `json:"timestamp"`
	NCMethod   string          `json:"nc_method"`
	NCAddress  string          `json:"nc_address"`
	FirstBlock string          `json:"first_block"`
	IsVoided   bool            `json:"is_voided"`
	Events     []ContractEvent `json:"events,omitempty"`
}

// Confirmed reports whether the entry has progressed past provisional: it is
// either anchored by a confirming block or explicitly voided.
func (e *HistoryEntry) Confirmed() bool {
	return e.FirstBlock != "" || e.IsVoided
}

// ContractEvent is a settlement event attached to a confirmed entry. Data is
// the base64-encoded event payload emitted by the contract.
type ContractEvent struct {
	Data string `json:"data"`
}

// HistoryPage is one page of contract history.
type HistoryPage struct {
	Entries []HistoryEntry `json:"history"`
	HasMore bool           `json:"has_more"`
}

// SettlementEvent is the decoded payload of a bet settlement event.
type SettlementEvent struct {
	LuckyNumber int64  `json:"lucky_number"`
	Payout      int64  `json:"payout"`
	Player      string `json:"player,omitempty"`
}
