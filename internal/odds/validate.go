package odds

import (
	"fmt"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// ValidateBet checks a prospective bet against the current contract state
// before any transport call is attempted. The contract enforces the same
// limits authoritatively; failing here just saves the round trip.
func ValidateBet(amount int64, threshold int64, state *types.ContractState) error {
	if amount <= 0 {
		return types.NewWalletError(types.ErrValidation, "",
			fmt.Sprintf("bet amount must be positive, got %d", amount))
	}

	if threshold < 1 || threshold > state.MaxThreshold() {
		return types.NewWalletError(types.ErrValidation, "",
			fmt.Sprintf("threshold %d outside playable range [1, %d]", threshold, state.MaxThreshold()))
	}

	if amount > state.MaxBetAmount {
		return types.NewWalletError(types.ErrValidation, "",
			fmt.Sprintf("bet amount %d exceeds contract max %d", amount, state.MaxBetAmount))
	}

	payout := Payout(amount, threshold, state.RandomBitLength, state.HouseEdgeBasisPoints)
	if payout > state.AvailableLiquidity {
		return types.NewWalletError(types.ErrValidation, "",
			fmt.Sprintf("potential payout %d exceeds available liquidity %d", payout, state.AvailableLiquidity))
	}

	return nil
}
