package odds

import (
	"math"
	"testing"

	"github.com/hathordice/hathor-dice/pkg/types"
)

func TestWinChanceToThreshold(t *testing.T) {
	tests := []struct {
		name      string
		percent   float64
		bitLength int64
		expected  int64
	}{
		{name: "fifty-percent-16bit", percent: 50, bitLength: 16, expected: 32768},
		{name: "hundred-percent-16bit", percent: 100, bitLength: 16, expected: 65536},
		{name: "zero-percent-16bit", percent: 0, bitLength: 16, expected: 0},
		{name: "one-percent-16bit", percent: 1, bitLength: 16, expected: 655},
		{name: "fifty-percent-20bit", percent: 50, bitLength: 20, expected: 524288},
		{name: "quarter-percent-12bit", percent: 25, bitLength: 12, expected: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WinChanceToThreshold(tt.percent, tt.bitLength)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestThresholdToWinChanceBounds(t *testing.T) {
	if got := ThresholdToWinChance(0, 16); got != 0 {
		t.Errorf("expected 0 at threshold 0, got %f", got)
	}

	if got := ThresholdToWinChance(65536, 16); got != 100 {
		t.Errorf("expected exactly 100 at full threshold, got %f", got)
	}
}

func TestRoundTripDriftBounded(t *testing.T) {
	// Floor in WinChanceToThreshold loses at most 100/2^bitLength
	// percentage points per round trip.
	for _, bitLength := range []int64{12, 16, 20} {
		maxDrift := 100 / float64(int64(1)<<uint(bitLength))

		for chance := 0.0; chance <= 100.0; chance += 0.37 {
			threshold := WinChanceToThreshold(chance, bitLength)
			back := ThresholdToWinChance(threshold, bitLength)

			if diff := math.Abs(back - chance); diff > maxDrift {
				t.Fatalf("bitLength=%d chance=%f: drift %f exceeds %f",
					bitLength, chance, diff, maxDrift)
			}
		}
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		threshold int64
		bitLength int64
		edgeBPS   int64
		expected  float64
		tolerance float64
	}{
		{name: "coin-flip-2pct-edge", threshold: 32768, bitLength: 16, edgeBPS: 200, expected: 1.96, tolerance: 1e-9},
		{name: "coin-flip-no-edge", threshold: 32768, bitLength: 16, edgeBPS: 0, expected: 2.0, tolerance: 1e-9},
		{name: "long-shot", threshold: 656, bitLength: 16, edgeBPS: 200, expected: 97.9043902439, tolerance: 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Multiplier(tt.threshold, tt.bitLength, tt.edgeBPS)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}

	t.Run("zero-threshold-is-infinite", func(t *testing.T) {
		if got := Multiplier(0, 16, 200); !math.IsInf(got, 1) {
			t.Errorf("expected +Inf, got %f", got)
		}
	})
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		threshold int64
		bitLength int64
		edgeBPS   int64
		expected  int64
	}{
		{name: "coin-flip-2pct-edge", amount: 1000, threshold: 32768, bitLength: 16, edgeBPS: 200, expected: 1960},
		{name: "fair-coin-flip-doubles", amount: 1000, threshold: 32768, bitLength: 16, edgeBPS: 0, expected: 2000},
		{name: "zero-threshold", amount: 1000, threshold: 0, bitLength: 16, edgeBPS: 200, expected: 0},
		{name: "large-stake-no-overflow", amount: 5_000_000_000_00, threshold: 655, bitLength: 20, edgeBPS: 100, expected: 792_435_297_709_923},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Payout(tt.amount, tt.threshold, tt.bitLength, tt.edgeBPS)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestPayoutMonotoneInThreshold(t *testing.T) {
	prev := int64(math.MaxInt64)

	for threshold := int64(1); threshold <= 65536; threshold += 997 {
		payout := Payout(100000, threshold, 16, 200)
		if payout > prev {
			t.Fatalf("payout increased at threshold %d: %d > %d", threshold, payout, prev)
		}
		prev = payout
	}
}

func TestPayoutNeverExceedsFairOdds(t *testing.T) {
	// With any positive edge the payout is strictly below fair odds;
	// equality holds only at edge 0.
	amount := int64(123456)
	bitLength := int64(16)

	for _, threshold := range []int64{1, 655, 32768, 65535} {
		fair := Payout(amount, threshold, bitLength, 0)

		for _, edge := range []int64{1, 50, 200, 1000} {
			got := Payout(amount, threshold, bitLength, edge)
			if got >= fair {
				t.Errorf("threshold=%d edge=%d: payout %d not below fair %d",
					threshold, edge, got, fair)
			}
		}
	}
}

func TestValidateBet(t *testing.T) {
	state := &types.ContractState{
		ContractID:           "00abc",
		TokenID:              "00",
		MaxBetAmount:         100_000,
		HouseEdgeBasisPoints: 200,
		RandomBitLength:      16,
		AvailableLiquidity:   1_000_000,
	}

	tests := []struct {
		name      string
		amount    int64
		threshold int64
		wantErr   bool
	}{
		{name: "valid-bet", amount: 1000, threshold: 32768, wantErr: false},
		{name: "zero-amount", amount: 0, threshold: 32768, wantErr: true},
		{name: "negative-amount", amount: -5, threshold: 32768, wantErr: true},
		{name: "amount-over-max", amount: 100_001, threshold: 32768, wantErr: true},
		{name: "threshold-zero", amount: 1000, threshold: 0, wantErr: true},
		{name: "threshold-over-max", amount: 1000, threshold: 65536, wantErr: true},
		{name: "payout-exceeds-liquidity", amount: 100_000, threshold: 655, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBet(tt.amount, tt.threshold, state)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantErr {
				walletErr, ok := err.(*types.WalletError)
				if !ok {
					t.Fatalf("expected *types.WalletError, got %T", err)
				}
				if walletErr.Code != types.ErrValidation {
					t.Errorf("expected code %s, got %s", types.ErrValidation, walletErr.Code)
				}
			}
		})
	}
}
