// Package odds converts between the three equivalent representations of a
// dice bet's odds (threshold, win chance, multiplier) and computes payouts
// consistent with the contract's integer settlement formula.
package odds

import (
	"math"
	"math/big"
)

const basisPointsDenominator = 10000

// drawSpace returns 2^bitLength, the size of the contract's random draw
// space.
func drawSpace(bitLength int64) int64 {
	return int64(1) << uint(bitLength)
}

// ThresholdToWinChance converts a threshold to a win chance percentage.
// Domain: threshold in [0, 2^bitLength]. Returns exactly 100 at the upper
// bound and 0 at zero.
func ThresholdToWinChance(threshold int64, bitLength int64) float64 {
	return float64(threshold) / float64(drawSpace(bitLength)) * 100
}

// WinChanceToThreshold converts a win chance percentage to a threshold,
// flooring. The round trip through ThresholdToWinChance drifts by at most
// 100/2^bitLength percentage points; that loss is intentional and bounded,
// not a bug.
func WinChanceToThreshold(percent float64, bitLength int64) int64 {
	return int64(math.Floor(percent * float64(drawSpace(bitLength)) / 100))
}

// Multiplier computes the payout-per-unit-staked if the bet wins, net of
// house edge. Returns +Inf at threshold 0; callers clamp threshold >= 1
// before display or submission.
func Multiplier(threshold int64, bitLength int64, houseEdgeBPS int64) float64 {
	if threshold == 0 {
		return math.Inf(1)
	}

	edge := 1 - float64(houseEdgeBPS)/basisPointsDenominator

	return float64(drawSpace(bitLength)) / float64(threshold) * edge
}

// Payout computes the settled amount for a winning bet:
//
//	floor(amount * 2^bitLength * (10000 - edge) / (10000 * threshold))
//
// Integer arithmetic throughout so the client-side estimate matches the
// contract's settlement exactly. Rounding always floors; the house keeps the
// remainder. Returns 0 when threshold is 0.
func Payout(amount int64, threshold int64, bitLength int64, houseEdgeBPS int64) int64 {
	if threshold <= 0 {
		return 0
	}

	// amount * 2^b * 10000 overflows int64 for realistic stakes, so the
	// intermediate goes through big.Int.
	numerator := new(big.Int).SetInt64(amount)
	numerator.Mul(numerator, new(big.Int).SetInt64(drawSpace(bitLength)))
	numerator.Mul(numerator, new(big.Int).SetInt64(basisPointsDenominator-houseEdgeBPS))

	denominator := new(big.Int).SetInt64(basisPointsDenominator)
	denominator.Mul(denominator, new(big.Int).SetInt64(threshold))

	return new(big.Int).Quo(numerator, denominator).Int64()
}
