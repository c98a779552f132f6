package distribute

import (
	"math/bits"

	"github.com/solroute/feeroute-go/policy"
)

// EligibleBps returns min(policyBps, floor(lockedTotal*10000/y0)). A zero
// y0 collapses the locked fraction to zero; lockedTotal above y0 clamps
// at 10000.
func EligibleBps(policyBps uint16, lockedTotal, y0 uint64) uint16 {
	if y0 == 0 {
		return 0
	}
	if lockedTotal >= y0 {
		return min(policyBps, policy.MaxFeeShareBps)
	}
	hi, lo := bits.Mul64(lockedTotal, policy.MaxFeeShareBps)
	frac, _ := bits.Div64(hi, lo, y0)
	if uint64(policyBps) < frac {
		return policyBps
	}
	return uint16(frac)
}

// InvestorFee returns floor(claimed*bps/10000) with a 128-bit
// intermediate.
func InvestorFee(claimed uint64, bps uint16) uint64 {
	hi, lo := bits.Mul64(claimed, uint64(bps))
	fee, _ := bits.Div64(hi, lo, policy.MaxFeeShareBps)
	return fee
}

// ApplyDailyCap limits fee to what remains of the daily cap after the
// amount already distributed today. A zero cap is unlimited.
func ApplyDailyCap(fee, cap, distributedToday uint64) uint64 {
	if cap == 0 {
		return fee
	}
	if distributedToday >= cap {
		return 0
	}
	if remaining := cap - distributedToday; fee > remaining {
		return remaining
	}
	return fee
}

// StakeholderPayout returns floor(fee*locked/lockedTotal) with a 128-bit
// intermediate. A zero lockedTotal yields zero.
func StakeholderPayout(locked, fee, lockedTotal uint64) (uint64, error) {
	if lockedTotal == 0 || locked == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(locked, fee)
	if hi >= lockedTotal {
		return 0, ErrOverflow
	}
	payout, _ := bits.Div64(hi, lo, lockedTotal)
	return payout, nil
}

// addU64 is an overflow-checked addition.
func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// subSat is a saturating subtraction.
func subSat(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
