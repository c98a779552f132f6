// Package policy holds the per-vault distribution configuration: the
// stakeholder fee share, payout caps and thresholds, the currency
// identities, and the total allocation constant used for the
// locked-fraction computation.
package policy

import (
	"github.com/gagliardetto/solana-go"
)

const (
	// MaxFeeShareBps is the upper bound for the stakeholder fee share.
	MaxFeeShareBps = 10000

	// MaxSeedLen bounds the vault seed length used as the record key.
	MaxSeedLen = 64
)

// Policy is the per-vault distribution configuration. Created once, then
// mutated only through partial updates (Apply).
type Policy struct {
	VaultSeed string

	// Authority recorded at creation. Key management and signature checks
	// live outside this library; the field exists for audit trails.
	Authority solana.PublicKey

	FeeShareBps       uint16 // stakeholder share of claimed fees, 0-10000
	DailyCapLamports  uint64 // cap on amount distributed per day, 0 = unlimited
	MinPayoutLamports uint64 // payouts below this fold into dust
	FundMissingOwner  bool   // fund missing payout destinations instead of skipping them

	// Y0TotalAllocation is the fixed total allocation used as the
	// denominator of the locked-fraction computation. Zero collapses the
	// stakeholder share to 0 bps and routes everything to the beneficiary.
	Y0TotalAllocation uint64

	QuoteMint     solana.PublicKey // designated fee currency
	BaseMint      solana.PublicKey // disallowed counterpart
	Pool          solana.PublicKey // backing pool
	CreatorPayout solana.PublicKey // beneficiary for the day-close remainder

	CreatedAt uint64
	UpdatedAt uint64
}

// Validate checks that the policy is internally consistent. It returns the
// first error encountered, or nil if valid.
func (p *Policy) Validate() error {
	if len(p.VaultSeed) == 0 || len(p.VaultSeed) > MaxSeedLen {
		return ErrInvalidSeed
	}
	if p.FeeShareBps > MaxFeeShareBps {
		return ErrInvalidFeeShare
	}
	if p.QuoteMint.IsZero() || p.BaseMint.IsZero() {
		return ErrMissingMint
	}
	if p.QuoteMint == p.BaseMint {
		return ErrSameMints
	}
	if p.Authority.IsZero() {
		return ErrMissingAuthority
	}
	if p.Pool.IsZero() {
		return ErrMissingPool
	}
	if p.CreatorPayout.IsZero() {
		return ErrMissingCreatorPayout
	}
	return nil
}

// Update carries optional replacement values for the mutable policy
// fields. Nil fields are left unchanged.
type Update struct {
	FeeShareBps       *uint16
	DailyCapLamports  *uint64
	MinPayoutLamports *uint64
	FundMissingOwner  *bool
	Y0TotalAllocation *uint64
	CreatorPayout     *solana.PublicKey
}

// Apply copies the non-nil fields of u into the policy. It reports whether
// anything changed. The policy is untouched when an error is returned.
func (p *Policy) Apply(u Update) (bool, error) {
	if u.FeeShareBps != nil && *u.FeeShareBps > MaxFeeShareBps {
		return false, ErrInvalidFeeShare
	}
	if u.CreatorPayout != nil && u.CreatorPayout.IsZero() {
		return false, ErrMissingCreatorPayout
	}

	changed := false
	if u.FeeShareBps != nil {
		p.FeeShareBps = *u.FeeShareBps
		changed = true
	}
	if u.DailyCapLamports != nil {
		p.DailyCapLamports = *u.DailyCapLamports
		changed = true
	}
	if u.MinPayoutLamports != nil {
		p.MinPayoutLamports = *u.MinPayoutLamports
		changed = true
	}
	if u.FundMissingOwner != nil {
		p.FundMissingOwner = *u.FundMissingOwner
		changed = true
	}
	if u.Y0TotalAllocation != nil {
		p.Y0TotalAllocation = *u.Y0TotalAllocation
		changed = true
	}
	if u.CreatorPayout != nil {
		p.CreatorPayout = *u.CreatorPayout
		changed = true
	}
	return changed, nil
}
