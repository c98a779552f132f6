// Package position registers the honorary fee position backing a vault
// and enforces the quote-only composition rule before anything is
// persisted.
package position

import (
	"github.com/gagliardetto/solana-go"
)

// MaxSeedLen bounds the vault seed length used as the record key.
const MaxSeedLen = 64

// Position is the per-vault fee position record. Created once; never
// mutated afterwards.
type Position struct {
	VaultSeed string

	Position  solana.PublicKey // fee-accruing position reference
	Pool      solana.PublicKey // backing pool
	QuoteMint solana.PublicKey // designated fee currency

	TickLower int32
	TickUpper int32

	// VerifiedQuoteOnly records that the composition check passed at
	// registration. The engine refuses to distribute for a position
	// without it.
	VerifiedQuoteOnly bool

	CreatedAt uint64
}

// PoolInfo is the caller-supplied report of the pool's two currencies.
type PoolInfo struct {
	Address    solana.PublicKey
	TokenAMint solana.PublicKey
	TokenBMint solana.PublicKey
}

// VerifyQuoteOnly checks that a position with the given tick range on the
// given pool can only ever accrue fees in the quote currency. The quote
// mint must be one of the pool's two mints; if it is token B the range
// must sit entirely above the active price, if token A entirely below.
func VerifyQuoteOnly(pool PoolInfo, tickLower, tickUpper int32, quoteMint solana.PublicKey) error {
	if tickLower >= tickUpper {
		return ErrInvalidTickRange
	}
	switch quoteMint {
	case pool.TokenBMint:
		if tickLower <= 0 {
			return ErrQuoteOnlyNotGuaranteed
		}
	case pool.TokenAMint:
		if tickUpper >= 0 {
			return ErrQuoteOnlyNotGuaranteed
		}
	default:
		return ErrQuoteMintNotInPool
	}
	return nil
}
