package position

import "errors"

var (
	// ErrInvalidTickRange indicates a tick range with lower >= upper.
	ErrInvalidTickRange = errors.New("position: tick lower must be below tick upper")

	// ErrQuoteOnlyNotGuaranteed indicates a tick range that can accrue
	// fees in the base currency.
	ErrQuoteOnlyNotGuaranteed = errors.New("position: tick range cannot guarantee quote-only fees")

	// ErrQuoteMintNotInPool indicates a quote mint that is neither of the
	// pool's two mints.
	ErrQuoteMintNotInPool = errors.New("position: quote mint is not a pool mint")

	// ErrPoolMismatch indicates a pool that differs from the one the
	// vault's policy names.
	ErrPoolMismatch = errors.New("position: pool does not match policy pool")

	// ErrInvalidSeed indicates an empty or oversized vault seed.
	ErrInvalidSeed = errors.New("position: vault seed must be 1-64 bytes")

	// ErrInvalidData indicates a malformed serialized position record.
	ErrInvalidData = errors.New("position: invalid position record data")

	// ErrNotFound indicates no position record exists for the vault.
	ErrNotFound = errors.New("position: not found")

	// ErrExists indicates a position record already exists for the vault.
	ErrExists = errors.New("position: already exists")
)
