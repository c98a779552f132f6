package policy

import "errors"

var (
	// ErrInvalidFeeShare indicates a fee share above 10000 basis points.
	ErrInvalidFeeShare = errors.New("policy: fee share must be <= 10000 basis points")

	// ErrInvalidSeed indicates an empty or oversized vault seed.
	ErrInvalidSeed = errors.New("policy: vault seed must be 1-64 bytes")

	// ErrMissingMint indicates a zero quote or base mint.
	ErrMissingMint = errors.New("policy: quote and base mint must be set")

	// ErrSameMints indicates identical quote and base mints.
	ErrSameMints = errors.New("policy: quote and base mint must differ")

	// ErrMissingAuthority indicates a zero authority.
	ErrMissingAuthority = errors.New("policy: authority must be set")

	// ErrMissingPool indicates a zero pool reference.
	ErrMissingPool = errors.New("policy: pool reference must be set")

	// ErrMissingCreatorPayout indicates a zero beneficiary destination.
	ErrMissingCreatorPayout = errors.New("policy: creator payout destination must be set")

	// ErrInvalidData indicates a malformed serialized policy record.
	ErrInvalidData = errors.New("policy: invalid policy record data")

	// ErrNotFound indicates no policy record exists for the vault.
	ErrNotFound = errors.New("policy: not found")

	// ErrExists indicates a policy record already exists for the vault.
	ErrExists = errors.New("policy: already exists")
)
