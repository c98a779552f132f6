package progress

import "errors"

var (
	// ErrDayGateNotPassed indicates a full day has not elapsed since the
	// last finalization.
	ErrDayGateNotPassed = errors.New("progress: 24-hour day gate not passed")

	// ErrDayFinalized indicates the day has already been finalized.
	ErrDayFinalized = errors.New("progress: day already finalized")

	// ErrNoOpenDay indicates a finalization attempt with no day open.
	ErrNoOpenDay = errors.New("progress: no open day")

	// ErrInvalidSeed indicates an empty or oversized vault seed.
	ErrInvalidSeed = errors.New("progress: vault seed must be 1-64 bytes")

	// ErrInvalidData indicates a malformed serialized progress record.
	ErrInvalidData = errors.New("progress: invalid progress record data")

	// ErrNotFound indicates no progress record exists for the vault.
	ErrNotFound = errors.New("progress: not found")

	// ErrExists indicates a progress record already exists for the vault.
	ErrExists = errors.New("progress: already exists")
)
