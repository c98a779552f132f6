package distribute

import "errors"

var (
	// ErrBaseFeeDetected indicates a claim returned base-currency fees.
	// The whole call aborts and nothing is persisted.
	ErrBaseFeeDetected = errors.New("distribute: base-currency fees detected")

	// ErrPageOutOfSequence indicates a page index that does not match the
	// pagination cursor.
	ErrPageOutOfSequence = errors.New("distribute: page out of sequence")

	// ErrPageHashMismatch indicates page contents that do not match the
	// page's integrity hash.
	ErrPageHashMismatch = errors.New("distribute: page hash mismatch")

	// ErrSnapshotMismatch indicates a page declaring day totals that
	// differ from the day's established snapshot.
	ErrSnapshotMismatch = errors.New("distribute: day snapshot mismatch")

	// ErrPositionMismatch indicates a registered position inconsistent
	// with the vault's policy.
	ErrPositionMismatch = errors.New("distribute: position does not match policy")

	// ErrNotVerified indicates a position registered without a passing
	// quote-only composition check.
	ErrNotVerified = errors.New("distribute: position not verified quote-only")

	// ErrPoolTargetExceeded indicates payouts that would exceed the day's
	// capped stakeholder pool.
	ErrPoolTargetExceeded = errors.New("distribute: stakeholder pool target exceeded")

	// ErrOverflow indicates checked arithmetic overflowed.
	ErrOverflow = errors.New("distribute: arithmetic overflow")

	// ErrClaimFailed wraps a fee source failure.
	ErrClaimFailed = errors.New("distribute: fee claim failed")

	// ErrTransferFailed wraps a beneficiary transfer failure at day close.
	ErrTransferFailed = errors.New("distribute: creator transfer failed")

	// ErrNilDependency indicates a required engine dependency was not
	// supplied.
	ErrNilDependency = errors.New("distribute: nil dependency")
)
