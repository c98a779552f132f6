package distribute

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/solroute/feeroute-go/policy"
	"github.com/solroute/feeroute-go/position"
	"github.com/solroute/feeroute-go/progress"
)

// FeeSource claims accrued fees from the liquidity engine backing a
// position. Both amounts are what this claim yielded, not lifetime
// totals.
type FeeSource interface {
	Claim(ctx context.Context, positionRef solana.PublicKey) (quote, base uint64, err error)
}

// LockedBalance is a stakeholder's custody report.
type LockedBalance struct {
	Deposited uint64
	Withdrawn uint64
}

// Locked returns the still-locked amount, clamped at zero when more was
// withdrawn than deposited.
func (b LockedBalance) Locked() uint64 {
	if b.Withdrawn >= b.Deposited {
		return 0
	}
	return b.Deposited - b.Withdrawn
}

// BalanceSource reads a stakeholder's locked balance from the custody
// service at a point in time.
type BalanceSource interface {
	Locked(ctx context.Context, balanceRef solana.PublicKey, now uint64) (LockedBalance, error)
}

// TransferSink moves quote currency to payout destinations. A missing
// destination can be created for a fee when the policy allows it.
type TransferSink interface {
	HasDestination(ctx context.Context, dest solana.PublicKey) (bool, error)
	FundDestination(ctx context.Context, dest solana.PublicKey) (cost uint64, err error)
	Transfer(ctx context.Context, dest solana.PublicKey, lamports uint64) error
}

// StateStore persists the three per-vault records. Get methods return the
// package-level not-found sentinel of the record's package.
type StateStore interface {
	GetPolicy(vaultSeed string) (*policy.Policy, error)
	PutPolicy(p *policy.Policy) error

	GetPosition(vaultSeed string) (*position.Position, error)
	PutPosition(p *position.Position) error

	GetProgress(vaultSeed string) (*progress.Progress, error)
	PutProgress(p *progress.Progress) error
}
