package distribute

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/solroute/feeroute-go/policy"
	"github.com/solroute/feeroute-go/position"
	"github.com/solroute/feeroute-go/progress"
)

// SetPolicy validates and persists a new per-vault policy. A vault's
// policy is created exactly once; later changes go through UpdatePolicy.
func (e *Engine) SetPolicy(ctx context.Context, p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := e.store.GetPolicy(p.VaultSeed); err == nil {
		return policy.ErrExists
	} else if !errors.Is(err, policy.ErrNotFound) {
		return err
	}

	now := e.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := e.store.PutPolicy(p); err != nil {
		return err
	}
	e.log.InfoContext(ctx, "policy created", "vault", p.VaultSeed, "fee_share_bps", p.FeeShareBps)
	e.emit(PolicyChanged{
		Vault:             p.VaultSeed,
		FeeShareBps:       p.FeeShareBps,
		DailyCapLamports:  p.DailyCapLamports,
		MinPayoutLamports: p.MinPayoutLamports,
		FundMissingOwner:  p.FundMissingOwner,
		Y0TotalAllocation: p.Y0TotalAllocation,
		Timestamp:         now,
	})
	return nil
}

// UpdatePolicy applies a partial update to the vault's policy and
// persists the result. Unset fields are left unchanged.
func (e *Engine) UpdatePolicy(ctx context.Context, vaultSeed string, u policy.Update) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(vaultSeed)
	if err != nil {
		return nil, err
	}
	changed, err := p.Apply(u)
	if err != nil {
		return nil, err
	}
	if !changed {
		return p, nil
	}
	now := e.now()
	p.UpdatedAt = now
	if err := e.store.PutPolicy(p); err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "policy updated", "vault", vaultSeed, "fee_share_bps", p.FeeShareBps)
	e.emit(PolicyChanged{
		Vault:             vaultSeed,
		FeeShareBps:       p.FeeShareBps,
		DailyCapLamports:  p.DailyCapLamports,
		MinPayoutLamports: p.MinPayoutLamports,
		FundMissingOwner:  p.FundMissingOwner,
		Y0TotalAllocation: p.Y0TotalAllocation,
		Timestamp:         now,
	})
	return p, nil
}

// RegisterPosition records the fee position backing the vault after the
// quote-only composition check passes. The pool report must name the pool
// the vault's policy was created for.
func (e *Engine) RegisterPosition(ctx context.Context, vaultSeed string, pool position.PoolInfo, positionRef solana.PublicKey, tickLower, tickUpper int32) (*position.Position, error) {
	pol, err := e.store.GetPolicy(vaultSeed)
	if err != nil {
		return nil, err
	}
	if pool.Address != pol.Pool {
		return nil, fmt.Errorf("%w: pool %s", position.ErrPoolMismatch, pool.Address)
	}
	if err := position.VerifyQuoteOnly(pool, tickLower, tickUpper, pol.QuoteMint); err != nil {
		return nil, err
	}
	if _, err := e.store.GetPosition(vaultSeed); err == nil {
		return nil, position.ErrExists
	} else if !errors.Is(err, position.ErrNotFound) {
		return nil, err
	}

	now := e.now()
	pos := &position.Position{
		VaultSeed:         vaultSeed,
		Position:          positionRef,
		Pool:              pool.Address,
		QuoteMint:         pol.QuoteMint,
		TickLower:         tickLower,
		TickUpper:         tickUpper,
		VerifiedQuoteOnly: true,
		CreatedAt:         now,
	}
	if err := e.store.PutPosition(pos); err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "position registered",
		"vault", vaultSeed, "position", positionRef.String(),
		"tick_lower", tickLower, "tick_upper", tickUpper)
	e.emit(PositionRegistered{
		Vault:     vaultSeed,
		Position:  positionRef,
		Pool:      pool.Address,
		QuoteMint: pol.QuoteMint,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Timestamp: now,
	})
	return pos, nil
}

// OpenProgress creates the vault's zeroed progress record. The vault must
// already have a policy.
func (e *Engine) OpenProgress(ctx context.Context, vaultSeed string) (*progress.Progress, error) {
	if _, err := e.store.GetPolicy(vaultSeed); err != nil {
		return nil, err
	}
	if _, err := e.store.GetProgress(vaultSeed); err == nil {
		return nil, progress.ErrExists
	} else if !errors.Is(err, progress.ErrNotFound) {
		return nil, err
	}

	pr := progress.New(vaultSeed, e.now())
	if err := e.store.PutProgress(pr); err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "progress opened", "vault", vaultSeed)
	return pr, nil
}
