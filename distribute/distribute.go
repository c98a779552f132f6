package distribute

import (
	"context"
	"fmt"

	"github.com/solroute/feeroute-go/progress"
)

// Result summarizes one crank call.
type Result struct {
	Claimed     uint64 // quote claimed by this call
	Pages       int
	Processed   int // stakeholders examined
	Succeeded   int
	Failed      int
	Distributed uint64 // paid to stakeholders by this call
	Dust        uint64 // folded into carry by this call
	FundingCost uint64

	DayClosed     bool
	CreatorPayout uint64
}

// Distribute runs one permissionless crank call for the vault: claim
// fees, enforce the quote-only safety check, process the given
// stakeholder pages, and close the day when the caller marks the final
// page. All progress mutation is staged and persisted in a single write;
// an error leaves the stored record untouched.
func (e *Engine) Distribute(ctx context.Context, vaultSeed string, pages []Page, finalPage bool) (*Result, error) {
	pol, err := e.store.GetPolicy(vaultSeed)
	if err != nil {
		return nil, err
	}
	pos, err := e.store.GetPosition(vaultSeed)
	if err != nil {
		return nil, err
	}
	if !pos.VerifiedQuoteOnly {
		return nil, ErrNotVerified
	}
	if pos.Pool != pol.Pool || pos.QuoteMint != pol.QuoteMint {
		return nil, ErrPositionMismatch
	}
	prev, err := e.store.GetProgress(vaultSeed)
	if err != nil {
		return nil, err
	}

	now := e.now()
	pr := *prev

	switch pr.State() {
	case progress.StateDayOpen:
		// Continue the open day.
	case progress.StateNoHistory:
		if err := pr.StartDay(now); err != nil {
			return nil, err
		}
	case progress.StateDayClosed:
		if !pr.CanStartDay(now) {
			if pr.SameEpoch(now) {
				return nil, progress.ErrDayFinalized
			}
			return nil, progress.ErrDayGateNotPassed
		}
		if err := pr.StartDay(now); err != nil {
			return nil, err
		}
	}

	quote, base, err := e.fees.Claim(ctx, pos.Position)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimFailed, err)
	}
	if base > 0 {
		return nil, fmt.Errorf("%w: %d lamports", ErrBaseFeeDetected, base)
	}
	pr.LastClaimedQuote = quote
	pr.LastClaimedBase = base
	if pr.DayQuoteClaimed, err = addU64(pr.DayQuoteClaimed, quote); err != nil {
		return nil, err
	}

	events := []Event{FeesClaimed{
		Vault:     vaultSeed,
		Position:  pos.Position,
		Quote:     quote,
		Base:      base,
		Timestamp: now,
	}}

	// First pass: sequencing, integrity, snapshot consistency, balance
	// reads. Nothing moves until every page checks out.
	locked := make([][]uint64, len(pages))
	expected := pr.PaginationCursor
	for i := range pages {
		pg := &pages[i]
		if pg.Index != expected {
			return nil, fmt.Errorf("%w: page index %d, cursor %d", ErrPageOutOfSequence, pg.Index, expected)
		}
		if !pg.Verify() {
			return nil, fmt.Errorf("%w: page index %d", ErrPageHashMismatch, pg.Index)
		}
		if pr.PagesProcessedToday == 0 && i == 0 {
			pr.DayStakeholderTotal = pg.DayStakeholderTotal
			pr.DayTotalLocked = pg.DayLockedTotal
		} else if pg.DayStakeholderTotal != pr.DayStakeholderTotal || pg.DayLockedTotal != pr.DayTotalLocked {
			return nil, fmt.Errorf("%w: page index %d", ErrSnapshotMismatch, pg.Index)
		}
		next := expected + uint64(len(pg.Stakeholders))
		if next > pr.DayStakeholderTotal {
			return nil, fmt.Errorf("%w: page index %d overruns %d stakeholders",
				ErrPageOutOfSequence, pg.Index, pr.DayStakeholderTotal)
		}
		locked[i] = make([]uint64, len(pg.Stakeholders))
		for j, s := range pg.Stakeholders {
			bal, err := e.balances.Locked(ctx, s.BalanceRef, now)
			if err != nil {
				return nil, fmt.Errorf("distribute: balance read for %s: %w", s.BalanceRef, err)
			}
			locked[i][j] = bal.Locked()
		}
		expected = next
	}

	// Per-call fee from this call's claim, capped by what remains of the
	// daily cap. The day's pool target grows by each claiming call.
	if quote > 0 {
		bps := EligibleBps(pol.FeeShareBps, pr.DayTotalLocked, pol.Y0TotalAllocation)
		fee := ApplyDailyCap(InvestorFee(quote, bps), pol.DailyCapLamports, pr.CumulativeDistributedToday)
		if pr.DayInvestorPoolTarget, err = addU64(pr.DayInvestorPoolTarget, fee); err != nil {
			return nil, err
		}
		pr.DayCreatorRemainderTarget = subSat(pr.DayQuoteClaimed, pr.DayInvestorPoolTarget)
	}

	// Second pass: pro-rata shares. A lying locked total trips the pool
	// budget or the snapshot before anything moves.
	shares := make([][]uint64, len(pages))
	allocated := pr.DayInvestorDistributed
	for i := range pages {
		shares[i] = make([]uint64, len(pages[i].Stakeholders))
		for j := range pages[i].Stakeholders {
			if pr.DayLockedSeen, err = addU64(pr.DayLockedSeen, locked[i][j]); err != nil {
				return nil, err
			}
			raw, err := StakeholderPayout(locked[i][j], pr.DayInvestorPoolTarget, pr.DayTotalLocked)
			if err != nil {
				return nil, err
			}
			shares[i][j] = raw
			if allocated, err = addU64(allocated, raw); err != nil {
				return nil, err
			}
		}
	}
	if pr.DayLockedSeen > pr.DayTotalLocked {
		return nil, fmt.Errorf("%w: locked seen %d exceeds declared %d",
			ErrSnapshotMismatch, pr.DayLockedSeen, pr.DayTotalLocked)
	}
	if allocated > pr.DayInvestorPoolTarget {
		return nil, fmt.Errorf("%w: %d of %d", ErrPoolTargetExceeded,
			allocated, pr.DayInvestorPoolTarget)
	}
	if finalPage {
		// Close-time equalities hold or fail on known inputs; check them
		// before anything moves.
		if expected != pr.DayStakeholderTotal {
			return nil, fmt.Errorf("%w: cursor %d of %d stakeholders at close",
				ErrSnapshotMismatch, expected, pr.DayStakeholderTotal)
		}
		if pr.DayLockedSeen != pr.DayTotalLocked {
			return nil, fmt.Errorf("%w: locked seen %d, declared %d at close",
				ErrSnapshotMismatch, pr.DayLockedSeen, pr.DayTotalLocked)
		}
	}

	res := &Result{Claimed: quote, Pages: len(pages)}
	for i := range pages {
		pg := &pages[i]
		var distributed, dust, fundingCost uint64
		var succeeded, failed int
		for j, s := range pg.Stakeholders {
			res.Processed++
			raw := shares[i][j]
			if raw == 0 {
				continue
			}
			if raw < pol.MinPayoutLamports {
				dust += raw
				continue
			}
			has, err := e.transfers.HasDestination(ctx, s.Payout)
			if err != nil {
				failed++
				dust += raw
				continue
			}
			if !has {
				if !pol.FundMissingOwner {
					// Skipped, not failed. The share folds into carry.
					dust += raw
					continue
				}
				cost, err := e.transfers.FundDestination(ctx, s.Payout)
				if err != nil {
					failed++
					dust += raw
					continue
				}
				fundingCost += cost
			}
			if err := e.transfers.Transfer(ctx, s.Payout, raw); err != nil {
				e.log.WarnContext(ctx, "stakeholder transfer failed",
					"vault", vaultSeed, "dest", s.Payout.String(), "lamports", raw, "err", err)
				failed++
				dust += raw
				continue
			}
			succeeded++
			distributed += raw
		}

		if pr.CumulativeDistributedToday, err = addU64(pr.CumulativeDistributedToday, distributed); err != nil {
			return nil, err
		}
		if pr.DayInvestorDistributed, err = addU64(pr.DayInvestorDistributed, distributed); err != nil {
			return nil, err
		}
		if pr.CarryOverLamports, err = addU64(pr.CarryOverLamports, dust); err != nil {
			return nil, err
		}
		pr.PaginationCursor += uint64(len(pg.Stakeholders))
		pr.PagesProcessedToday++

		res.Succeeded += succeeded
		res.Failed += failed
		res.Distributed += distributed
		res.Dust += dust
		res.FundingCost += fundingCost
		events = append(events, PageProcessed{
			Vault:        vaultSeed,
			Index:        pg.Index,
			Stakeholders: len(pg.Stakeholders),
			Succeeded:    succeeded,
			Failed:       failed,
			Distributed:  distributed,
			FundingCost:  fundingCost,
			Timestamp:    now,
		})
	}

	if finalPage {
		creator := subSat(subSat(pr.DayQuoteClaimed, pr.CumulativeDistributedToday), pr.CarryOverLamports)
		if creator > 0 {
			if err := e.transfers.Transfer(ctx, pol.CreatorPayout, creator); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
			}
		}
		epoch := pr.DayEpoch
		if err := pr.FinalizeDay(now); err != nil {
			return nil, err
		}
		res.DayClosed = true
		res.CreatorPayout = creator
		events = append(events, DayClosed{
			Vault:            vaultSeed,
			Epoch:            epoch,
			TotalClaimed:     pr.DayQuoteClaimed,
			TotalDistributed: pr.CumulativeDistributedToday,
			CreatorPayout:    creator,
			Carry:            pr.CarryOverLamports,
			Timestamp:        now,
		})
	}

	pr.UpdatedAt = now
	if err := e.store.PutProgress(&pr); err != nil {
		return nil, err
	}
	e.log.DebugContext(ctx, "crank complete",
		"vault", vaultSeed, "claimed", quote, "pages", len(pages),
		"distributed", res.Distributed, "day_closed", res.DayClosed)
	e.emit(events...)
	return res, nil
}
