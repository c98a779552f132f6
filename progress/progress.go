// Package progress tracks the daily distribution cycle for a vault: the
// 24-hour gate, the pagination cursor, and the per-day accounting that
// carries across crank calls.
package progress

// SecondsPerDay is the length of one distribution day.
const SecondsPerDay = 86400

// MaxSeedLen bounds the vault seed length used as the record key.
const MaxSeedLen = 64

// State describes where a vault sits in its distribution cycle.
type State int

const (
	// StateNoHistory means no day has ever been completed.
	StateNoHistory State = iota

	// StateDayOpen means a day is open and pages are being processed.
	StateDayOpen

	// StateDayClosed means the last opened day has been finalized.
	StateDayClosed
)

func (s State) String() string {
	switch s {
	case StateNoHistory:
		return "no-history"
	case StateDayOpen:
		return "day-open"
	case StateDayClosed:
		return "day-closed"
	default:
		return "unknown"
	}
}

// Progress is the per-vault distribution cycle record. Exactly one exists
// per vault and every crank call reads and rewrites it.
type Progress struct {
	VaultSeed string

	// LastDistributionTS is the unix time the last day was finalized.
	// Zero until the first day completes.
	LastDistributionTS uint64

	// DayEpoch identifies the open or last-opened day (unix day number).
	DayEpoch uint64

	// DayQuoteClaimed sums the quote fees claimed across the open day's
	// crank calls. The conservation numerator at finalization.
	DayQuoteClaimed uint64

	CumulativeDistributedToday uint64
	CarryOverLamports          uint64

	// PaginationCursor is the index of the next stakeholder expected.
	PaginationCursor uint64

	PageInProgress bool
	DayFinalized   bool

	PagesProcessedToday uint64

	// Last claim amounts, kept for diagnostics.
	LastClaimedQuote uint64
	LastClaimedBase  uint64

	// Day snapshot declared by the day's first page and enforced on the
	// rest. DayLockedSeen accumulates the balance reads actually made.
	DayTotalLocked      uint64
	DayStakeholderTotal uint64
	DayLockedSeen       uint64

	// Day targets. Distributed never exceeds the pool target; the
	// remainder target is what the beneficiary receives at close.
	DayInvestorPoolTarget     uint64
	DayInvestorDistributed    uint64
	DayCreatorRemainderTarget uint64

	CreatedAt uint64
	UpdatedAt uint64
}

// New returns a zeroed progress record for the vault.
func New(vaultSeed string, now uint64) *Progress {
	return &Progress{
		VaultSeed: vaultSeed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State reports where the vault sits in its distribution cycle.
func (p *Progress) State() State {
	if p.PageInProgress {
		return StateDayOpen
	}
	if p.LastDistributionTS == 0 {
		return StateNoHistory
	}
	return StateDayClosed
}

// CanStartDay reports whether a new day may open at the given time. The
// first day ever may open at any time; afterwards a full day must have
// elapsed since the last finalization.
func (p *Progress) CanStartDay(now uint64) bool {
	if p.LastDistributionTS == 0 {
		return true
	}
	return now >= p.LastDistributionTS+SecondsPerDay
}

// SameEpoch reports whether the given time falls in the day the record
// last opened.
func (p *Progress) SameEpoch(now uint64) bool {
	return now/SecondsPerDay == p.DayEpoch
}

// StartDay opens a new distribution day. All per-day accounting resets;
// the carry survives into the new day's dust accumulation.
func (p *Progress) StartDay(now uint64) error {
	if !p.CanStartDay(now) {
		return ErrDayGateNotPassed
	}
	p.DayEpoch = now / SecondsPerDay
	p.DayQuoteClaimed = 0
	p.CumulativeDistributedToday = 0
	p.PaginationCursor = 0
	p.PagesProcessedToday = 0
	p.DayTotalLocked = 0
	p.DayStakeholderTotal = 0
	p.DayLockedSeen = 0
	p.DayInvestorPoolTarget = 0
	p.DayInvestorDistributed = 0
	p.DayCreatorRemainderTarget = 0
	p.PageInProgress = true
	p.DayFinalized = false
	p.UpdatedAt = now
	return nil
}

// FinalizeDay closes the open day. The per-day totals stay readable until
// the next StartDay; the cursor and snapshot reset immediately.
func (p *Progress) FinalizeDay(now uint64) error {
	if !p.PageInProgress {
		if p.DayFinalized {
			return ErrDayFinalized
		}
		return ErrNoOpenDay
	}
	p.PageInProgress = false
	p.DayFinalized = true
	p.LastDistributionTS = now
	p.PaginationCursor = 0
	p.DayTotalLocked = 0
	p.DayStakeholderTotal = 0
	p.DayLockedSeen = 0
	p.UpdatedAt = now
	return nil
}
