package distribute

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solroute/feeroute-go/policy"
	"github.com/solroute/feeroute-go/position"
	"github.com/solroute/feeroute-go/progress"
)

const testVault = "vault-1"

var t0 = time.Unix(1_700_000_000, 0).UTC()

type fixture struct {
	t      *testing.T
	engine *Engine
	store  *MemStore
	fees   *MockFeeSource
	bals   *MockBalanceSource
	sink   *MockTransferSink
	clock  *clockwork.FakeClock
	events *EventLog

	pool    position.PoolInfo
	posRef  solana.PublicKey
	creator solana.PublicKey
}

// newFixture wires an engine over in-memory collaborators and registers a
// vault: policy, verified quote-only position, zeroed progress.
func newFixture(t *testing.T, mutate func(*policy.Policy)) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		store: NewMemStore(),
		fees:  &MockFeeSource{},
		bals:  &MockBalanceSource{Balances: make(map[solana.PublicKey]LockedBalance)},
		sink: &MockTransferSink{
			Missing: make(map[solana.PublicKey]bool),
			FailFor: make(map[solana.PublicKey]bool),
		},
		clock:   clockwork.NewFakeClockAt(t0),
		events:  &EventLog{},
		posRef:  solana.NewWallet().PublicKey(),
		creator: solana.NewWallet().PublicKey(),
	}
	f.pool = position.PoolInfo{
		Address:    solana.NewWallet().PublicKey(),
		TokenAMint: solana.NewWallet().PublicKey(),
		TokenBMint: solana.NewWallet().PublicKey(),
	}

	var err error
	f.engine, err = NewEngine(Deps{
		Store:     f.store,
		Fees:      f.fees,
		Balances:  f.bals,
		Transfers: f.sink,
		Events:    f.events,
		Clock:     f.clock,
	})
	require.NoError(t, err)

	pol := &policy.Policy{
		VaultSeed:         testVault,
		Authority:         solana.NewWallet().PublicKey(),
		FeeShareBps:       7000,
		Y0TotalAllocation: 10_000_000,
		QuoteMint:         f.pool.TokenBMint,
		BaseMint:          f.pool.TokenAMint,
		Pool:              f.pool.Address,
		CreatorPayout:     f.creator,
	}
	if mutate != nil {
		mutate(pol)
	}
	ctx := context.Background()
	require.NoError(t, f.engine.SetPolicy(ctx, pol))
	_, err = f.engine.RegisterPosition(ctx, testVault, f.pool, f.posRef, 10, 200)
	require.NoError(t, err)
	_, err = f.engine.OpenProgress(ctx, testVault)
	require.NoError(t, err)
	return f
}

func (f *fixture) claim(quote, base uint64) {
	f.fees.ClaimFn = func(context.Context, solana.PublicKey) (uint64, uint64, error) {
		return quote, base, nil
	}
}

// stakeholders creates one row per locked amount, backed by the balance
// source.
func (f *fixture) stakeholders(lockedAmounts ...uint64) []Stakeholder {
	rows := make([]Stakeholder, len(lockedAmounts))
	for i, locked := range lockedAmounts {
		rows[i] = Stakeholder{
			BalanceRef: solana.NewWallet().PublicKey(),
			Payout:     solana.NewWallet().PublicKey(),
		}
		f.bals.Balances[rows[i].BalanceRef] = LockedBalance{Deposited: locked}
	}
	return rows
}

func page(index, stakeholderTotal, lockedTotal uint64, rows []Stakeholder) Page {
	pg := Page{
		Index:               index,
		DayStakeholderTotal: stakeholderTotal,
		DayLockedTotal:      lockedTotal,
		Stakeholders:        rows,
	}
	pg.Seal()
	return pg
}

func (f *fixture) distribute(pages []Page, final bool) (*Result, error) {
	return f.engine.Distribute(context.Background(), testVault, pages, final)
}

func (f *fixture) progress() *progress.Progress {
	pr, err := f.store.GetProgress(testVault)
	require.NoError(f.t, err)
	return pr
}

func TestDistributeFullDay(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 2_000_000, 1_000_000)

	res, err := f.distribute([]Page{page(0, 3, 6_000_000, rows)}, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), res.Claimed)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, uint64(600_000), res.Distributed)
	assert.Zero(t, res.Dust)
	assert.True(t, res.DayClosed)
	assert.Equal(t, uint64(400_000), res.CreatorPayout)

	assert.Equal(t, uint64(300_000), f.sink.Received(rows[0].Payout))
	assert.Equal(t, uint64(200_000), f.sink.Received(rows[1].Payout))
	assert.Equal(t, uint64(100_000), f.sink.Received(rows[2].Payout))
	assert.Equal(t, uint64(400_000), f.sink.Received(f.creator))

	pr := f.progress()
	assert.Equal(t, progress.StateDayClosed, pr.State())
	assert.Equal(t, uint64(t0.Unix()), pr.LastDistributionTS)
	assert.Zero(t, pr.PaginationCursor)
	assert.Zero(t, pr.CarryOverLamports)

	kinds := make(map[string]int)
	for _, ev := range f.events.Events() {
		kinds[ev.Kind()]++
	}
	assert.Equal(t, 1, kinds["fees_claimed"])
	assert.Equal(t, 1, kinds["page_processed"])
	assert.Equal(t, 1, kinds["day_closed"])
}

func TestDistributeDustBelowThreshold(t *testing.T) {
	f := newFixture(t, func(p *policy.Policy) {
		p.Y0TotalAllocation = 1000
		p.MinPayoutLamports = 250
	})
	f.claim(1000, 0)
	rows := f.stakeholders(200, 200, 200)

	res, err := f.distribute([]Page{page(0, 3, 600, rows)}, true)
	require.NoError(t, err)

	// Each raw share of 200 sits below the 250 threshold.
	assert.Zero(t, res.Distributed)
	assert.Equal(t, uint64(600), res.Dust)
	assert.Equal(t, uint64(400), res.CreatorPayout)
	for _, r := range rows {
		assert.Zero(t, f.sink.Received(r.Payout))
	}

	pr := f.progress()
	assert.Equal(t, uint64(600), pr.CarryOverLamports, "dust persists as carry")
}

func TestDistributeNothingLocked(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(0, 0)

	res, err := f.distribute([]Page{page(0, 2, 0, rows)}, true)
	require.NoError(t, err)

	assert.Zero(t, res.Distributed)
	assert.Zero(t, res.Dust)
	assert.Equal(t, uint64(1_000_000), res.CreatorPayout)
	assert.Equal(t, uint64(1_000_000), f.sink.Received(f.creator))
}

func TestBaseFeeAbortsUnchanged(t *testing.T) {
	f := newFixture(t, nil)
	before, err := progress.Serialize(f.progress())
	require.NoError(t, err)

	f.claim(1000, 5)
	rows := f.stakeholders(100)
	_, err = f.distribute([]Page{page(0, 1, 100, rows)}, true)
	require.ErrorIs(t, err, ErrBaseFeeDetected)

	after, err := progress.Serialize(f.progress())
	require.NoError(t, err)
	assert.Equal(t, before, after, "progress must be byte-for-byte unchanged")
	for _, r := range rows {
		assert.Zero(t, f.sink.Received(r.Payout))
	}
}

func TestDayGate(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1000, 0)
	rows := f.stakeholders(100)
	pages := func() []Page { return []Page{page(0, 1, 100, rows)} }

	_, err := f.distribute(pages(), true)
	require.NoError(t, err)

	// Same epoch, day already finalized.
	f.clock.Advance(time.Hour)
	_, err = f.distribute(pages(), true)
	require.ErrorIs(t, err, progress.ErrDayFinalized)

	// Next calendar day but less than 24 hours since the close.
	f.clock.Advance(5 * time.Hour)
	_, err = f.distribute(pages(), true)
	require.ErrorIs(t, err, progress.ErrDayGateNotPassed)

	// A full day after the close.
	f.clock.Advance(18 * time.Hour)
	_, err = f.distribute(pages(), true)
	require.NoError(t, err)
}

func TestPaginationAcrossCalls(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 2_000_000, 1_000_000)

	res, err := f.distribute([]Page{page(0, 3, 6_000_000, rows[:2])}, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), res.Distributed)
	assert.False(t, res.DayClosed)

	pr := f.progress()
	assert.Equal(t, progress.StateDayOpen, pr.State())
	assert.Equal(t, uint64(2), pr.PaginationCursor)

	// Resubmitting the processed page is rejected by the cursor.
	f.claim(0, 0)
	_, err = f.distribute([]Page{page(0, 3, 6_000_000, rows[:2])}, false)
	require.ErrorIs(t, err, ErrPageOutOfSequence)

	// The remaining page closes the day; this call claims nothing.
	res, err = f.distribute([]Page{page(2, 3, 6_000_000, rows[2:])}, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), res.Distributed)
	assert.True(t, res.DayClosed)
	assert.Equal(t, uint64(400_000), res.CreatorPayout)
	assert.Equal(t, uint64(300_000), f.sink.Received(rows[0].Payout))
	assert.Equal(t, uint64(100_000), f.sink.Received(rows[2].Payout))
}

func TestPageHashMismatchRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1000, 0)
	rows := f.stakeholders(100, 100)

	pg := page(0, 2, 200, rows)
	pg.Stakeholders[1].Payout = solana.NewWallet().PublicKey()

	_, err := f.distribute([]Page{pg}, true)
	require.ErrorIs(t, err, ErrPageHashMismatch)
	assert.Zero(t, f.progress().PaginationCursor)
}

func TestSnapshotMismatchRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)

	_, err := f.distribute([]Page{page(0, 2, 6_000_000, rows[:1])}, false)
	require.NoError(t, err)

	// Second page declares a different day snapshot.
	_, err = f.distribute([]Page{page(1, 2, 5_000_000, rows[1:])}, true)
	require.ErrorIs(t, err, ErrSnapshotMismatch)
}

func TestUnderstatedLockedTotalCaught(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)

	// Declared total is a tenth of the real balances; inflated shares
	// blow through the pool target.
	_, err := f.distribute([]Page{page(0, 2, 600_000, rows)}, true)
	require.Error(t, err)
	assert.Zero(t, f.progress().PaginationCursor)
}

func TestOverstatedLockedTotalMovesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)

	// Declared total is double the real balances. The halved shares pass
	// the pool budget, so only the close-time equality can catch the lie;
	// it must fire before any transfer.
	_, err := f.distribute([]Page{page(0, 2, 12_000_000, rows)}, true)
	require.ErrorIs(t, err, ErrSnapshotMismatch)

	for _, r := range rows {
		assert.Zero(t, f.sink.Received(r.Payout))
	}
	assert.Zero(t, f.sink.Received(f.creator))
	assert.Zero(t, f.progress().PaginationCursor)

	// The corrected resubmission pays each stakeholder exactly once.
	res, err := f.distribute([]Page{page(0, 2, 6_000_000, rows)}, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(600_000), res.Distributed)
	assert.Equal(t, uint64(300_000), f.sink.Received(rows[0].Payout))
	assert.Equal(t, uint64(300_000), f.sink.Received(rows[1].Payout))
}

func TestDailyCap(t *testing.T) {
	f := newFixture(t, func(p *policy.Policy) {
		p.DailyCapLamports = 500
	})
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 2_000_000, 1_000_000)

	res, err := f.distribute([]Page{page(0, 3, 6_000_000, rows)}, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(250), f.sink.Received(rows[0].Payout))
	assert.Equal(t, uint64(166), f.sink.Received(rows[1].Payout))
	assert.Equal(t, uint64(83), f.sink.Received(rows[2].Payout))
	assert.Equal(t, uint64(499), res.Distributed)
	assert.Equal(t, uint64(999_501), res.CreatorPayout)
}

func TestMissingDestinationSkipped(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)
	f.sink.Missing[rows[0].Payout] = true

	res, err := f.distribute([]Page{page(0, 2, 6_000_000, rows)}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Zero(t, res.Failed, "a skipped stakeholder is not a failure")
	assert.Equal(t, uint64(300_000), res.Dust)
	assert.Zero(t, f.sink.Received(rows[0].Payout))
	assert.Equal(t, uint64(300_000), f.sink.Received(rows[1].Payout))
	assert.Empty(t, f.sink.Funded())
}

func TestMissingDestinationFunded(t *testing.T) {
	f := newFixture(t, func(p *policy.Policy) {
		p.FundMissingOwner = true
	})
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)
	f.sink.Missing[rows[0].Payout] = true
	f.sink.FundCost = 5000

	res, err := f.distribute([]Page{page(0, 2, 6_000_000, rows)}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, uint64(5000), res.FundingCost)
	assert.Equal(t, []solana.PublicKey{rows[0].Payout}, f.sink.Funded())
	assert.Equal(t, uint64(300_000), f.sink.Received(rows[0].Payout))
}

func TestTransferFailureFoldsIntoDust(t *testing.T) {
	f := newFixture(t, nil)
	f.claim(1_000_000, 0)
	rows := f.stakeholders(3_000_000, 3_000_000)
	f.sink.FailFor[rows[0].Payout] = true

	res, err := f.distribute([]Page{page(0, 2, 6_000_000, rows)}, true)
	require.NoError(t, err, "one refused transfer must not abort the page")

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, uint64(300_000), res.Dust)
	assert.Equal(t, uint64(300_000), f.progress().CarryOverLamports)
}

func TestConservationAtClose(t *testing.T) {
	f := newFixture(t, func(p *policy.Policy) {
		p.MinPayoutLamports = 90_000
	})
	f.claim(987_654, 0)
	rows := f.stakeholders(2_750_001, 1_999_999, 823_000, 400_000)
	var total uint64
	for _, locked := range []uint64{2_750_001, 1_999_999, 823_000, 400_000} {
		total += locked
	}

	res, err := f.distribute([]Page{page(0, 4, total, rows)}, true)
	require.NoError(t, err)
	require.True(t, res.DayClosed)

	pr := f.progress()
	assert.Equal(t, res.Claimed,
		res.CreatorPayout+pr.CumulativeDistributedToday+pr.CarryOverLamports,
		"creator + distributed + carry must equal the day's claim")
}

func TestDistributeUnverifiedPosition(t *testing.T) {
	f := newFixture(t, nil)
	pos, err := f.store.GetPosition(testVault)
	require.NoError(t, err)
	pos.VerifiedQuoteOnly = false
	require.NoError(t, f.store.PutPosition(pos))

	f.claim(1000, 0)
	_, err = f.distribute(nil, false)
	require.ErrorIs(t, err, ErrNotVerified)
}

func TestNewEngineRequiresDeps(t *testing.T) {
	_, err := NewEngine(Deps{})
	require.ErrorIs(t, err, ErrNilDependency)

	_, err = NewEngine(Deps{Store: NewMemStore(), Fees: &MockFeeSource{}, Balances: &MockBalanceSource{}})
	require.ErrorIs(t, err, ErrNilDependency)
}

func TestSetPolicyRejectsDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	pol, err := f.store.GetPolicy(testVault)
	require.NoError(t, err)
	err = f.engine.SetPolicy(context.Background(), pol)
	require.ErrorIs(t, err, policy.ErrExists)
}

func TestUpdatePolicy(t *testing.T) {
	f := newFixture(t, nil)
	bps := uint16(5000)
	minPayout := uint64(777)

	pol, err := f.engine.UpdatePolicy(context.Background(), testVault, policy.Update{
		FeeShareBps:       &bps,
		MinPayoutLamports: &minPayout,
	})
	require.NoError(t, err)
	assert.Equal(t, bps, pol.FeeShareBps)
	assert.Equal(t, minPayout, pol.MinPayoutLamports)

	stored, err := f.store.GetPolicy(testVault)
	require.NoError(t, err)
	assert.Equal(t, bps, stored.FeeShareBps)

	evs := f.events.Events()
	last, ok := evs[len(evs)-1].(PolicyChanged)
	require.True(t, ok)
	assert.Equal(t, bps, last.FeeShareBps)

	bad := uint16(10001)
	_, err = f.engine.UpdatePolicy(context.Background(), testVault, policy.Update{FeeShareBps: &bad})
	require.ErrorIs(t, err, policy.ErrInvalidFeeShare)

	// An update that changes nothing is silent.
	before := len(f.events.Events())
	_, err = f.engine.UpdatePolicy(context.Background(), testVault, policy.Update{})
	require.NoError(t, err)
	assert.Len(t, f.events.Events(), before)
}

func TestRegisterPositionRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// Already registered.
	_, err := f.engine.RegisterPosition(ctx, testVault, f.pool, solana.NewWallet().PublicKey(), 10, 200)
	require.ErrorIs(t, err, position.ErrExists)

	// Fresh vault with a straddling range.
	f2 := newFixture(t, nil)
	other := "vault-2"
	pol, err := f2.store.GetPolicy(testVault)
	require.NoError(t, err)
	pol.VaultSeed = other
	require.NoError(t, f2.engine.SetPolicy(ctx, pol))

	_, err = f2.engine.RegisterPosition(ctx, other, f2.pool, solana.NewWallet().PublicKey(), -50, 200)
	require.ErrorIs(t, err, position.ErrQuoteOnlyNotGuaranteed)

	wrongPool := f2.pool
	wrongPool.Address = solana.NewWallet().PublicKey()
	_, err = f2.engine.RegisterPosition(ctx, other, wrongPool, solana.NewWallet().PublicKey(), 10, 200)
	require.ErrorIs(t, err, position.ErrPoolMismatch)
}

func TestOpenProgressRejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.engine.OpenProgress(ctx, testVault)
	require.ErrorIs(t, err, progress.ErrExists)

	_, err = f.engine.OpenProgress(ctx, "no-such-vault")
	require.ErrorIs(t, err, policy.ErrNotFound)
}
