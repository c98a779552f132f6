package distribute

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Event is an audit record emitted by the engine after a successful
// operation.
type Event interface {
	Kind() string
}

// EventSink receives engine events. Implementations must be safe for
// concurrent use if the engine is shared across goroutines.
type EventSink interface {
	Emit(ev Event)
}

// PolicyChanged reports a policy creation or update with the effective
// values.
type PolicyChanged struct {
	Vault             string
	FeeShareBps       uint16
	DailyCapLamports  uint64
	MinPayoutLamports uint64
	FundMissingOwner  bool
	Y0TotalAllocation uint64
	Timestamp         uint64
}

func (PolicyChanged) Kind() string { return "policy_changed" }

// PositionRegistered reports a successful quote-only position
// registration.
type PositionRegistered struct {
	Vault     string
	Position  solana.PublicKey
	Pool      solana.PublicKey
	QuoteMint solana.PublicKey
	TickLower int32
	TickUpper int32
	Timestamp uint64
}

func (PositionRegistered) Kind() string { return "position_registered" }

// FeesClaimed reports the amounts a crank call claimed.
type FeesClaimed struct {
	Vault     string
	Position  solana.PublicKey
	Quote     uint64
	Base      uint64
	Timestamp uint64
}

func (FeesClaimed) Kind() string { return "fees_claimed" }

// PageProcessed reports one processed stakeholder page.
type PageProcessed struct {
	Vault        string
	Index        uint64
	Stakeholders int
	Succeeded    int
	Failed       int
	Distributed  uint64
	FundingCost  uint64
	Timestamp    uint64
}

func (PageProcessed) Kind() string { return "page_processed" }

// DayClosed reports a finalized distribution day.
type DayClosed struct {
	Vault            string
	Epoch            uint64
	TotalClaimed     uint64
	TotalDistributed uint64
	CreatorPayout    uint64
	Carry            uint64
	Timestamp        uint64
}

func (DayClosed) Kind() string { return "day_closed" }

// EventLog is a slice-backed EventSink for tests and embedders that want
// to inspect emitted events.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *EventLog) Emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Events returns a copy of everything emitted so far.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

var _ EventSink = (*EventLog)(nil)
