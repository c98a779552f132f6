// Package distribute implements the crank: claim fees for a vault's
// position, enforce the quote-only safety check, split the claim between
// locked stakeholders and the creator, and page through stakeholders
// until the day closes.
package distribute

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

// Deps carries the engine's collaborators. Store, Fees, Balances and
// Transfers are required; Events, Clock and Logger are optional.
type Deps struct {
	Store     StateStore
	Fees      FeeSource
	Balances  BalanceSource
	Transfers TransferSink
	Events    EventSink
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Engine drives all vault operations. Safe for concurrent use across
// distinct vaults; calls for the same vault must be serialized by the
// caller.
type Engine struct {
	store     StateStore
	fees      FeeSource
	balances  BalanceSource
	transfers TransferSink
	events    EventSink
	clock     clockwork.Clock
	log       *slog.Logger
}

// NewEngine validates the dependency set and returns an engine.
func NewEngine(d Deps) (*Engine, error) {
	switch {
	case d.Store == nil:
		return nil, fmt.Errorf("%w: store", ErrNilDependency)
	case d.Fees == nil:
		return nil, fmt.Errorf("%w: fee source", ErrNilDependency)
	case d.Balances == nil:
		return nil, fmt.Errorf("%w: balance source", ErrNilDependency)
	case d.Transfers == nil:
		return nil, fmt.Errorf("%w: transfer sink", ErrNilDependency)
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:     d.Store,
		fees:      d.Fees,
		balances:  d.Balances,
		transfers: d.Transfers,
		events:    d.Events,
		clock:     d.Clock,
		log:       d.Logger,
	}, nil
}

func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}

func (e *Engine) emit(evs ...Event) {
	if e.events == nil {
		return
	}
	for _, ev := range evs {
		e.events.Emit(ev)
	}
}
