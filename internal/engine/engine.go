// Package engine runs the estimation session on a single event loop.
//
// All session state is owned by the goroutine executing Run. Public methods
// post closures to that loop; network fetches run on their own goroutines and
// post their completions back, so the loop never blocks on I/O.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"StakeScope/internal/calculator"
	"StakeScope/internal/collector"
	"StakeScope/internal/model"
	"StakeScope/internal/session"
	"StakeScope/internal/totals"
)

// ErrStopped is returned once Run has exited.
var ErrStopped = errors.New("engine stopped")

// View is a consistent snapshot of everything a presentation layer renders.
type View struct {
	Session      session.State         `json:"session"`
	GlobalPoints float64               `json:"global_points"`
	Price        *model.PriceQuote     `json:"price,omitempty"`
	Constants    model.RewardConstants `json:"constants"`
	Reward       *model.RewardView     `json:"reward,omitempty"`
}

// Engine coordinates the fetchers, the global points cache and the session.
type Engine struct {
	collector *collector.Collector
	totals    *totals.Tracker
	consts    model.RewardConstants
	log       *slog.Logger
	onLookup  func(View)

	events chan func()
	done   chan struct{}

	// Owned by the Run goroutine.
	runCtx context.Context
	state  session.State
	price  *model.PriceQuote
}

// New creates an Engine. Call Run before using any other method.
func New(col *collector.Collector, tr *totals.Tracker, consts model.RewardConstants, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		collector: col,
		totals:    tr,
		consts:    consts,
		log:       log,
		events:    make(chan func()),
		done:      make(chan struct{}),
		state:     session.New(),
	}
}

// OnLookup registers fn to receive the view after every applied identity
// lookup completion. fn runs on the event loop and must not block. Call
// before Run.
func (e *Engine) OnLookup(fn func(View)) { e.onLookup = fn }

// Run processes events until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	e.runCtx = ctx
	e.log.Info("engine started")
	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopped")
			return ctx.Err()
		case fn := <-e.events:
			fn()
		}
	}
}

// RefreshPrice fetches the spot price and caches it on success. On failure the
// previous quote, if any, is kept.
func (e *Engine) RefreshPrice(ctx context.Context) error {
	quote, err := e.collector.Price(ctx)
	if err != nil {
		return err
	}
	return e.do(ctx, func() {
		e.price = &quote
		e.log.Debug("price updated", "asset", quote.AssetID, "usd", quote.USD)
	})
}

// RefreshGlobalPoints fetches the global total and persists it on success.
// Failures and unusable totals leave the last-known-good total in place.
func (e *Engine) RefreshGlobalPoints(ctx context.Context) error {
	total, err := e.collector.GlobalPoints(ctx)
	if err != nil {
		return err
	}
	var updateErr error
	if err := e.do(ctx, func() {
		updateErr = e.totals.Update(total)
	}); err != nil {
		return err
	}
	if updateErr != nil {
		e.log.Warn("rejected global points total", "total", total, "error", updateErr)
		return updateErr
	}
	e.collector.Metrics.SetGlobalPoints(total)
	e.log.Debug("global points updated", "total", total)
	return nil
}

// Submit starts a lookup for identity and returns its generation without
// waiting for the result. A blank identity returns session.ErrEmptyIdentity
// and issues no request.
func (e *Engine) Submit(ctx context.Context, identity string) (uint64, error) {
	var (
		gen       uint64
		submitErr error
	)
	err := e.do(ctx, func() {
		gen, submitErr = e.state.Submit(identity)
		if submitErr != nil {
			return
		}
		go e.lookup(e.runCtx, gen, e.state.Identity)
	})
	if err != nil {
		return 0, err
	}
	return gen, submitErr
}

func (e *Engine) lookup(ctx context.Context, gen uint64, identity string) {
	rec, err := e.collector.IdentityPoints(ctx, identity)
	e.post(func() {
		var applied bool
		switch {
		case err == nil:
			applied = e.state.Resolve(gen, rec, e.totals.Total(), e.consts.TotalRewardPool)
		case errors.Is(err, collector.ErrNotFound):
			applied = e.state.MarkNotFound(gen)
		default:
			applied = e.state.MarkFailed(gen)
		}
		if !applied {
			e.log.Debug("dropped stale lookup", "identity", identity, "generation", gen, "latest", e.state.Generation)
			return
		}
		if e.onLookup != nil {
			e.onLookup(e.view())
		}
	})
}

// SetBoost selects the display multiplier.
func (e *Engine) SetBoost(ctx context.Context, multiplier int) error {
	var boostErr error
	if err := e.do(ctx, func() { boostErr = e.state.SetBoost(multiplier) }); err != nil {
		return err
	}
	return boostErr
}

// ToggleCalculations shows or hides the calculation breakdown.
func (e *Engine) ToggleCalculations(ctx context.Context) error {
	return e.do(ctx, e.state.ToggleCalculations)
}

// ToggleGuide shows or hides the points guide.
func (e *Engine) ToggleGuide(ctx context.Context) error {
	return e.do(ctx, e.state.ToggleGuide)
}

// Snapshot returns the current view.
func (e *Engine) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := e.do(ctx, func() { v = e.view() })
	return v, err
}

func (e *Engine) view() View {
	v := View{
		Session:      e.state,
		GlobalPoints: e.totals.Total(),
		Constants:    e.consts,
	}
	if e.price != nil {
		quote := *e.price
		v.Price = &quote
	}
	if e.state.Estimate != nil {
		rv := calculator.Breakdown(*e.state.Estimate, e.state.Boost, v.Price, e.consts)
		v.Reward = &rv
	}
	return v
}

// do runs fn on the loop and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case e.events <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}
	// Accepted closures run to completion before the loop selects again.
	select {
	case <-finished:
		return nil
	case <-e.done:
		return ErrStopped
	}
}

// post queues fn on the loop without waiting for it to run.
func (e *Engine) post(fn func()) {
	select {
	case e.events <- fn:
	case <-e.done:
	}
}
