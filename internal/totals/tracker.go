// Package totals owns the last-known-good global staking points total.
package totals

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"StakeScope/internal/model"
	"StakeScope/internal/store"
)

// ErrInvalidTotal is returned by Update for totals that cannot serve as a divisor.
var ErrInvalidTotal = errors.New("global points total must be positive and finite")

// Tracker caches the global points total and persists every accepted update.
type Tracker struct {
	mu    sync.Mutex
	total float64
	store store.Store
	log   *slog.Logger
}

// NewTracker loads the persisted total, falling back to defaultTotal when the
// key is missing or its value is unparsable.
func NewTracker(st store.Store, defaultTotal float64, log *slog.Logger) (*Tracker, error) {
	if !valid(defaultTotal) {
		return nil, fmt.Errorf("default total %v: %w", defaultTotal, ErrInvalidTotal)
	}
	if log == nil {
		log = slog.Default()
	}
	t := &Tracker{total: defaultTotal, store: st, log: log}

	raw, ok, err := st.Get(model.StakingPointsKey)
	switch {
	case err != nil:
		log.Warn("read persisted global points failed, using default", "default", defaultTotal, "error", err)
	case !ok:
		log.Info("no persisted global points, using default", "default", defaultTotal)
	default:
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || !valid(v) {
			log.Warn("persisted global points unusable, using default", "value", raw, "default", defaultTotal)
		} else {
			t.total = v
			log.Info("loaded persisted global points", "total", v)
		}
	}
	return t, nil
}

// Total returns the current global points total. Always > 0.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Update replaces the total and persists it. Invalid totals are rejected and the
// previous value is kept. Persistence failures are logged, not returned.
func (t *Tracker) Update(total float64) error {
	if !valid(total) {
		return fmt.Errorf("update to %v: %w", total, ErrInvalidTotal)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = total
	if err := t.store.Set(model.StakingPointsKey, strconv.FormatFloat(total, 'f', -1, 64)); err != nil {
		t.log.Error("failed to persist global points", "total", total, "error", err)
	}
	return nil
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
