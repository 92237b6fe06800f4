// Package session models one estimation session as an explicit state record
// changed only through discrete transitions.
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"StakeScope/internal/calculator"
	"StakeScope/internal/model"
)

// Phase is the lifecycle position of the current identity lookup.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseFetching  Phase = "fetching"
	PhaseResolved  Phase = "resolved" // record present, no estimate (zero points)
	PhaseEstimated Phase = "estimated"
	PhaseNotFound  Phase = "not_found"
	PhaseFailed    Phase = "failed"
)

// User-facing messages.
const (
	MsgEmptyIdentity = "Please enter a wallet address."
	MsgNotFound      = "No staking points found for this address"
	MsgFetchFailed   = "Error fetching staking points. Please try again."
	MsgInvalidTotal  = "Global staking points are unavailable right now. Please try again."
)

var (
	// ErrEmptyIdentity rejects blank identities before any network call.
	ErrEmptyIdentity = errors.New("identity must not be empty")
	// ErrInvalidBoost rejects multipliers outside model.BoostOptions.
	ErrInvalidBoost = errors.New("unsupported boost multiplier")
)

// State is the full session record. The zero value is not ready; use New.
type State struct {
	Phase      Phase                 `json:"phase"`
	Identity   string                `json:"identity,omitempty"`
	Generation uint64                `json:"generation"`
	Record     *model.IdentityPoints `json:"record,omitempty"`
	Estimate   *model.Estimate       `json:"estimate,omitempty"`
	Boost      int                   `json:"boost"`
	// Info is an informational message, Error a failure message; at most one is set.
	Info             string `json:"info,omitempty"`
	Error            string `json:"error,omitempty"`
	ShowCalculations bool   `json:"show_calculations"`
	ShowGuide        bool   `json:"show_guide"`
}

// New returns an idle session with a 1x boost.
func New() State {
	return State{Phase: PhaseIdle, Boost: 1}
}

// Submit starts a lookup for identity and returns its generation. The previous
// record and estimate are dropped so nothing from an older query is shown
// while fetching. A blank identity sets a validation message, issues no
// generation and leaves the previous result in place.
func (s *State) Submit(identity string) (uint64, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		s.Info = ""
		s.Error = MsgEmptyIdentity
		return 0, ErrEmptyIdentity
	}
	s.Generation++
	s.Phase = PhaseFetching
	s.Identity = identity
	s.clearResult()
	return s.Generation, nil
}

// Current reports whether gen is the latest issued lookup.
func (s *State) Current(gen uint64) bool {
	return gen != 0 && gen == s.Generation
}

// Resolve applies a successful lookup. It returns false when gen is stale.
// The boost resets to 1 on every applied resolution.
func (s *State) Resolve(gen uint64, rec model.IdentityPoints, globalTotal, pool float64) bool {
	if !s.Current(gen) {
		return false
	}
	s.Record = &rec
	s.Boost = 1
	s.Info = ""
	s.Error = ""

	est, err := calculator.NewEstimate(rec.Points, globalTotal, pool)
	switch {
	case err == nil:
		s.Estimate = est
		s.Phase = PhaseEstimated
	case errors.Is(err, calculator.ErrInvalidTotal):
		s.Estimate = nil
		s.Phase = PhaseFailed
		s.Error = MsgInvalidTotal
	default:
		s.Estimate = nil
		s.Phase = PhaseResolved
	}
	return true
}

// MarkNotFound applies an explicit no-record answer and clears any estimate.
func (s *State) MarkNotFound(gen uint64) bool {
	if !s.Current(gen) {
		return false
	}
	s.clearResult()
	s.Phase = PhaseNotFound
	s.Info = MsgNotFound
	return true
}

// MarkFailed applies a transport failure and clears any estimate.
func (s *State) MarkFailed(gen uint64) bool {
	if !s.Current(gen) {
		return false
	}
	s.clearResult()
	s.Phase = PhaseFailed
	s.Error = MsgFetchFailed
	return true
}

// SetBoost selects a display multiplier. It never triggers a fetch.
func (s *State) SetBoost(multiplier int) error {
	if !slices.Contains(model.BoostOptions, multiplier) {
		return fmt.Errorf("%w: %d", ErrInvalidBoost, multiplier)
	}
	s.Boost = multiplier
	return nil
}

func (s *State) ToggleCalculations() { s.ShowCalculations = !s.ShowCalculations }

func (s *State) ToggleGuide() { s.ShowGuide = !s.ShowGuide }

// HasEstimate reports whether a reward can be displayed.
func (s *State) HasEstimate() bool { return s.Estimate != nil }

func (s *State) clearResult() {
	s.Record = nil
	s.Estimate = nil
	s.Info = ""
	s.Error = ""
}
