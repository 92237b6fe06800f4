package calculator

import (
	"errors"
	"math"

	"StakeScope/internal/model"
)

var (
	// ErrNoEstimate means the identity has no positive points, so no reward applies.
	ErrNoEstimate = errors.New("no estimate for non-positive points")
	// ErrInvalidTotal means the global points total cannot be used as a divisor.
	ErrInvalidTotal = errors.New("global points total must be positive and finite")
)

// EstimateReward returns the proportional share of the reward pool:
// (identityPoints / globalTotal) * pool.
func EstimateReward(identityPoints, globalTotal, pool float64) (float64, error) {
	if !isFinite(identityPoints) || identityPoints <= 0 {
		return 0, ErrNoEstimate
	}
	if !isFinite(globalTotal) || globalTotal <= 0 {
		return 0, ErrInvalidTotal
	}
	return identityPoints / globalTotal * pool, nil
}

// NewEstimate builds an Estimate, propagating the EstimateReward errors.
func NewEstimate(identityPoints, globalTotal, pool float64) (*model.Estimate, error) {
	reward, err := EstimateReward(identityPoints, globalTotal, pool)
	if err != nil {
		return nil, err
	}
	return &model.Estimate{
		IdentityPoints: identityPoints,
		GlobalPoints:   globalTotal,
		BaseReward:     reward,
	}, nil
}

// ApplyBoost scales a base reward by the selected multiplier.
// Multipliers below 1 are treated as 1.
func ApplyBoost(reward float64, multiplier int) float64 {
	if multiplier < 1 {
		multiplier = 1
	}
	return reward * float64(multiplier)
}

// Breakdown derives the display values of an estimate. price may be nil when no
// quote has been fetched yet; the peak-price value is always filled in.
func Breakdown(est model.Estimate, boost int, price *model.PriceQuote, consts model.RewardConstants) model.RewardView {
	if boost < 1 {
		boost = 1
	}
	v := model.RewardView{
		Boost:            boost,
		BaseReward:       est.BaseReward,
		Reward:           ApplyBoost(est.BaseReward, boost),
		PeakPriceUSD:     consts.PeakPriceUSD,
		BasePeakValueUSD: est.BaseReward * consts.PeakPriceUSD,
	}
	v.PeakValueUSD = ApplyBoost(v.BasePeakValueUSD, boost)

	if price != nil {
		v.HasPrice = true
		v.PriceUSD = price.USD
		v.BaseValueUSD = est.BaseReward * price.USD
		v.ValueUSD = ApplyBoost(v.BaseValueUSD, boost)
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
