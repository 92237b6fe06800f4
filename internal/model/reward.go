package model

// RewardConstants are the airdrop parameters fixed for the process lifetime.
type RewardConstants struct {
	TotalRewardPool float64 `json:"total_reward_pool"`
	PeakPriceUSD    float64 `json:"peak_price_usd"`
}

// DefaultRewardConstants is the ENKI airdrop: 400,000 ENKI and an ATH of $18.38.
var DefaultRewardConstants = RewardConstants{
	TotalRewardPool: 400_000,
	PeakPriceUSD:    18.38,
}

// BoostOptions are the multipliers a user may select. 1 is the implicit default.
var BoostOptions = []int{1, 2, 5, 10}

// Estimate is the unboosted reward derived from one identity lookup.
type Estimate struct {
	IdentityPoints float64 `json:"identity_points"`
	GlobalPoints   float64 `json:"global_points"`
	BaseReward     float64 `json:"base_reward"`
}

// RewardView is an Estimate with boost and prices applied, ready for display.
// Base* fields are the unboosted counterparts used in the calculation breakdown.
type RewardView struct {
	Boost            int     `json:"boost"`
	BaseReward       float64 `json:"base_reward"`
	Reward           float64 `json:"reward"`
	HasPrice         bool    `json:"has_price"`
	PriceUSD         float64 `json:"price_usd,omitempty"`
	BaseValueUSD     float64 `json:"base_value_usd,omitempty"`
	ValueUSD         float64 `json:"value_usd,omitempty"`
	PeakPriceUSD     float64 `json:"peak_price_usd"`
	BasePeakValueUSD float64 `json:"base_peak_value_usd"`
	PeakValueUSD     float64 `json:"peak_value_usd"`
}
