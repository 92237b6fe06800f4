package model

// StakingPointsKey is the store key holding the last-known global points total.
const StakingPointsKey = "totalStakingPoints"

// IdentityPoints is the staking points record of one address.
type IdentityPoints struct {
	Identity string  `json:"identity"`
	Points   float64 `json:"points"`
}
