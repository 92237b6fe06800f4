package model

import "time"

// PriceQuote is a USD spot price for one asset.
type PriceQuote struct {
	AssetID   string    `json:"asset_id"`
	USD       float64   `json:"usd"`
	FetchedAt time.Time `json:"fetched_at"`
}
