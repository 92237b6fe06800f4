package collector

import (
	"context"
	"errors"

	"StakeScope/internal/model"
)

var (
	// ErrTransport covers network, status and decoding failures.
	ErrTransport = errors.New("transport failure")
	// ErrNotFound means the points API answered but holds no record for the identity.
	ErrNotFound = errors.New("no staking points found")
	// ErrPriceUnavailable means no usable quote could be obtained.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// PriceFetcher retrieves a spot price for one asset.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, assetID string) (model.PriceQuote, error)
	Name() string
}

// PointsFetcher retrieves the global points total and per-identity points.
type PointsFetcher interface {
	FetchGlobalPoints(ctx context.Context) (float64, error)
	FetchIdentityPoints(ctx context.Context, identity string) (model.IdentityPoints, error)
	Name() string
}
