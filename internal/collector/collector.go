package collector

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"StakeScope/internal/metrics"
	"StakeScope/internal/model"
)

// Metric source labels.
const (
	SourcePrice          = "price"
	SourceGlobalPoints   = "global_points"
	SourceIdentityPoints = "identity_points"
)

// Collector issues single-attempt fetches with a per-call timeout, recording
// outcome metrics and logging failures.
type Collector struct {
	Prices  PriceFetcher
	Points  PointsFetcher
	AssetID string
	Timeout time.Duration
	Metrics *metrics.Metrics
	Log     *slog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(prices PriceFetcher, points PointsFetcher, assetID string, timeout time.Duration, m *metrics.Metrics, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		Prices:  prices,
		Points:  points,
		AssetID: assetID,
		Timeout: timeout,
		Metrics: m,
		Log:     log,
	}
}

// Price fetches the spot price of the configured asset.
func (c *Collector) Price(ctx context.Context) (model.PriceQuote, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	quote, err := c.Prices.FetchPrice(ctx, c.AssetID)
	c.observe(SourcePrice, err, start)
	if err != nil {
		c.Log.Warn("price fetch failed", "source", c.Prices.Name(), "asset", c.AssetID, "error", err)
		return model.PriceQuote{}, err
	}
	c.Metrics.SetPrice(quote.USD)
	return quote, nil
}

// GlobalPoints fetches the aggregate points total.
func (c *Collector) GlobalPoints(ctx context.Context) (float64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	total, err := c.Points.FetchGlobalPoints(ctx)
	c.observe(SourceGlobalPoints, err, start)
	if err != nil {
		c.Log.Warn("global points fetch failed", "source", c.Points.Name(), "error", err)
		return 0, err
	}
	return total, nil
}

// IdentityPoints fetches the points of one identity.
func (c *Collector) IdentityPoints(ctx context.Context, identity string) (model.IdentityPoints, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rec, err := c.Points.FetchIdentityPoints(ctx, identity)
	c.observe(SourceIdentityPoints, err, start)
	switch {
	case errors.Is(err, ErrNotFound):
		c.Log.Info("no staking points for identity", "identity", identity)
	case err != nil:
		c.Log.Error("identity points fetch failed", "identity", identity, "error", err)
	}
	return rec, err
}

func (c *Collector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

func (c *Collector) observe(source string, err error, start time.Time) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}
	c.Metrics.ObserveFetch(source, outcome, time.Since(start))
}

// MockPriceFetcher returns a fixed price or error, counting calls.
type MockPriceFetcher struct {
	mu    sync.Mutex
	Price float64
	Err   error
	calls int
}

func (m *MockPriceFetcher) Name() string { return "mock" }

func (m *MockPriceFetcher) FetchPrice(_ context.Context, assetID string) (model.PriceQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return model.PriceQuote{}, m.Err
	}
	return model.PriceQuote{AssetID: assetID, USD: m.Price, FetchedAt: time.Now()}, nil
}

func (m *MockPriceFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockPointsFetcher serves points from in-memory data. Identities missing from
// Identities answer ErrNotFound. Gate, when set, blocks identity lookups until
// a value for that identity is received.
type MockPointsFetcher struct {
	mu          sync.Mutex
	Global      float64
	GlobalErr   error
	Identities  map[string]float64
	IdentityErr error
	Gate        map[string]chan struct{}
	calls       int
	completed   int
}

func (m *MockPointsFetcher) Name() string { return "mock" }

func (m *MockPointsFetcher) FetchGlobalPoints(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GlobalErr != nil {
		return 0, m.GlobalErr
	}
	return m.Global, nil
}

func (m *MockPointsFetcher) FetchIdentityPoints(ctx context.Context, identity string) (model.IdentityPoints, error) {
	m.mu.Lock()
	m.calls++
	gate := m.Gate[identity]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.IdentityPoints{}, errors.Join(ErrTransport, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
	if m.IdentityErr != nil {
		return model.IdentityPoints{}, m.IdentityErr
	}
	points, ok := m.Identities[identity]
	if !ok {
		return model.IdentityPoints{}, ErrNotFound
	}
	return model.IdentityPoints{Identity: identity, Points: points}, nil
}

// IdentityCompleted reports how many identity lookups have returned.
func (m *MockPointsFetcher) IdentityCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed
}

// IdentityCalls reports how many identity lookups were issued.
func (m *MockPointsFetcher) IdentityCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
