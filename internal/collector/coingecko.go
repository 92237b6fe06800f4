package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"StakeScope/internal/model"
)

// DefaultCoinGeckoURL is the public CoinGecko API root.
const DefaultCoinGeckoURL = "https://api.coingecko.com"

// CoinGeckoFetcher implements PriceFetcher using the CoinGecko simple/price API.
type CoinGeckoFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	return &CoinGeckoFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// simplePrice is the simple/price response: asset id -> currency -> price.
type simplePrice map[string]struct {
	USD *float64 `json:"usd"`
}

func (f *CoinGeckoFetcher) FetchPrice(ctx context.Context, assetID string) (model.PriceQuote, error) {
	q := url.Values{}
	q.Set("ids", assetID)
	q.Set("vs_currencies", "usd")
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("%w: creating request: %w", ErrPriceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko fetch: %w", ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko read body: %w", ErrPriceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko: status %d, body: %s", ErrPriceUnavailable, resp.StatusCode, string(body))
	}

	var prices simplePrice
	if err := json.Unmarshal(body, &prices); err != nil {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko decode: %w", ErrPriceUnavailable, err)
	}
	entry, ok := prices[assetID]
	if !ok || entry.USD == nil {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko: no usd price for %q", ErrPriceUnavailable, assetID)
	}
	usd := *entry.USD
	if math.IsNaN(usd) || math.IsInf(usd, 0) || usd < 0 {
		return model.PriceQuote{}, fmt.Errorf("%w: coingecko: invalid price %v", ErrPriceUnavailable, usd)
	}

	return model.PriceQuote{AssetID: assetID, USD: usd, FetchedAt: time.Now()}, nil
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
