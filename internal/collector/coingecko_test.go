package collector_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakeScope/internal/collector"
)

func newCoinGecko(t *testing.T, status int, body string) *collector.CoinGeckoFetcher {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/simple/price", r.URL.Path)
		assert.Equal(t, "enki-protocol", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	f := collector.NewCoinGeckoFetcher(server.URL, "")
	f.Client = server.Client()
	return f
}

func TestCoinGeckoParsesPrice(t *testing.T) {
	t.Parallel()

	f := newCoinGecko(t, http.StatusOK, `{"enki-protocol":{"usd":2.5}}`)

	quote, err := f.FetchPrice(context.Background(), "enki-protocol")

	require.NoError(t, err)
	assert.Equal(t, "enki-protocol", quote.AssetID)
	assert.Equal(t, 2.5, quote.USD)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestCoinGeckoUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed", http.StatusOK, `{"enki-protocol":`},
		{"missing asset", http.StatusOK, `{}`},
		{"missing usd", http.StatusOK, `{"enki-protocol":{"eur":2.1}}`},
		{"negative", http.StatusOK, `{"enki-protocol":{"usd":-1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCoinGecko(t, tt.status, tt.body)

			_, err := f.FetchPrice(context.Background(), "enki-protocol")

			assert.ErrorIs(t, err, collector.ErrPriceUnavailable)
		})
	}
}

func TestCoinGeckoNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	f := collector.NewCoinGeckoFetcher(server.URL, "")
	server.Close()

	_, err := f.FetchPrice(context.Background(), "enki-protocol")

	assert.ErrorIs(t, err, collector.ErrPriceUnavailable)
}
