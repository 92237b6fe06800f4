package collector_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakeScope/internal/collector"
)

type gqlBody struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

// graphQLHandler decodes the request, hands it to respond and writes the result.
func graphQLHandler(t *testing.T, respond func(req gqlBody) string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req gqlBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(respond(req)))
	}
}

func newPointsFetcher(t *testing.T, h http.Handler) *collector.GraphQLPointsFetcher {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	f := collector.NewGraphQLPointsFetcher(server.URL, "")
	f.Client = server.Client()
	return f
}

func TestGraphQLGlobalPoints(t *testing.T) {
	t.Parallel()

	f := newPointsFetcher(t, graphQLHandler(t, func(req gqlBody) string {
		assert.Contains(t, req.Query, "globalStakingPoints")
		assert.Empty(t, req.Variables)
		return `{"data":{"globalStakingPoints":{"points":2680000000}}}`
	}))

	total, err := f.FetchGlobalPoints(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2.68e9, total)
}

func TestGraphQLGlobalPointsMissing(t *testing.T) {
	t.Parallel()

	f := newPointsFetcher(t, graphQLHandler(t, func(gqlBody) string {
		return `{"data":{"globalStakingPoints":null}}`
	}))

	_, err := f.FetchGlobalPoints(context.Background())

	assert.ErrorIs(t, err, collector.ErrTransport)
}

func TestGraphQLIdentityPoints(t *testing.T) {
	t.Parallel()

	f := newPointsFetcher(t, graphQLHandler(t, func(req gqlBody) string {
		assert.Contains(t, req.Query, "stakingPoints(user: $user)")
		switch req.Variables["user"] {
		case "0xabc":
			return `{"data":{"stakingPoints":{"points":1000000}}}`
		case "0xstr":
			return `{"data":{"stakingPoints":{"points":"12.5"}}}`
		case "0xnullpoints":
			return `{"data":{"stakingPoints":{"points":null}}}`
		default:
			return `{"data":{"stakingPoints":null}}`
		}
	}))

	rec, err := f.FetchIdentityPoints(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", rec.Identity)
	assert.Equal(t, 1_000_000.0, rec.Points)

	rec, err = f.FetchIdentityPoints(context.Background(), "0xstr")
	require.NoError(t, err)
	assert.Equal(t, 12.5, rec.Points)

	_, err = f.FetchIdentityPoints(context.Background(), "0xnullpoints")
	assert.ErrorIs(t, err, collector.ErrNotFound)

	_, err = f.FetchIdentityPoints(context.Background(), "0xunknown")
	assert.ErrorIs(t, err, collector.ErrNotFound)
}

func TestGraphQLTransportFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":`))
		}},
		{"graphql errors", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"errors":[{"message":"boom"}],"data":null}`))
		}},
		{"bad points", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"stakingPoints":{"points":"lots"}}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPointsFetcher(t, tt.handler)

			_, err := f.FetchIdentityPoints(context.Background(), "0xabc")

			assert.ErrorIs(t, err, collector.ErrTransport)
			assert.NotErrorIs(t, err, collector.ErrNotFound)
		})
	}
}
