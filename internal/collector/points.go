package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"StakeScope/internal/model"
)

// DefaultPointsEndpoint is the ENKI GraphQL API.
const DefaultPointsEndpoint = "https://prod.api.enkixyz.com/"

const (
	globalPointsQuery = `query {
  globalStakingPoints {
    points
  }
}`
	identityPointsQuery = `query ($user: String!) {
  stakingPoints(user: $user) {
    points
  }
}`
)

// GraphQLPointsFetcher implements PointsFetcher against the staking points GraphQL API.
type GraphQLPointsFetcher struct {
	Endpoint string
	Client   *http.Client
}

// NewGraphQLPointsFetcher creates a fetcher with optional proxy support.
func NewGraphQLPointsFetcher(endpoint, proxyURL string) *GraphQLPointsFetcher {
	if endpoint == "" {
		endpoint = DefaultPointsEndpoint
	}
	return &GraphQLPointsFetcher{
		Endpoint: endpoint,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *GraphQLPointsFetcher) Name() string { return "graphql" }

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// pointsField is the `{ points }` selection; nil Points means the field was null or absent.
type pointsField struct {
	Points *flexFloat `json:"points"`
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse points %s: %w", string(data), err)
	}
	*f = flexFloat(v)
	return nil
}

func (f *GraphQLPointsFetcher) FetchGlobalPoints(ctx context.Context) (float64, error) {
	var data struct {
		GlobalStakingPoints *pointsField `json:"globalStakingPoints"`
	}
	if err := f.do(ctx, graphQLRequest{Query: globalPointsQuery}, &data); err != nil {
		return 0, err
	}
	if data.GlobalStakingPoints == nil || data.GlobalStakingPoints.Points == nil {
		return 0, fmt.Errorf("%w: global staking points missing from response", ErrTransport)
	}
	total := float64(*data.GlobalStakingPoints.Points)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: global staking points not finite", ErrTransport)
	}
	return total, nil
}

func (f *GraphQLPointsFetcher) FetchIdentityPoints(ctx context.Context, identity string) (model.IdentityPoints, error) {
	var data struct {
		StakingPoints *pointsField `json:"stakingPoints"`
	}
	req := graphQLRequest{
		Query:     identityPointsQuery,
		Variables: map[string]any{"user": identity},
	}
	if err := f.do(ctx, req, &data); err != nil {
		return model.IdentityPoints{}, err
	}
	if data.StakingPoints == nil || data.StakingPoints.Points == nil {
		return model.IdentityPoints{}, fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	return model.IdentityPoints{
		Identity: identity,
		Points:   float64(*data.StakingPoints.Points),
	}, nil
}

// do posts a GraphQL document and decodes its data member into out.
func (f *GraphQLPointsFetcher) do(ctx context.Context, gqlReq graphQLRequest, out any) error {
	payload, err := json.Marshal(gqlReq)
	if err != nil {
		return fmt.Errorf("%w: marshal query: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: points fetch: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: points read body: %w", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: points: status %d, body: %s", ErrTransport, resp.StatusCode, string(body))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: points decode: %w", ErrTransport, err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: points api error: %s", ErrTransport, envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: points decode data: %w", ErrTransport, err)
	}
	return nil
}
