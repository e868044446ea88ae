// Package upstream provides the batched fetch adapter for the external
// competition data source.
//
// The upstream exposes one GraphQL query endpoint. Requests are parameterized
// template documents (team number / event code / season substituted); bulk
// team requests alias N sub-queries into a single round trip. Rate limiting
// uses a token bucket and every round trip goes through a circuit breaker.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/robostats/scoutrank/pkg/logger"
	"github.com/robostats/scoutrank/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultMaxBatchSize = 25
	defaultTimeout      = 30 * time.Second
	defaultRPS          = 4
	defaultSeason       = 2024

	breakerMaxRequests  = 3
	breakerInterval     = 60 * time.Second
	breakerOpenTimeout  = 30 * time.Second
	breakerTripFailures = 3

	errorBodyLimit = 200
)

// Client is the HTTP client for the upstream query endpoint.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	season       int
	maxBatchSize int
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker
	log          logger.Logger
}

// New creates an upstream client with configuration options.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      baseURL,
		season:       defaultSeason,
		maxBatchSize: defaultMaxBatchSize,
		limiter:      rate.NewLimiter(rate.Limit(defaultRPS), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Named("upstream")
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream-query",
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > breakerTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("circuit", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return c
}

// MaxBatchSize reports the cap on keys per bulk round trip. Callers split
// larger requests into chunks of this size.
func (c *Client) MaxBatchSize() int { return c.maxBatchSize }

// queryRequest is the GraphQL-over-HTTP request envelope.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the GraphQL-over-HTTP response envelope.
type queryResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query performs one rate-limited round trip and returns the data object.
// kind labels the round trip in metrics (team, teams, event, events).
func (c *Client) query(ctx context.Context, kind, q string) (map[string]json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	requestID := uuid.New().String()
	start := time.Now()
	metrics.RecordUpstreamRequest(kind)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, requestID, q)
	})

	elapsed := time.Since(start)
	metrics.ObserveUpstreamLatency(float64(elapsed.Milliseconds()))

	if err != nil {
		metrics.RecordUpstreamError(kind)
		c.log.Warn(ctx, "upstream query failed",
			logger.String("kind", kind),
			logger.String("request_id", requestID),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	c.log.Debug(ctx, "upstream query ok",
		logger.String("kind", kind),
		logger.String("request_id", requestID),
		logger.Duration("elapsed", elapsed),
	)

	data, _ := result.(map[string]json.RawMessage)
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, requestID, q string) (interface{}, error) {
	body, err := json.Marshal(queryRequest{Query: q})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, truncate(respBody, errorBodyLimit))
	}

	var decoded queryResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("upstream query error: %s", decoded.Errors[0].Message)
	}

	return decoded.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
