// Package upstream provides the batched fetch adapter for the external
// competition data source.
package upstream

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/robostats/scoutrank/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds one upstream round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithSeason selects the competition season substituted into queries.
func WithSeason(season int) Option {
	return func(c *Client) {
		if season > 0 {
			c.season = season
		}
	}
}

// WithMaxBatchSize caps keys per bulk round trip.
func WithMaxBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBatchSize = n
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
