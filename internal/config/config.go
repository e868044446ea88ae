// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load() layers defaults, optional YAML file, and SCOUTRANK_* env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3734".
	Addr string `koanf:"addr"`

	// DataFile is the path of the durable cache document.
	DataFile string `koanf:"data_file"`

	// CacheTTLHours is the record age in hours after which a cached record
	// is considered stale and eligible for re-fetch.
	CacheTTLHours int `koanf:"cache_ttl_hours"`

	// UpstreamURL is the query endpoint of the external data source.
	UpstreamURL string `koanf:"upstream_url"`

	// Season selects the competition season substituted into queries.
	Season int `koanf:"season"`

	// MaxBatchSize caps teams per bulk upstream request.
	MaxBatchSize int `koanf:"max_batch_size"`

	// UpstreamRPS limits upstream request rate (requests per second).
	UpstreamRPS float64 `koanf:"upstream_rps"`

	// UpstreamTimeoutMS bounds one upstream round trip.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// SeedEvent is the event code a region build starts from.
	SeedEvent string `koanf:"seed_event"`

	// EventCodeFilter restricts region traversal to event codes containing
	// this marker. Empty means no filter.
	EventCodeFilter string `koanf:"event_code_filter"`

	// SeedMatchCount is how many of the chronologically earliest loaded
	// matches seed the league-average EPA baseline.
	SeedMatchCount int `koanf:"seed_match_count"`

	// ExcludedEventTypes lists event types skipped entirely during replay.
	ExcludedEventTypes []string `koanf:"excluded_event_types"`

	// EloWeight and EPAWeight blend the two normalized differentials in
	// win-probability predictions. They should sum to 1.
	EloWeight float64 `koanf:"elo_weight"`
	EPAWeight float64 `koanf:"epa_weight"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":3734",
		DataFile:          "data.json",
		CacheTTLHours:     7 * 24,
		UpstreamURL:       "https://api.ftcscout.org/graphql",
		Season:            2024,
		MaxBatchSize:      25,
		UpstreamRPS:       4,
		UpstreamTimeoutMS: 30_000,
		SeedEvent:         "NLCMP",
		EventCodeFilter:   "",
		SeedMatchCount:    5,
		EloWeight:         0.65,
		EPAWeight:         0.35,
	}
}
