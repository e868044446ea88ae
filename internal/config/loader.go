package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SCOUTRANK_CONFIG is set
//  3. env (prefix SCOUTRANK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SCOUTRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SCOUTRANK_ADDR, SCOUTRANK_CACHE_TTL_HOURS, ...
	// Map env keys like SCOUTRANK_DATA_FILE -> data_file (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SCOUTRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "scoutrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataFile == "":
		return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
	case c.UpstreamURL == "":
		return fmt.Errorf("%w: upstream_url must not be empty", ErrInvalidConfig)
	case c.CacheTTLHours <= 0:
		return fmt.Errorf("%w: cache_ttl_hours must be positive", ErrInvalidConfig)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive", ErrInvalidConfig)
	case c.SeedMatchCount <= 0:
		return fmt.Errorf("%w: seed_match_count must be positive", ErrInvalidConfig)
	case c.EloWeight < 0 || c.EPAWeight < 0:
		return fmt.Errorf("%w: prediction weights must be non-negative", ErrInvalidConfig)
	}
	return nil
}
