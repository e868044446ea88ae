package region

import "github.com/robostats/scoutrank/pkg/logger"

// Option configures a Builder.
type Option func(*Builder)

// WithEventCodeMarker restricts discovery to event codes containing the
// marker substring. Seed events are always included.
func WithEventCodeMarker(marker string) Option {
	return func(b *Builder) {
		b.codeMarker = marker
	}
}

// WithMaxRounds bounds the discovery walk; the walk fails rather than loop
// forever on pathological cache contents.
func WithMaxRounds(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxRounds = n
		}
	}
}

// WithLogger sets the builder logger.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}
