// Package rating implements the chronological replay that derives Elo and
// EPA ratings for every team in a region. Calculations follow the EPA model
// described at https://www.statbotics.io/blog/epa, blended with a
// margin-of-victory Elo.
package rating

import "github.com/robostats/scoutrank/internal/domain/model"

// Config pins one versioned set of rating constants. Every replay records
// the version it ran with so stored ratings are comparable.
type Config struct {
	Version string

	// InitialElo is every team's rating before its first match.
	InitialElo float64

	// MarginCoefficient converts an Elo differential into a predicted
	// score margin in standard deviations.
	MarginCoefficient float64

	// Qualification Elo K decays linearly from QualKMax to QualKMin over
	// the first QualKDecayMatches average matches of the participants.
	QualKMax          float64
	QualKMin          float64
	QualKDecayMatches float64

	// ElimK is the fixed K for elimination bracket matches.
	ElimK float64

	// EloWeight and EPAWeight blend the two differentials inside the win
	// probability logistic.
	EloWeight float64
	EPAWeight float64

	// SharpenDivisor shapes the second logistic applied to the raw win
	// probability, on the percent scale.
	SharpenDivisor float64

	// Unofficial events contribute damped deltas and fractional matches.
	UnofficialEloDamping  float64
	UnofficialEPADamping  float64
	UnofficialMatchWeight float64

	// SeedMatchCount is how many early loaded matches seed the EPA
	// baseline.
	SeedMatchCount int

	// ExcludedEventTypes never replay at all.
	ExcludedEventTypes []model.EventType
}

// V1 is the canonical configuration.
func V1() Config {
	return Config{
		Version:               "v1",
		InitialElo:            1500,
		MarginCoefficient:     0.004,
		QualKMax:              18,
		QualKMin:              12,
		QualKDecayMatches:     12,
		ElimK:                 3,
		EloWeight:             0.65,
		EPAWeight:             0.35,
		SharpenDivisor:        16,
		UnofficialEloDamping:  0.5,
		UnofficialEPADamping:  0.25,
		UnofficialMatchWeight: 1.0 / 6.0,
		SeedMatchCount:        5,
	}
}

// Excluded reports whether an event type is configured out of the replay.
func (c Config) Excluded(t model.EventType) bool {
	for _, x := range c.ExcludedEventTypes {
		if x == t {
			return true
		}
	}
	return false
}
