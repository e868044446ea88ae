package rating

// Experience-dependent schedules. All three are continuous and monotone in
// the match count so a team's update weight never jumps.

// epaLearningRate is the per-team EPA step size: 0.5 for a team's first two
// matches, decaying linearly to 0.3 by its eighth.
func epaLearningRate(matches float64) float64 {
	switch {
	case matches <= 2:
		return 0.5
	case matches >= 8:
		return 0.3
	default:
		return 0.5 - (matches-2)/30
	}
}

// epaShrinkage is the partner-attribution weight M: an experienced team's
// update discounts the opposing alliance's residual. Zero for the first four
// matches, ramping to the 1/3 cap by twelve.
func epaShrinkage(matches float64) float64 {
	switch {
	case matches <= 4:
		return 0
	case matches >= 12:
		return 1.0 / 3.0
	default:
		return (matches - 4) / 24
	}
}

// eloQualK is the qualification Elo gain factor, decaying with the average
// experience of the four participants.
func (c Config) eloQualK(avgMatches float64) float64 {
	if avgMatches >= c.QualKDecayMatches {
		return c.QualKMin
	}
	if avgMatches < 0 {
		avgMatches = 0
	}
	return c.QualKMax - (c.QualKMax-c.QualKMin)*avgMatches/c.QualKDecayMatches
}
