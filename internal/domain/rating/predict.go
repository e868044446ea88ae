package rating

import (
	"math"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// WinProbability returns the probability that the red alliance wins, from
// summed alliance Elo and EPA. The Elo differential and the EPA margin (in
// score standard deviations) blend inside one logistic, then a second
// logistic sharpens the result toward certainty. Identical alliances yield
// exactly 0.5.
func WinProbability(cfg Config, redElo, blueElo float64, redEPA, blueEPA model.EPA, stddev float64) float64 {
	eloTerm := cfg.EloWeight * (redElo - blueElo) * math.Ln10 / 400
	epaTerm := 0.0
	if stddev > 0 {
		epaTerm = cfg.EPAWeight * (redEPA.Total - blueEPA.Total) / stddev
	}

	p := 1 / (1 + math.Exp(-(eloTerm + epaTerm)))
	return 1 / (1 + math.Exp(-(p*100-50)/cfg.SharpenDivisor))
}
