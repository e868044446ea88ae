// Package synth generates synthetic seasons for backtesting the rating
// engine. Teams get a latent strength, matches are scheduled across a
// sequence of events, and scores are drawn from alliance strength plus
// noise, so replay accuracy can be measured against a known ground truth.
package synth

import (
	"fmt"
	"math/rand"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// Score decomposition shares: autonomous, driver-controlled and endgame
// portions of a synthetic alliance score.
const (
	autoShare    = 0.25
	dcShare      = 0.50
	endgameShare = 0.25
)

// Config shapes one synthetic season.
type Config struct {
	// Teams is the region size.
	Teams int

	// Events is the number of qualifier events, played in sequence.
	Events int

	// QualRounds is how many times each event cycles its roster through
	// qualification matches.
	QualRounds int

	// Seed makes the season reproducible.
	Seed int64

	// BaseScore and StrengthSpread shape the latent team strengths;
	// Noise is the per-match score jitter.
	BaseScore      float64
	StrengthSpread float64
	Noise          float64

	// ElimAlliances enables a small elimination bracket per event among
	// the strongest participants. Zero disables brackets.
	ElimAlliances int
}

// DefaultConfig is a medium-sized season.
func DefaultConfig() Config {
	return Config{
		Teams:          40,
		Events:         4,
		QualRounds:     5,
		Seed:           1,
		BaseScore:      50,
		StrengthSpread: 15,
		Noise:          12,
		ElimAlliances:  4,
	}
}

// Generator produces regions from a config.
type Generator struct {
	cfg Config
	rng *rand.Rand

	// Latent one-team scoring strengths, indexed by team number.
	strengths map[model.TeamNumber]float64
}

// New creates a generator. The same config always generates the same season.
func New(cfg Config) *Generator {
	g := &Generator{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // reproducibility over entropy
		strengths: make(map[model.TeamNumber]float64, cfg.Teams),
	}
	for i := 1; i <= cfg.Teams; i++ {
		n := model.TeamNumber(i)
		s := cfg.BaseScore/2 + g.rng.NormFloat64()*cfg.StrengthSpread/2
		if s < 1 {
			s = 1
		}
		g.strengths[n] = s
	}
	return g
}

// Strength exposes a team's latent strength for accuracy checks.
func (g *Generator) Strength(n model.TeamNumber) float64 { return g.strengths[n] }

// Region builds the full synthetic season as a replay-ready region.
func (g *Generator) Region() *model.Region {
	r := model.NewRegion()
	for i := 1; i <= g.cfg.Teams; i++ {
		t := r.AddTeam(model.TeamNumber(i))
		t.Name = fmt.Sprintf("Synth %d", i)
	}

	const dayMillis = int64(24 * 60 * 60 * 1000)
	for e := 0; e < g.cfg.Events; e++ {
		start := int64(e+1) * 7 * dayMillis
		ev := r.AddEvent(&model.Event{
			Code:  model.EventCode(fmt.Sprintf("SYNQ%d", e+1)),
			Name:  fmt.Sprintf("Synthetic Qualifier %d", e+1),
			Start: start,
			End:   start + dayMillis,
			Type:  model.EventTypeQualifier,
		})
		g.fillEvent(r, ev, start)
	}
	return r
}

// fillEvent schedules and scores qualification rounds, then an optional
// elimination bracket among the best performers.
func (g *Generator) fillEvent(r *model.Region, ev *model.Event, start int64) {
	roster := make([]model.TeamNumber, 0, g.cfg.Teams)
	for i := 1; i <= g.cfg.Teams; i++ {
		roster = append(roster, model.TeamNumber(i))
	}

	const matchGapMillis = int64(10 * 60 * 1000)
	id := model.MatchID(0)
	when := start

	for round := 0; round < g.cfg.QualRounds; round++ {
		g.rng.Shuffle(len(roster), func(i, j int) {
			roster[i], roster[j] = roster[j], roster[i]
		})
		for i := 0; i+3 < len(roster); i += 4 {
			id++
			when += matchGapMillis
			g.addScoredMatch(ev, id, when, roster[i], roster[i+1], roster[i+2], roster[i+3])
		}
	}

	if g.cfg.ElimAlliances >= 2 {
		top := g.topTeams(g.cfg.ElimAlliances * 2)
		elimID := model.QualificationIDThreshold
		for i := 0; i+3 < len(top); i += 4 {
			elimID++
			when += matchGapMillis
			g.addScoredMatch(ev, elimID, when, top[i], top[i+3], top[i+1], top[i+2])
		}
	}
}

// topTeams returns the n strongest team numbers by latent strength.
func (g *Generator) topTeams(n int) []model.TeamNumber {
	out := make([]model.TeamNumber, 0, g.cfg.Teams)
	for i := 1; i <= g.cfg.Teams; i++ {
		out = append(out, model.TeamNumber(i))
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if g.strengths[out[j]] > g.strengths[out[i]] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

func (g *Generator) addScoredMatch(ev *model.Event, id model.MatchID, when int64, r1, r2, b1, b2 model.TeamNumber) {
	m := &model.Match{
		ID: id, Start: when, Played: true,
		Red1: r1, Red2: r2, Blue1: b1, Blue2: b2,
	}
	m.SetScores(g.allianceScore(r1, r2), g.allianceScore(b1, b2))
	ev.AddMatch(m)
}

// allianceScore draws one alliance's score from the teams' latent strengths
// plus noise, decomposed into the category shares.
func (g *Generator) allianceScore(a, b model.TeamNumber) model.AllianceScore {
	total := g.strengths[a] + g.strengths[b] + g.rng.NormFloat64()*g.cfg.Noise
	if total < 0 {
		total = 0
	}
	return model.AllianceScore{
		Total:            total,
		Auto:             total * autoShare,
		DriverControlled: total * dcShare,
		Endgame:          total * endgameShare,
	}
}
