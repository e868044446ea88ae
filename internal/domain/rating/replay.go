package rating

import (
	"context"
	"math"
	"time"

	"github.com/robostats/scoutrank/internal/domain/model"
	"github.com/robostats/scoutrank/pkg/logger"
	"github.com/robostats/scoutrank/pkg/metrics"
)

// Result summarizes one replay over a region.
type Result struct {
	Version    string
	Matches    int
	Skipped    int
	Analyzed   int
	Correct    int
	Accuracy   float64
	StdDev     float64
	ReplayedAt time.Time
}

// Engine replays a region's matches in chronological order, mutating the
// region's teams and storing a pre-match prediction on every replayed match.
// Replay is deterministic: the same region contents always produce
// bit-identical ratings.
type Engine struct {
	cfg Config
	log logger.Logger
	now func() time.Time
}

// NewEngine creates a replay engine for one configuration.
func NewEngine(cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("rating")
	}
	return e
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log logger.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Replay resets every team to the baseline, seeds EPA from the earliest
// loaded matches, then walks every loaded match in chronological order
// applying Elo and EPA updates.
func (e *Engine) Replay(ctx context.Context, r *model.Region) (*Result, error) {
	started := e.now()
	matches := r.Matches()

	stddev := scoreStdDev(matches)
	seed := e.seedEPA(matches)

	for _, t := range r.Teams() {
		t.Elo = e.cfg.InitialElo
		t.EPA = seed
		t.MatchesPlayed = 0
		t.Loaded = true
	}

	res := &Result{
		Version:    e.cfg.Version,
		StdDev:     stddev,
		ReplayedAt: started,
	}

	for _, ev := range r.Events() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.cfg.Excluded(ev.Type) {
			continue
		}
		unofficial := !ev.Type.Official()

		ev.SortMatches()
		for _, m := range ev.Matches {
			if !m.Loaded || !validParticipants(m) {
				res.Skipped++
				continue
			}
			e.replayMatch(r, m, seed, stddev, unofficial)
			res.Matches++

			// A tied score satisfies either predicted side.
			predictedRed := m.PredictedWinProbability >= 0.5
			if m.Red.Total == m.Blue.Total || predictedRed == (m.Red.Total > m.Blue.Total) {
				res.Correct++
			}
			res.Analyzed++
		}
	}

	if res.Analyzed > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.Analyzed)
	}

	metrics.ObserveReplayDuration(float64(e.now().Sub(started).Milliseconds()))
	metrics.AddReplayMatches(res.Matches)
	metrics.SetPredictionAccuracy(res.Accuracy)
	metrics.UpdateRegionSize(r.TeamCount(), r.EventCount())

	e.log.Info(ctx, "replay complete",
		logger.String("version", e.cfg.Version),
		logger.Int("matches", res.Matches),
		logger.Int("skipped", res.Skipped),
		logger.Float64("accuracy", res.Accuracy),
	)
	return res, nil
}

func validParticipants(m *model.Match) bool {
	return m.Red1.Valid() && m.Red2.Valid() && m.Blue1.Valid() && m.Blue2.Valid()
}

// participant resolves one team, admitting a number absent from the region
// (an unresolved cache record) at the same baseline every reset applies.
func (e *Engine) participant(r *model.Region, n model.TeamNumber, seed model.EPA) *model.Team {
	if t := r.Team(n); t != nil {
		return t
	}
	t := r.AddTeam(n)
	t.Elo = e.cfg.InitialElo
	t.EPA = seed
	t.Loaded = true
	return t
}

// replayMatch stores the pre-match prediction then applies the updates.
func (e *Engine) replayMatch(r *model.Region, m *model.Match, seed model.EPA, stddev float64, unofficial bool) {
	red1 := e.participant(r, m.Red1, seed)
	red2 := e.participant(r, m.Red2, seed)
	blue1 := e.participant(r, m.Blue1, seed)
	blue2 := e.participant(r, m.Blue2, seed)

	redEPA := red1.EPA.Add(red2.EPA)
	blueEPA := blue1.EPA.Add(blue2.EPA)
	m.EPAAtPrediction = model.EPASnapshot{Red: redEPA, Blue: blueEPA}

	redElo := red1.Elo + red2.Elo
	blueElo := blue1.Elo + blue2.Elo
	m.PredictedWinProbability = WinProbability(e.cfg, redElo, blueElo, redEPA, blueEPA, stddev)
	m.PredictionStored = true

	e.updateElo(m, red1, red2, blue1, blue2, stddev, unofficial)

	if m.ID.Phase() != model.PhaseQualification {
		return
	}
	e.updateEPA(m, red1, red2, blue1, blue2, redEPA, blueEPA, unofficial)

	weight := 1.0
	if unofficial {
		weight = e.cfg.UnofficialMatchWeight
	}
	red1.MatchesPlayed += weight
	red2.MatchesPlayed += weight
	blue1.MatchesPlayed += weight
	blue2.MatchesPlayed += weight
}

// updateElo applies the symmetric margin-of-victory Elo delta: every red
// team gains exactly what every blue team loses.
func (e *Engine) updateElo(m *model.Match, red1, red2, blue1, blue2 *model.Team, stddev float64, unofficial bool) {
	predicted := e.cfg.MarginCoefficient * (red1.Elo + red2.Elo - blue1.Elo - blue2.Elo)
	actual := 0.0
	if stddev > 0 {
		actual = (m.Red.Total - m.Blue.Total) / stddev
	}

	var k float64
	if m.ID.Phase() == model.PhaseQualification {
		avg := (red1.MatchesPlayed + red2.MatchesPlayed + blue1.MatchesPlayed + blue2.MatchesPlayed) / 4
		k = e.cfg.eloQualK(avg)
	} else {
		k = e.cfg.ElimK
	}

	delta := k * (actual - predicted)
	if unofficial {
		delta *= e.cfg.UnofficialEloDamping
	}

	red1.Elo += delta
	red2.Elo += delta
	blue1.Elo -= delta
	blue2.Elo -= delta
}

// updateEPA applies the partner-shrinkage update to all four EPA components.
// Each team moves toward its own alliance's residual, discounted by M times
// the opposing alliance's residual; pre-match alliance sums are used for
// every residual so update order cannot matter.
func (e *Engine) updateEPA(m *model.Match, red1, red2, blue1, blue2 *model.Team, redEPA, blueEPA model.EPA, unofficial bool) {
	damp := 1.0
	if unofficial {
		damp = e.cfg.UnofficialEPADamping
	}

	redRes := model.EPA{
		Total:            m.Red.Total - redEPA.Total,
		Auto:             m.Red.Auto - redEPA.Auto,
		DriverControlled: m.Red.DriverControlled - redEPA.DriverControlled,
		Endgame:          m.Red.Endgame - redEPA.Endgame,
	}
	blueRes := model.EPA{
		Total:            m.Blue.Total - blueEPA.Total,
		Auto:             m.Blue.Auto - blueEPA.Auto,
		DriverControlled: m.Blue.DriverControlled - blueEPA.DriverControlled,
		Endgame:          m.Blue.Endgame - blueEPA.Endgame,
	}

	apply := func(t *model.Team, own, opp model.EPA) {
		k := epaLearningRate(t.MatchesPlayed)
		shrink := epaShrinkage(t.MatchesPlayed)
		scale := k / (1 + shrink) * damp

		t.EPA.Total += scale * (own.Total - shrink*opp.Total)
		t.EPA.Auto += scale * (own.Auto - shrink*opp.Auto)
		t.EPA.DriverControlled += scale * (own.DriverControlled - shrink*opp.DriverControlled)
		t.EPA.Endgame += scale * (own.Endgame - shrink*opp.Endgame)
	}

	apply(red1, redRes, blueRes)
	apply(red2, redRes, blueRes)
	apply(blue1, blueRes, redRes)
	apply(blue2, blueRes, redRes)
}

// seedEPA averages the earliest loaded matches' alliance scores and halves
// them into a one-team share, per component.
func (e *Engine) seedEPA(matches []*model.Match) model.EPA {
	var sum model.EPA
	count := 0
	for _, m := range matches {
		if !m.Loaded {
			continue
		}
		sum = sum.Add(model.EPA{
			Total:            m.Red.Total + m.Blue.Total,
			Auto:             m.Red.Auto + m.Blue.Auto,
			DriverControlled: m.Red.DriverControlled + m.Blue.DriverControlled,
			Endgame:          m.Red.Endgame + m.Blue.Endgame,
		})
		count++
		if count == e.cfg.SeedMatchCount {
			break
		}
	}
	if count == 0 {
		return model.EPA{}
	}

	// Each match contributes two alliance scores; divide again by two for
	// the one-team share.
	n := float64(count * 2 * 2)
	return model.EPA{
		Total:            sum.Total / n,
		Auto:             sum.Auto / n,
		DriverControlled: sum.DriverControlled / n,
		Endgame:          sum.Endgame / n,
	}
}

// scoreStdDev is the population standard deviation of all loaded alliance
// scores.
func scoreStdDev(matches []*model.Match) float64 {
	mean := 0.0
	n := 0
	for _, m := range matches {
		if !m.Loaded {
			continue
		}
		mean += m.Red.Total + m.Blue.Total
		n += 2
	}
	if n == 0 {
		return 0
	}
	mean /= float64(n)

	sum := 0.0
	for _, m := range matches {
		if !m.Loaded {
			continue
		}
		sum += (m.Red.Total - mean) * (m.Red.Total - mean)
		sum += (m.Blue.Total - mean) * (m.Blue.Total - mean)
	}
	return math.Sqrt(sum / float64(n))
}
