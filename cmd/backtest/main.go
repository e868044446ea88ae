// Command backtest replays a synthetic season through the rating engine and
// reports prediction accuracy against the known latent strengths.
package main

import (
	"context"
	"flag"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/robostats/scoutrank/internal/domain/rating"
	"github.com/robostats/scoutrank/internal/synth"
	"github.com/robostats/scoutrank/pkg/logger"
)

func main() {
	cfg := synth.DefaultConfig()
	flag.IntVar(&cfg.Teams, "teams", cfg.Teams, "number of teams in the synthetic region")
	flag.IntVar(&cfg.Events, "events", cfg.Events, "number of qualifier events")
	flag.IntVar(&cfg.QualRounds, "rounds", cfg.QualRounds, "qualification rounds per event")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the season")
	noise := flag.Float64("noise", cfg.Noise, "per-match score noise")
	topN := flag.Int("top", 10, "how many top-rated teams to print")
	flag.Parse()
	cfg.Noise = *noise

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Named("backtest")
	ctx := context.Background()

	runID := uuid.New().String()
	log.Info(ctx, "generating synthetic season",
		logger.String("run_id", runID),
		logger.Int("teams", cfg.Teams),
		logger.Int("events", cfg.Events),
		logger.Int("rounds", cfg.QualRounds),
	)

	gen := synth.New(cfg)
	region := gen.Region()

	engine := rating.NewEngine(rating.V1(), rating.WithLogger(log.Named("rating")))
	res, err := engine.Replay(ctx, region)
	if err != nil {
		log.Error(ctx, "replay failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "backtest complete",
		logger.String("run_id", runID),
		logger.Int("matches", res.Matches),
		logger.Int("analyzed", res.Analyzed),
		logger.Int("correct", res.Correct),
		logger.Float64("accuracy", res.Accuracy),
		logger.Float64("score_stddev", res.StdDev),
	)

	teams := region.Teams()
	sort.Slice(teams, func(i, j int) bool { return teams[i].EPA.Total > teams[j].EPA.Total })
	if *topN > len(teams) {
		*topN = len(teams)
	}
	for i := 0; i < *topN; i++ {
		t := teams[i]
		log.Info(ctx, "top rated team",
			logger.Int("rank", i+1),
			logger.String("team", t.Number.String()),
			logger.Float64("epa", t.EPA.Total),
			logger.Float64("elo", t.Elo),
			logger.Float64("latent_strength", gen.Strength(t.Number)),
		)
	}
}
