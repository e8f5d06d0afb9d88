package main

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/lavalamp/config"
	"github.com/pthm-cable/lavalamp/game"
	"github.com/pthm-cable/lavalamp/telemetry"
)

// warmupWindows are skipped while the initial blobs sort themselves out.
const warmupWindows = 2

// FitnessEvaluator runs headless lamps and scores their blob population.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	target      float64
	statsWindow float64

	mu          sync.Mutex
	lastSummary summary
}

// summary describes the population over one evaluation.
type summary struct {
	MeanBlobs float64
	StdBlobs  float64
	Merges    int
	Splits    int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		statsWindow: 5.0,
	}
}

// LastSummary returns the population summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// runResult holds the windows collected from a single run.
type runResult struct {
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better): the
// mean squared deviation of the windowed blob count from the target, over
// every post-warmup window of every seed.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var counts []float64
	var s summary
	for _, r := range results {
		for i, w := range r.windows {
			if i < warmupWindows {
				continue
			}
			counts = append(counts, float64(w.BlobCount))
			s.Merges += w.Merges
			s.Splits += w.Splits
		}
	}

	fitness := populationError(counts, fe.target)
	if len(counts) > 0 {
		s.MeanBlobs, s.StdBlobs = stat.PopMeanStdDev(counts, nil)
	}

	fe.mu.Lock()
	fe.lastSummary = s
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 60,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		slog.Error("failed to create lamp", "seed", seed, "error", err)
		return result
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return result
}

// copyConfig returns a copy of the base config safe to mutate.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// populationError is the mean squared deviation of counts from target.
// No samples scores as if the lamp held no blobs at all.
func populationError(counts []float64, target float64) float64 {
	if len(counts) == 0 {
		return target * target
	}
	var sum float64
	for _, c := range counts {
		d := c - target
		sum += d * d
	}
	return sum / float64(len(counts))
}
