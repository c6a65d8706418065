package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/sim"
	"github.com/pthm-cable/gpgpu/telemetry"
)

// frameDT is the simulated time per frame.
const frameDT = float32(1.0 / 60.0)

// FitnessEvaluator runs headless simulations and scores how close their
// moving fraction stays to a target.
type FitnessEvaluator struct {
	params      *ParamVector
	maxFrames   int
	seeds       []int64
	baseConfig  *config.Config
	target      float64
	statsWindow float64

	mu          sync.Mutex
	lastMean    float64 // moving fraction of the most recent Evaluate call
	lastFailure int     // seeds that failed to run in the most recent call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		statsWindow: 2.0,
	}
}

// LastMean returns the mean moving fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastMean() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean
}

// LastFailures returns how many seeds failed in the most recent evaluation.
func (fe *FitnessEvaluator) LastFailures() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastFailure
}

// Fitness weights.
const (
	weightTarget    = 1.0
	weightStability = 0.25
	warmupWindows   = 1 // first window starts from rest and is skipped
	failedFitness   = 1e3
)

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	means := make([]float64, len(fe.seeds))
	var failures int
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(x, s)
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				fitness[idx] = failedFitness
				return
			}
			fitness[idx], means[idx] = fe.score(windows)
		}(i, seed)
	}
	wg.Wait()

	fe.mu.Lock()
	fe.lastMean = stat.Mean(means, nil)
	fe.lastFailure = failures
	fe.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// runSimulation executes a single headless run and returns its windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) ([]telemetry.WindowStats, error) {
	cfg := fe.baseConfig.Clone()
	cfg.Simulation.Seed = seed
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return nil, err
	}

	s, err := sim.New(cfg, sim.Options{Headless: true, StatsWindowSec: fe.statsWindow})
	if err != nil {
		return nil, err
	}
	defer s.Unload()

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(w telemetry.WindowStats) {
		windows = append(windows, w)
	})
	for s.Frame() < int64(fe.maxFrames) {
		s.Update(frameDT)
	}
	return windows, nil
}

// score returns the fitness and mean moving fraction of one run. Fitness is
// the squared distance of the mean from the target plus a penalty on its
// spread across windows.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) (fitness, mean float64) {
	if len(windows) <= warmupWindows {
		return failedFitness, 0
	}
	values := make([]float64, 0, len(windows)-warmupWindows)
	for _, w := range windows[warmupWindows:] {
		values = append(values, w.MovingFractionAvg)
	}

	mean, std := stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	d := mean - fe.target
	return weightTarget*d*d + weightStability*std*std, mean
}
