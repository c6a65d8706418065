package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/gpgpu/config"
	"github.com/pthm-cable/gpgpu/telemetry"
)

func TestScore(t *testing.T) {
	fe := &FitnessEvaluator{target: 0.25}
	windows := []telemetry.WindowStats{
		{MovingFractionAvg: 0.9}, // warmup, ignored
		{MovingFractionAvg: 0.25},
		{MovingFractionAvg: 0.25},
	}
	fitness, mean := fe.score(windows)
	assert.InDelta(t, 0.25, mean, 1e-12)
	assert.InDelta(t, 0, fitness, 1e-12)

	windows[2].MovingFractionAvg = 0.45
	worse, _ := fe.score(windows)
	assert.Greater(t, worse, fitness)

	none, _ := fe.score(windows[:1])
	assert.Equal(t, float64(failedFitness), none, "runs too short to score are failures")
}

func TestEvaluateHeadless(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Simulation.Backend = config.BackendFeedback
	cfg.Simulation.TextureSize = 8
	cfg.Simulation.Parallel = false
	cfg.Pointer.Enabled = false
	require.NoError(t, cfg.Refresh())

	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 300, []int64{1, 2}, cfg, 0.25)
	fe.statsWindow = 1

	fitness := fe.Evaluate(pv.DefaultVector())
	assert.Less(t, fitness, float64(failedFitness))
	assert.Zero(t, fe.LastFailures())
	assert.GreaterOrEqual(t, fe.LastMean(), 0.0)
	assert.LessOrEqual(t, fe.LastMean(), 1.0)
}
