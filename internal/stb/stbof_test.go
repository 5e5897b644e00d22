package stb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestComputeSTBOFTwoRegimes(t *testing.T) {
	points, spatial := twoRegimeFixture()

	res, err := ComputeSTBOF(points, spatial, baseSTBOFConfig())
	require.NoError(t, err)
	require.Len(t, res.OutlierFactor, len(points))
	require.Len(t, res.ReachDensity, len(points))

	// Values derived by hand from the definition (behavioral epsilon
	// shifts them in the 9th decimal, hence the tolerance).
	wantBRD := []float64{66.666666, 66.666666, 50.0, 25.0, 25.0, 20.0}
	wantOF := []float64{0.875, 0.875, 1.3333333, 0.9, 0.9, 1.25}
	for i := range points {
		assert.InDelta(t, wantBRD[i], res.ReachDensity[i], 1e-5, "ReachDensity[%d]", i)
		assert.InDelta(t, wantOF[i], res.OutlierFactor[i], 1e-6, "OutlierFactor[%d]", i)
	}
}

func TestComputeSTBOFDensitiesStrictlyPositive(t *testing.T) {
	// Identical behavior everywhere: without the epsilon floor every
	// behavioral distance would be zero and densities would blow up.
	points, spatial := twoRegimeFixture()
	for i := range points {
		points[i].Behavior = []float64{0.5}
	}

	res, err := ComputeSTBOF(points, spatial, baseSTBOFConfig())
	require.NoError(t, err)
	for i := range points {
		assert.Greater(t, res.ReachDensity[i], 0.0, "ReachDensity[%d]", i)
		assert.False(t, math.IsInf(res.ReachDensity[i], 0), "ReachDensity[%d] = %v", i, res.ReachDensity[i])
		assert.Greater(t, res.OutlierFactor[i], 0.0, "OutlierFactor[%d]", i)
		assert.False(t, math.IsNaN(res.OutlierFactor[i]), "OutlierFactor[%d] = %v", i, res.OutlierFactor[i])
	}
}

func TestComputeSTBOFDeterministic(t *testing.T) {
	// The per-point precompute pass runs on a worker pool; results must
	// still be identical across runs.
	points, spatial := absorptionFixture()
	cfg := baseSTBOFConfig()
	cfg.MinPts = 3
	cfg.K = 2

	first, err := ComputeSTBOF(points, spatial, cfg)
	require.NoError(t, err)
	for run := 0; run < 5; run++ {
		again, err := ComputeSTBOF(points, spatial, cfg)
		require.NoError(t, err)
		assert.Equal(t, first.OutlierFactor, again.OutlierFactor, "run %d", run)
		assert.Equal(t, first.ReachDensity, again.ReachDensity, "run %d", run)
	}
}

func TestComputeSTBOFConfigErrors(t *testing.T) {
	points, spatial := twoRegimeFixture()

	testCases := []struct {
		name   string
		mutate func(*STBOFConfig)
	}{
		{"zero_minpts", func(c *STBOFConfig) { c.MinPts = 0 }},
		{"negative_minpts", func(c *STBOFConfig) { c.MinPts = -3 }},
		{"minpts_not_below_dataset", func(c *STBOFConfig) { c.MinPts = len(points) }},
		{"k_zero", func(c *STBOFConfig) { c.K = 0 }},
		{"k_exceeds_minpts", func(c *STBOFConfig) { c.K = 3 }},
		{"weight_count_mismatch", func(c *STBOFConfig) { c.BehavioralWeights = []float64{1, 1} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseSTBOFConfig()
			tc.mutate(&cfg)
			_, err := ComputeSTBOF(points, spatial, cfg)
			assert.Error(t, err)
		})
	}
}

func TestComputeSTBOFRejectsBadSensorID(t *testing.T) {
	points, spatial := twoRegimeFixture()
	points[3].SensorID = spatial.SymmetricDim() // one past the end

	_, err := ComputeSTBOF(points, spatial, baseSTBOFConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestComputeSTBOFTooFewPoints(t *testing.T) {
	spatial := mat.NewSymDense(1, nil)
	points := []Point{{SensorID: 0, Behavior: []float64{0.5}}}

	_, err := ComputeSTBOF(points, spatial, baseSTBOFConfig())
	assert.Error(t, err)
}
