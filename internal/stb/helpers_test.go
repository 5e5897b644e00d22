package stb

import (
	"gonum.org/v1/gonum/mat"
)

// twoRegimeFixture builds six sensors in two well-separated spatial groups
// (ids 0-2 and 3-5, ~10m apart within a group, ~1km across groups) with two
// distinct behavioral regimes and identical timestamps. Every point's
// spatio-temporal neighborhood stays inside its own group, so the expected
// outcome is one cluster per group.
func twoRegimeFixture() ([]Point, *mat.SymDense) {
	behavior := []float64{0.1, 0.12, 0.11, 0.9, 0.95, 0.92}
	n := len(behavior)

	spatial := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := 10.0 * float64(j-i)
			if i/3 != j/3 {
				d = 1000.0 + 10.0*float64(j-i)
			}
			spatial.SetSym(i, j, d)
		}
	}

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{SensorID: i, Timestamp: 1600000000, Behavior: []float64{behavior[i]}}
	}
	return points, spatial
}

// absorptionFixture builds six sensors on a line (10m spacing, identical
// timestamps) with behaviors chosen so that point 2 first fails as a seed
// (noise) and is absorbed into the cluster grown from point 3 afterwards.
func absorptionFixture() ([]Point, *mat.SymDense) {
	behavior := []float64{0.15, 0.6, 0.1, 0.12, 0.12, 0.55}
	n := len(behavior)

	spatial := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			spatial.SetSym(i, j, 10.0*float64(j-i))
		}
	}

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{SensorID: i, Timestamp: 1600000000, Behavior: []float64{behavior[i]}}
	}
	return points, spatial
}

func baseSTBOFConfig() STBOFConfig {
	return STBOFConfig{
		MinPts:            2,
		K:                 1,
		BehavioralWeights: []float64{1},
		SpatialWeight:     1,
		TemporalWeight:    1,
	}
}
