package stb

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// STBOFConfig carries the parameters for the outlier-factor computation.
type STBOFConfig struct {
	// MinPts is the spatio-temporal neighborhood size used for density.
	MinPts int
	// K is the 1-indexed neighbor rank that defines the behavioral
	// k-distance. Must satisfy 1 <= K <= MinPts.
	K int
	// BehavioralWeights holds one non-negative weight per behavioral
	// attribute (typically all 1).
	BehavioralWeights []float64
	// SpatialWeight and TemporalWeight combine the two contextual
	// distances into the neighbor metric.
	SpatialWeight  float64
	TemporalWeight float64
}

// STBOFResult holds the per-point outputs of ComputeSTBOF. Both slices are
// indexed by dataset position and are read-only once returned; ST-BDBCAN
// consumes them without modification.
type STBOFResult struct {
	// OutlierFactor is the ST-BOF per point: ~1 means the point's local
	// behavioral density matches its spatio-temporal neighbors', >1 means
	// the point is behaviorally sparser (more outlying) than its context.
	OutlierFactor []float64
	// ReachDensity is the ST-BRD per point: the reciprocal of the average
	// behavioral reachability distance to the point's MinPts neighbors.
	// Always strictly positive.
	ReachDensity []float64
}

// ComputeSTBOF computes the Spatio-Temporal Behavioral Outlier Factor and
// reachability density for every point.
//
// For each point p the algorithm finds p's MinPts nearest neighbors under
// the spatio-temporal metric, measures the behavioral distance to each,
// floors each of those by the neighbor's own behavioral k-distance (the
// distance to the neighbor's K-th ranked spatio-temporal neighbor), and
// takes the reciprocal of the average as p's reachability density. The
// outlier factor is the average ratio of neighbor densities to p's own.
func ComputeSTBOF(points []Point, spatial *mat.SymDense, cfg STBOFConfig) (*STBOFResult, error) {
	if err := validateSTBOF(points, spatial, cfg); err != nil {
		return nil, err
	}

	n := len(points)
	metric := func(p, o Point) float64 {
		return SpatioTemporalDistance(p, o, spatial, cfg.SpatialWeight, cfg.TemporalWeight)
	}
	index := NewBruteForceIndex(points, metric)

	// Per-point neighbor rows. Filled by the parallel pass below; each
	// worker writes disjoint index ranges, so the merge is deterministic
	// regardless of scheduling.
	neighbors := make([][]Neighbor, n)
	behavioral := make([][]float64, n)

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				neighbors[i] = index.KNearest(i, cfg.MinPts)
				row := make([]float64, cfg.MinPts)
				for j, nb := range neighbors[i] {
					row[j] = BehavioralDistance(cfg.BehavioralWeights, points[i], points[nb.Index])
				}
				behavioral[i] = row
			}
		}(start, end)
	}
	wg.Wait()

	// Behavioral k-distance: the distance from each point to its K-th
	// ranked spatio-temporal neighbor.
	kDistance := make([]float64, n)
	for i := range kDistance {
		kDistance[i] = behavioral[i][cfg.K-1]
	}

	// ST-BRD: reciprocal of the average reachability distance, where the
	// direct behavioral distance to a neighbor is floored by that
	// neighbor's own k-distance. The floor keeps densities stable when a
	// neighbor sits in a behaviorally dense region.
	density := make([]float64, n)
	for i := range density {
		var sum float64
		for j, nb := range neighbors[i] {
			rd := behavioral[i][j]
			if kd := kDistance[nb.Index]; kd > rd {
				rd = kd
			}
			sum += rd
		}
		density[i] = float64(cfg.MinPts) / sum
	}

	factor := make([]float64, n)
	for i := range factor {
		var sum float64
		for _, nb := range neighbors[i] {
			sum += density[nb.Index] / density[i]
		}
		factor[i] = sum / float64(cfg.MinPts)
	}

	return &STBOFResult{OutlierFactor: factor, ReachDensity: density}, nil
}

func validateSTBOF(points []Point, spatial *mat.SymDense, cfg STBOFConfig) error {
	n := len(points)
	if n < 2 {
		return fmt.Errorf("stbof: need at least 2 points, got %d", n)
	}
	if cfg.MinPts <= 0 {
		return fmt.Errorf("stbof: minPts must be positive, got %d", cfg.MinPts)
	}
	if cfg.MinPts >= n {
		return fmt.Errorf("stbof: minPts %d must be smaller than the dataset size %d", cfg.MinPts, n)
	}
	if cfg.K < 1 || cfg.K > cfg.MinPts {
		return fmt.Errorf("stbof: k must satisfy 1 <= k <= minPts, got k=%d minPts=%d", cfg.K, cfg.MinPts)
	}
	attrs := len(cfg.BehavioralWeights)
	for i, p := range points {
		if len(p.Behavior) != attrs {
			return fmt.Errorf("stbof: point %d has %d behavioral attributes, want %d to match the weight vector", i, len(p.Behavior), attrs)
		}
	}
	return validateSensorIDs(points, spatial)
}

// validateSensorIDs checks every point's sensor ID against the spatial
// matrix dimension. Shared by both engines so that every matrix lookup
// after validation is in range.
func validateSensorIDs(points []Point, spatial *mat.SymDense) error {
	dim := spatial.SymmetricDim()
	for i, p := range points {
		if p.SensorID < 0 || p.SensorID >= dim {
			return fmt.Errorf("point %d: sensor id %d out of range for %dx%d spatial matrix", i, p.SensorID, dim, dim)
		}
	}
	return nil
}
