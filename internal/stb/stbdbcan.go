package stb

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Label is the cluster assignment of one point. Non-negative values are
// cluster ids assigned in discovery order (0, 1, 2, ...).
type Label int

const (
	// Unclassified marks a point not yet visited by any expansion.
	Unclassified Label = -2
	// Noise marks a point rejected as a cluster member. A Noise point can
	// still be absorbed by a cluster discovered later; a point holding a
	// cluster id is never relabelled.
	Noise Label = -1
)

// IsCluster reports whether the label is an assigned cluster id.
func (l Label) IsCluster() bool { return l >= 0 }

// String renders the label for summaries and logs.
func (l Label) String() string {
	switch l {
	case Unclassified:
		return "unclassified"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("cluster %d", int(l))
	}
}

// STBDBCANConfig carries the clustering parameters.
type STBDBCANConfig struct {
	// OutlierUpperBound is the ST-BOF threshold: points scoring above it
	// are never cluster members.
	OutlierUpperBound float64
	// Pct is the fractional tolerance of the reachability band. Point p is
	// directly behaviorally reachable from o when
	// brd(o)/(1+pct) < brd(p) < brd(o)*(1+pct).
	Pct float64
	// MinPts is the spatio-temporal neighborhood size for expansion queries.
	MinPts int
	// MinClusterSize is the minimum number of candidate neighbors a seed
	// must gather before a cluster is committed.
	MinClusterSize int
	// SpatialWeight and TemporalWeight must match the values used for the
	// ST-BOF stage so both engines see the same neighborhoods.
	SpatialWeight  float64
	TemporalWeight float64
}

// ComputeSTBDBCAN clusters points by behavioral reachability, consuming the
// outlier factors and reachability densities produced by ComputeSTBOF.
// It returns one Label per point.
//
// Points are tried as cluster seeds in dataset order. A seed whose outlier
// factor exceeds the upper bound is noise immediately. Otherwise its
// spatio-temporal neighborhood is screened: neighbors that are reachable
// from the seed and below the outlier bound form the candidate set. If the
// set is smaller than MinClusterSize the seed reverts to noise and the
// cluster id is not consumed; otherwise the seed and all candidates are
// committed and the set grows breadth-first, committing each new reachable
// point as soon as it is found. The asymmetry between the seed's two-phase
// check and the immediate commit during growth is part of the algorithm:
// reordering it changes cluster membership.
func ComputeSTBDBCAN(points []Point, spatial *mat.SymDense, stbof *STBOFResult, cfg STBDBCANConfig) ([]Label, error) {
	if err := validateSTBDBCAN(points, spatial, stbof, cfg); err != nil {
		return nil, err
	}

	metric := func(p, o Point) float64 {
		return SpatioTemporalDistance(p, o, spatial, cfg.SpatialWeight, cfg.TemporalWeight)
	}
	c := &clusterer{
		index:  NewBruteForceIndex(points, metric),
		stbof:  stbof,
		cfg:    cfg,
		labels: make([]Label, len(points)),
	}
	for i := range c.labels {
		c.labels[i] = Unclassified
	}

	next := Label(0)
	for i := range points {
		if c.labels[i] != Unclassified {
			continue
		}
		if stbof.OutlierFactor[i] > cfg.OutlierUpperBound {
			c.labels[i] = Noise
			continue
		}
		if c.expand(i, next) {
			next++
		}
	}
	return c.labels, nil
}

type clusterer struct {
	index  NeighborIndex
	stbof  *STBOFResult
	cfg    STBDBCANConfig
	labels []Label
}

// expand grows a cluster from the seed point. Returns false (and demotes
// the seed to noise) when the candidate set stays below MinClusterSize.
func (c *clusterer) expand(seed int, id Label) bool {
	c.labels[seed] = id

	// Phase one: screen the seed's own neighborhood.
	var cluster []int
	member := make(map[int]bool)
	for _, nb := range c.index.KNearest(seed, c.cfg.MinPts) {
		q := nb.Index
		if !c.eligible(q) {
			continue
		}
		if c.reachable(q, seed) && c.stbof.OutlierFactor[q] <= c.cfg.OutlierUpperBound {
			cluster = append(cluster, q)
			member[q] = true
		}
	}
	if len(cluster) < c.cfg.MinClusterSize {
		c.labels[seed] = Noise
		return false
	}

	// Phase two: commit and grow. Points appended during the walk are
	// processed in arrival order and labelled as soon as they are reached;
	// there is no second screening pass.
	for i := 0; i < len(cluster); i++ {
		t := cluster[i]
		c.labels[t] = id
		for _, nb := range c.index.KNearest(t, c.cfg.MinPts) {
			r := nb.Index
			if !c.eligible(r) || member[r] {
				continue
			}
			if c.reachable(r, t) && c.stbof.OutlierFactor[r] <= c.cfg.OutlierUpperBound {
				cluster = append(cluster, r)
				member[r] = true
			}
		}
	}
	return true
}

// eligible reports whether a point can still join a cluster: unclassified
// points and noise points (absorption), but never committed members.
func (c *clusterer) eligible(i int) bool {
	return c.labels[i] == Unclassified || c.labels[i] == Noise
}

// reachable is the direct behavioral reachability predicate: p's
// reachability density must fall strictly inside the (1+pct) band around
// o's. Both inequalities are strict; band edges are not reachable.
func (c *clusterer) reachable(p, o int) bool {
	brd := c.stbof.ReachDensity
	return brd[p] > brd[o]/(1+c.cfg.Pct) && brd[p] < brd[o]*(1+c.cfg.Pct)
}

func validateSTBDBCAN(points []Point, spatial *mat.SymDense, stbof *STBOFResult, cfg STBDBCANConfig) error {
	n := len(points)
	if cfg.MinPts <= 0 {
		return fmt.Errorf("stbdbcan: minPts must be positive, got %d", cfg.MinPts)
	}
	if cfg.MinClusterSize <= 0 {
		return fmt.Errorf("stbdbcan: minPtsCluster must be positive, got %d", cfg.MinClusterSize)
	}
	if cfg.MinPts >= n {
		return fmt.Errorf("stbdbcan: minPts %d must be smaller than the dataset size %d", cfg.MinPts, n)
	}
	if len(stbof.OutlierFactor) != n || len(stbof.ReachDensity) != n {
		return fmt.Errorf("stbdbcan: ST-BOF arrays sized %d/%d, want %d",
			len(stbof.OutlierFactor), len(stbof.ReachDensity), n)
	}
	return validateSensorIDs(points, spatial)
}
