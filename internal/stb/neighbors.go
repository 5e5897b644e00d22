package stb

import (
	"sort"
)

// Neighbor is one entry of a k-nearest-neighbor query result.
type Neighbor struct {
	Index    int     // position of the neighbor in the dataset
	Distance float64 // spatio-temporal distance to the query point
}

// NeighborIndex answers k-nearest-neighbor queries over a fixed dataset
// under the combined spatio-temporal metric. Implementations must exclude
// the query point itself, order results by ascending distance, break
// distance ties by ascending point index, and be fully deterministic:
// cluster assignment depends on neighbor ordering, so two indexes over the
// same data must agree exactly.
type NeighborIndex interface {
	// KNearest returns the k nearest neighbors of the point at queryIndex.
	// k must be at most len(points)-1.
	KNearest(queryIndex, k int) []Neighbor
}

// Metric is a pairwise distance over points. The spatio-temporal metric
// used by both engines is not Euclidean (it goes through a precomputed
// sensor distance matrix), so the index cannot assume any geometry.
type Metric func(p, o Point) float64

// BruteForceIndex is the reference NeighborIndex: it evaluates the metric
// against every other point on each query. O(n) per query, but exact for
// any metric. Accelerated implementations must reproduce its output
// bit-for-bit, including the tie-break rule.
type BruteForceIndex struct {
	points []Point
	metric Metric
}

// NewBruteForceIndex builds a brute-force index over points. The points
// slice is retained, not copied; callers must not mutate it while the
// index is in use.
func NewBruteForceIndex(points []Point, metric Metric) *BruteForceIndex {
	return &BruteForceIndex{points: points, metric: metric}
}

// KNearest implements NeighborIndex.
func (ix *BruteForceIndex) KNearest(queryIndex, k int) []Neighbor {
	q := ix.points[queryIndex]

	candidates := make([]Neighbor, 0, len(ix.points)-1)
	for i, p := range ix.points {
		if i == queryIndex {
			continue
		}
		candidates = append(candidates, Neighbor{Index: i, Distance: ix.metric(q, p)})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Distance != candidates[b].Distance {
			return candidates[a].Distance < candidates[b].Distance
		}
		return candidates[a].Index < candidates[b].Index
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// Verify at compile time that *BruteForceIndex implements NeighborIndex.
var _ NeighborIndex = (*BruteForceIndex)(nil)
