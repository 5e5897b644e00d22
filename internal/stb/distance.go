package stb

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BehavioralEpsilon is added to every behavioral distance so the value is
// strictly positive. Reachability densities are reciprocals of averaged
// behavioral distances; without the epsilon two identical observations
// would produce a zero distance and an infinite density.
const BehavioralEpsilon = 1e-10

// secondsPerMinute converts timestamp deltas (epoch seconds) to minutes,
// the unit the temporal weight is calibrated against.
const secondsPerMinute = 60.0

// Point is a single observation: a sensor identifier (a row/column index
// into the spatial distance matrix), an epoch-seconds timestamp, and a
// fixed-order vector of behavioral attributes scaled to [0,1] by the caller.
type Point struct {
	SensorID  int
	Timestamp float64
	Behavior  []float64
}

// BehavioralDistance returns the weighted Manhattan distance between the
// behavioral attributes of p and o, plus BehavioralEpsilon. The weight
// vector must have the same length as the behavior vectors.
func BehavioralDistance(weights []float64, p, o Point) float64 {
	d := BehavioralEpsilon
	for i, w := range weights {
		d += w * math.Abs(p.Behavior[i]-o.Behavior[i])
	}
	return d
}

// TemporalDistance returns the absolute timestamp difference in minutes.
func TemporalDistance(p, o Point) float64 {
	return math.Abs(p.Timestamp-o.Timestamp) / secondsPerMinute
}

// SpatialDistance returns the precomputed physical distance in meters
// between the two sensors. Sensor IDs must be valid indices into the
// matrix; ID validity is checked once up front by the compute entry
// points, not on every lookup.
func SpatialDistance(p, o Point, spatial *mat.SymDense) float64 {
	return spatial.At(p.SensorID, o.SensorID)
}

// SpatioTemporalDistance combines spatial and temporal distance into the
// single metric used for all neighbor queries. betaS and gammaT let the
// caller emphasise spatial versus temporal proximity.
func SpatioTemporalDistance(p, o Point, spatial *mat.SymDense, betaS, gammaT float64) float64 {
	return betaS*SpatialDistance(p, o, spatial) + gammaT*TemporalDistance(p, o)
}
