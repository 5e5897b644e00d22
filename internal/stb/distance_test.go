package stb

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBehavioralDistance(t *testing.T) {
	testCases := []struct {
		name     string
		weights  []float64
		p, o     []float64
		expected float64
	}{
		{"single_attribute", []float64{1}, []float64{0.1}, []float64{0.9}, 0.8},
		{"two_attributes", []float64{1, 1}, []float64{0.1, 0.5}, []float64{0.3, 0.2}, 0.5},
		{"weighted", []float64{2, 0.5}, []float64{0.1, 0.5}, []float64{0.3, 0.1}, 0.6},
		{"zero_weight_ignores_attribute", []float64{0, 1}, []float64{0.9, 0.4}, []float64{0.1, 0.4}, 0},
		{"symmetric", []float64{1}, []float64{0.7}, []float64{0.2}, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Point{Behavior: tc.p}
			o := Point{Behavior: tc.o}
			got := BehavioralDistance(tc.weights, p, o)
			want := tc.expected + BehavioralEpsilon
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("BehavioralDistance = %v, want %v", got, want)
			}
			// The epsilon guarantees strict positivity even for identical points.
			if got <= 0 {
				t.Errorf("BehavioralDistance = %v, want > 0", got)
			}
			if rev := BehavioralDistance(tc.weights, o, p); rev != got {
				t.Errorf("asymmetric: d(p,o)=%v d(o,p)=%v", got, rev)
			}
		})
	}
}

func TestBehavioralDistanceIdenticalPoints(t *testing.T) {
	p := Point{Behavior: []float64{0.5, 0.5}}
	got := BehavioralDistance([]float64{1, 1}, p, p)
	if got != BehavioralEpsilon {
		t.Errorf("distance between identical points = %v, want epsilon %v", got, BehavioralEpsilon)
	}
}

func TestTemporalDistance(t *testing.T) {
	testCases := []struct {
		name     string
		tp, to   float64
		expected float64
	}{
		{"same_instant", 1000, 1000, 0},
		{"one_minute", 1000, 1060, 1},
		{"ninety_seconds", 0, 90, 1.5},
		{"reversed_order", 1060, 1000, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := Point{Timestamp: tc.tp}
			o := Point{Timestamp: tc.to}
			if got := TemporalDistance(p, o); got != tc.expected {
				t.Errorf("TemporalDistance = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestSpatioTemporalDistance(t *testing.T) {
	spatial := mat.NewSymDense(2, []float64{
		0, 100,
		100, 0,
	})
	p := Point{SensorID: 0, Timestamp: 0}
	o := Point{SensorID: 1, Timestamp: 120} // 2 minutes apart

	testCases := []struct {
		name         string
		betaS, gamma float64
		expected     float64
	}{
		{"equal_weights", 1, 1, 102},
		{"spatial_only", 1, 0, 100},
		{"temporal_only", 0, 1, 2},
		{"scaled", 0.5, 3, 56},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SpatioTemporalDistance(p, o, spatial, tc.betaS, tc.gamma)
			if got != tc.expected {
				t.Errorf("SpatioTemporalDistance = %v, want %v", got, tc.expected)
			}
			if rev := SpatioTemporalDistance(o, p, spatial, tc.betaS, tc.gamma); rev != got {
				t.Errorf("asymmetric: d(p,o)=%v d(o,p)=%v", got, rev)
			}
		})
	}
}
