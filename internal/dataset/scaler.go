package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler rescales each behavioral column to [0,1] over the fitted
// data, so differently-ranged attributes (e.g. vehicle flow and speed)
// carry equal weight in the behavioral distance. A constant column maps
// to 0.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// FitMinMax fits a scaler on the behavioral columns of the observations.
func FitMinMax(observations []Observation) (*MinMaxScaler, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("scaler: no observations to fit")
	}
	attrs := len(observations[0].Behavior)

	column := make([]float64, len(observations))
	s := &MinMaxScaler{min: make([]float64, attrs), max: make([]float64, attrs)}
	for a := 0; a < attrs; a++ {
		for i, o := range observations {
			if len(o.Behavior) != attrs {
				return nil, fmt.Errorf("scaler: observation %d has %d attributes, want %d", i, len(o.Behavior), attrs)
			}
			column[i] = o.Behavior[a]
		}
		s.min[a] = floats.Min(column)
		s.max[a] = floats.Max(column)
	}
	return s, nil
}

// Transform returns a copy of the observations with behavioral attributes
// scaled to [0,1]. The input is left untouched so callers can still write
// the original values to the results file.
func (s *MinMaxScaler) Transform(observations []Observation) []Observation {
	out := make([]Observation, len(observations))
	for i, o := range observations {
		scaled := make([]float64, len(o.Behavior))
		for a, v := range o.Behavior {
			if span := s.max[a] - s.min[a]; span > 0 {
				scaled[a] = (v - s.min[a]) / span
			}
		}
		out[i] = Observation{SensorID: o.SensorID, Timestamp: o.Timestamp, Behavior: scaled}
	}
	return out
}

// Inverse maps scaled behavioral values back to their original range.
func (s *MinMaxScaler) Inverse(observations []Observation) []Observation {
	out := make([]Observation, len(observations))
	for i, o := range observations {
		raw := make([]float64, len(o.Behavior))
		for a, v := range o.Behavior {
			raw[a] = v*(s.max[a]-s.min[a]) + s.min[a]
		}
		out[i] = Observation{SensorID: o.SensorID, Timestamp: o.Timestamp, Behavior: raw}
	}
	return out
}
