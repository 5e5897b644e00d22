// Package dataset loads and prepares sensor observation data for the stb
// engines: CSV parsing, categorical sensor-id encoding, min-max scaling of
// behavioral attributes, and the pairwise spatial distance matrix.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/banshee-data/behavior.report/internal/stb"
)

// Observation is one raw dataset row: the original (categorical) sensor id,
// an epoch-seconds timestamp, and the behavioral attribute values in the
// column order requested at load time.
type Observation struct {
	SensorID  string
	Timestamp float64
	Behavior  []float64
}

// Load reads observations from CSV data. The file must carry a header row
// with an `id` column, a `timestamp` column, and every requested behavioral
// column. Timestamps are accepted as epoch seconds or RFC 3339. Malformed
// rows abort the load with a row-numbered error; the core never sees bad
// data.
func Load(r io.Reader, behavioral []string) ([]Observation, error) {
	if len(behavioral) == 0 {
		return nil, fmt.Errorf("dataset: at least one behavioral column is required")
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}

	idCol, ok := cols["id"]
	if !ok {
		return nil, fmt.Errorf("dataset: missing required column \"id\"")
	}
	tsCol, ok := cols["timestamp"]
	if !ok {
		return nil, fmt.Errorf("dataset: missing required column \"timestamp\"")
	}
	behavioralCols := make([]int, len(behavioral))
	for i, name := range behavioral {
		c, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("dataset: missing behavioral column %q", name)
		}
		behavioralCols[i] = c
	}

	var observations []Observation
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: %w", row, err)
		}

		ts, err := parseTimestamp(record[tsCol])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: %w", row, err)
		}

		behavior := make([]float64, len(behavioralCols))
		for i, c := range behavioralCols {
			v, err := strconv.ParseFloat(record[c], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d: column %q: invalid value %q", row, behavioral[i], record[c])
			}
			behavior[i] = v
		}

		observations = append(observations, Observation{
			SensorID:  record[idCol],
			Timestamp: ts,
			Behavior:  behavior,
		})
	}
	return observations, nil
}

// parseTimestamp accepts epoch seconds (integer or fractional) or RFC 3339.
func parseTimestamp(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return float64(t.Unix()), nil
	}
	return 0, fmt.Errorf("invalid timestamp %q (want epoch seconds or RFC 3339)", s)
}

// FilterSensor keeps only observations from the given sensor, preserving
// order. Used for temporal mode, where a single sensor is studied over time.
func FilterSensor(observations []Observation, sensorID string) []Observation {
	var out []Observation
	for _, o := range observations {
		if o.SensorID == sensorID {
			out = append(out, o)
		}
	}
	return out
}

// ToPoints converts observations into core points using the encoder fitted
// on the distances file. An observation whose sensor id was never seen in
// the distances file is a data error.
func ToPoints(observations []Observation, enc *LabelEncoder) ([]stb.Point, error) {
	points := make([]stb.Point, len(observations))
	for i, o := range observations {
		id, err := enc.Transform(o.SensorID)
		if err != nil {
			return nil, fmt.Errorf("dataset: observation %d: %w", i, err)
		}
		points[i] = stb.Point{SensorID: id, Timestamp: o.Timestamp, Behavior: o.Behavior}
	}
	return points, nil
}
