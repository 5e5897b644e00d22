// Package report renders the outputs of a clustering run: the human-readable
// run summary, the results CSV, and the diagnostic charts.
package report

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/behavior.report/internal/stb"
)

// Params echoes the algorithm parameters of a run into the summary.
type Params struct {
	BehavioralColumns []string
	MinPts            int
	K                 int
	Pct               float64
	STBDBCANMinPts    int
	MinPtsCluster     int
	OutlierUpperBound float64
	SpatialWeight     float64
	TemporalWeight    float64
}

// Summary aggregates the outcome of one run.
type Summary struct {
	Params

	PointCount        int
	ClusterCount      int
	NoiseCount        int
	UnclassifiedCount int
	NoisePercent      float64

	MeanOutlierFactor float64
	MaxOutlierFactor  float64

	STBOFElapsed    time.Duration
	STBDBCANElapsed time.Duration
}

// Summarize builds a Summary from the run outputs. The cluster count is the
// number of distinct non-negative labels; ids are sequential, so it equals
// max id + 1.
func Summarize(labels []stb.Label, outlierFactor []float64, params Params, stbofElapsed, stbdbcanElapsed time.Duration) Summary {
	s := Summary{
		Params:          params,
		PointCount:      len(labels),
		STBOFElapsed:    stbofElapsed,
		STBDBCANElapsed: stbdbcanElapsed,
	}
	maxID := stb.Label(-1)
	for _, l := range labels {
		switch {
		case l == stb.Noise:
			s.NoiseCount++
		case l == stb.Unclassified:
			s.UnclassifiedCount++
		case l > maxID:
			maxID = l
		}
	}
	s.ClusterCount = int(maxID) + 1
	if s.PointCount > 0 {
		s.NoisePercent = 100 * float64(s.NoiseCount) / float64(s.PointCount)
		s.MeanOutlierFactor = stat.Mean(outlierFactor, nil)
		s.MaxOutlierFactor = floats.Max(outlierFactor)
	}
	return s
}

// Render formats the summary the way the run prints it: parameter echo,
// timings, then outcome counts. Unclassified is reported separately from
// noise; it should be zero after a completed run.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Using %d points\n", s.PointCount)
	fmt.Fprintf(&b, "Behavioral attributes: %s\n", strings.Join(s.BehavioralColumns, ", "))
	fmt.Fprintf(&b, "ST-BOF parameters: minPts=%d, k=%d, betaS=%g, gammaT=%g\n",
		s.MinPts, s.K, s.SpatialWeight, s.TemporalWeight)
	fmt.Fprintf(&b, "ST-BOF elapsed: %s (mean=%.4f, max=%.4f)\n",
		s.STBOFElapsed.Round(time.Millisecond), s.MeanOutlierFactor, s.MaxOutlierFactor)
	fmt.Fprintf(&b, "ST-BDBCAN parameters: ST-BOFUB=%g, pct=%g, minPts=%d, minPtsCluster=%d\n",
		s.OutlierUpperBound, s.Pct, s.STBDBCANMinPts, s.MinPtsCluster)
	fmt.Fprintf(&b, "ST-BDBCAN elapsed: %s\n", s.STBDBCANElapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "------------------------------------------------\n")
	fmt.Fprintf(&b, "Number of clusters = %d\n", s.ClusterCount)
	fmt.Fprintf(&b, "Unclassified: %d\n", s.UnclassifiedCount)
	fmt.Fprintf(&b, "Noise: %d\n", s.NoiseCount)
	fmt.Fprintf(&b, "Percentage of noise points = %.2f%%\n", s.NoisePercent)
	return b.String()
}
