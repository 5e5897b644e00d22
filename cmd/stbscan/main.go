// Command stbscan scores traffic-sensor observations with the
// Spatio-Temporal Behavioral Outlier Factor and clusters them with
// ST-BDBCAN. It reads a dataset CSV and a pairwise sensor-distance CSV,
// writes a results CSV (input columns plus clusterID) and a run summary,
// and can optionally persist the run to SQLite and render diagnostic
// charts.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/banshee-data/behavior.report/internal/dataset"
	"github.com/banshee-data/behavior.report/internal/report"
	"github.com/banshee-data/behavior.report/internal/runstore"
	"github.com/banshee-data/behavior.report/internal/stb"
)

func main() {
	var (
		dataFile      = flag.String("file", "", "dataset CSV with id, timestamp and behavioral columns (required)")
		distancesFile = flag.String("distances", "", "pairwise sensor distances CSV: id1,id2,dist (required)")
		behavioral    = flag.String("behavioral", "", "comma-separated behavioral column names (required)")
		bweights      = flag.String("bweights", "", "comma-separated behavioral weights (default: all 1)")
		sweight       = flag.Float64("sweight", 1, "weight of the spatial distance")
		tweight       = flag.Float64("tweight", 1, "weight of the temporal distance")

		minPts        = flag.Int("minpts", 0, "ST-BOF neighborhood size (required)")
		k             = flag.Int("k", 0, "neighbor rank defining the behavioral k-distance (required)")
		pct           = flag.Float64("pct", 0, "reachability-density tolerance band (required)")
		stbdbcanMin   = flag.Int("stbdbcan-minpts", 0, "ST-BDBCAN neighborhood size (required)")
		minPtsCluster = flag.Int("minpts-cluster", 0, "minimum cluster cardinality (required)")
		stbofUB       = flag.Float64("stbofub", 0, "outlier factor upper bound (default: 1-percentile of observed factors)")

		sensor = flag.String("sensor", "", "temporal mode: restrict the dataset to one sensor id")
		limit  = flag.Int("limit", 0, "cap the number of dataset rows (0 = no cap)")
		out    = flag.String("out", "", "output path prefix (default: dataset path without .csv, plus _results)")

		dbPath    = flag.String("db", "", "SQLite database to persist the run to")
		chartPath = flag.String("chart", "", "write an HTML cluster scatter to this path")
		plotPath  = flag.String("ofplot", "", "write a PNG of the sorted outlier factors to this path")
		listRuns  = flag.Bool("list-runs", false, "list recent runs from -db and exit")
	)
	flag.Parse()

	if *listRuns {
		if *dbPath == "" {
			log.Fatal("-list-runs requires -db")
		}
		printRuns(*dbPath)
		return
	}

	if *dataFile == "" || *distancesFile == "" || *behavioral == "" {
		flag.Usage()
		os.Exit(2)
	}
	columns := splitColumns(*behavioral)
	weights, err := behavioralWeights(*bweights, len(columns))
	if err != nil {
		log.Fatalf("Invalid behavioral weights: %v", err)
	}

	// Load the pairwise distances first: the label encoder fitted on them
	// defines the sensor id space the dataset must live in.
	df, err := os.Open(*distancesFile)
	if err != nil {
		log.Fatalf("Failed to open distances file: %v", err)
	}
	enc, spatial, err := dataset.LoadDistances(df)
	df.Close()
	if err != nil {
		log.Fatalf("Failed to load distances: %v", err)
	}

	f, err := os.Open(*dataFile)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	observations, err := dataset.Load(f, columns)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if *sensor != "" {
		observations = dataset.FilterSensor(observations, *sensor)
	}
	if *limit > 0 && len(observations) > *limit {
		observations = observations[:*limit]
	}
	if len(observations) == 0 {
		log.Fatal("No observations to cluster after filtering")
	}

	// Scale behavioral attributes to [0,1] so they carry equal weight in
	// the behavioral distance. The originals are kept for the output file.
	scaler, err := dataset.FitMinMax(observations)
	if err != nil {
		log.Fatalf("Failed to fit scaler: %v", err)
	}
	points, err := dataset.ToPoints(scaler.Transform(observations), enc)
	if err != nil {
		log.Fatalf("Failed to prepare points: %v", err)
	}

	log.Printf("Using %d points; computing ST-BOF (minPts=%d, k=%d)", len(points), *minPts, *k)
	stbofStart := time.Now()
	stbofRes, err := stb.ComputeSTBOF(points, spatial, stb.STBOFConfig{
		MinPts:            *minPts,
		K:                 *k,
		BehavioralWeights: weights,
		SpatialWeight:     *sweight,
		TemporalWeight:    *tweight,
	})
	if err != nil {
		log.Fatalf("ST-BOF failed: %v", err)
	}
	stbofElapsed := time.Since(stbofStart)
	log.Printf("ST-BOF done in %s", stbofElapsed.Round(time.Millisecond))

	upperBound := *stbofUB
	if upperBound == 0 {
		upperBound = autoUpperBound(stbofRes.OutlierFactor)
		log.Printf("Setting ST-BOFUB to the 1-percentile outlier factor: %.4f", upperBound)
	}

	log.Printf("Computing ST-BDBCAN (ST-BOFUB=%.4f, pct=%g, minPts=%d, minPtsCluster=%d)",
		upperBound, *pct, *stbdbcanMin, *minPtsCluster)
	stbdbcanStart := time.Now()
	labels, err := stb.ComputeSTBDBCAN(points, spatial, stbofRes, stb.STBDBCANConfig{
		OutlierUpperBound: upperBound,
		Pct:               *pct,
		MinPts:            *stbdbcanMin,
		MinClusterSize:    *minPtsCluster,
		SpatialWeight:     *sweight,
		TemporalWeight:    *tweight,
	})
	if err != nil {
		log.Fatalf("ST-BDBCAN failed: %v", err)
	}
	stbdbcanElapsed := time.Since(stbdbcanStart)

	params := report.Params{
		BehavioralColumns: columns,
		MinPts:            *minPts,
		K:                 *k,
		Pct:               *pct,
		STBDBCANMinPts:    *stbdbcanMin,
		MinPtsCluster:     *minPtsCluster,
		OutlierUpperBound: upperBound,
		SpatialWeight:     *sweight,
		TemporalWeight:    *tweight,
	}
	summary := report.Summarize(labels, stbofRes.OutlierFactor, params, stbofElapsed, stbdbcanElapsed)
	fmt.Print(summary.Render())

	prefix := *out
	if prefix == "" {
		prefix = strings.TrimSuffix(*dataFile, ".csv") + "_results"
	}
	writeOutputs(prefix, columns, observations, labels, summary)

	if *chartPath != "" {
		cf, err := os.Create(*chartPath)
		if err != nil {
			log.Fatalf("Failed to create chart file: %v", err)
		}
		if err := report.WriteClusterChart(cf, columns, observations, labels, 0); err != nil {
			log.Fatalf("Failed to render chart: %v", err)
		}
		cf.Close()
		log.Printf("Wrote cluster chart to %s", *chartPath)
	}
	if *plotPath != "" {
		if err := report.SaveOutlierFactorPlot(*plotPath, stbofRes.OutlierFactor, upperBound); err != nil {
			log.Fatalf("Failed to render outlier factor plot: %v", err)
		}
		log.Printf("Wrote outlier factor plot to %s", *plotPath)
	}
	if *dbPath != "" {
		persistRun(*dbPath, summary, observations, labels)
	}
}

// splitColumns splits a comma-separated column list, trimming whitespace.
func splitColumns(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// behavioralWeights parses -bweights, defaulting to all ones. The count
// must match the behavioral column count.
func behavioralWeights(s string, columns int) ([]float64, error) {
	if s == "" {
		ones := make([]float64, columns)
		for i := range ones {
			ones[i] = 1
		}
		return ones, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(p, "%g", &v); err != nil {
			return nil, fmt.Errorf("invalid weight %q", p)
		}
		out = append(out, v)
	}
	if len(out) != columns {
		return nil, fmt.Errorf("%d weights for %d behavioral columns", len(out), columns)
	}
	return out, nil
}

// autoUpperBound picks the outlier factor at the top 1-percentile rank,
// with a floor of rank 1 so small datasets still get the maximum rather
// than the minimum.
func autoUpperBound(outlierFactor []float64) float64 {
	sorted := append([]float64(nil), outlierFactor...)
	sort.Float64s(sorted)
	idx := int(math.Round(float64(len(sorted)) * 0.01))
	if idx < 1 {
		idx = 1
	}
	return sorted[len(sorted)-idx]
}

func writeOutputs(prefix string, columns []string, observations []dataset.Observation, labels []stb.Label, summary report.Summary) {
	csvPath := prefix + ".csv"
	cf, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("Failed to create results file: %v", err)
	}
	if err := report.WriteResults(cf, columns, observations, labels); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	cf.Close()
	log.Printf("Wrote results to %s", csvPath)

	txtPath := prefix + ".txt"
	if err := os.WriteFile(txtPath, []byte(summary.Render()), 0o644); err != nil {
		log.Fatalf("Failed to write summary: %v", err)
	}
	log.Printf("Wrote summary to %s", txtPath)
}

func persistRun(dbPath string, summary report.Summary, observations []dataset.Observation, labels []stb.Label) {
	store, err := runstore.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer store.Close()

	run := &runstore.Run{
		BehavioralColumns: strings.Join(summary.BehavioralColumns, ","),
		PointCount:        summary.PointCount,
		MinPts:            summary.MinPts,
		K:                 summary.K,
		Pct:               summary.Pct,
		STBDBCANMinPts:    summary.STBDBCANMinPts,
		MinPtsCluster:     summary.MinPtsCluster,
		OutlierUpperBound: summary.OutlierUpperBound,
		SpatialWeight:     summary.SpatialWeight,
		TemporalWeight:    summary.TemporalWeight,
		ClusterCount:      summary.ClusterCount,
		NoiseCount:        summary.NoiseCount,
		UnclassifiedCount: summary.UnclassifiedCount,
		ElapsedMS:         (summary.STBOFElapsed + summary.STBDBCANElapsed).Milliseconds(),
	}
	pointLabels := make([]runstore.PointLabel, len(labels))
	for i, l := range labels {
		pointLabels[i] = runstore.PointLabel{PointIndex: i, SensorID: observations[i].SensorID, Label: l}
	}
	id, err := store.RecordRun(run, pointLabels)
	if err != nil {
		log.Fatalf("Failed to persist run: %v", err)
	}
	log.Printf("Persisted run %s to %s", id, dbPath)
}

func printRuns(dbPath string) {
	store, err := runstore.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(20)
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  points=%d clusters=%d noise=%d (%.1f%%)  minPts=%d k=%d pct=%g  %dms\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.PointCount, r.ClusterCount, r.NoiseCount,
			100*float64(r.NoiseCount)/float64(max(r.PointCount, 1)), r.MinPts, r.K, r.Pct, r.ElapsedMS)
	}
}
