package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/behavior.report/internal/dataset"
	"github.com/banshee-data/behavior.report/internal/stb"
)

// WriteResults writes the results CSV: the original observation columns
// (unscaled behavior, original sensor ids) plus a clusterID column. Noise
// is written as -1 and unclassified as -2, matching the label values.
func WriteResults(w io.Writer, behavioral []string, observations []dataset.Observation, labels []stb.Label) error {
	if len(observations) != len(labels) {
		return fmt.Errorf("report: %d observations but %d labels", len(observations), len(labels))
	}

	cw := csv.NewWriter(w)
	header := append([]string{"id", "timestamp"}, behavioral...)
	header = append(header, "clusterID")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: writing header: %w", err)
	}

	record := make([]string, 0, len(header))
	for i, o := range observations {
		record = record[:0]
		record = append(record, o.SensorID, strconv.FormatFloat(o.Timestamp, 'f', -1, 64))
		for _, v := range o.Behavior {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, strconv.Itoa(int(labels[i])))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
