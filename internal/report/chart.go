package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/behavior.report/internal/dataset"
	"github.com/banshee-data/behavior.report/internal/stb"
)

// WriteClusterChart renders an HTML scatter of one behavioral attribute
// over time, one series per cluster plus a series for noise, so regime
// boundaries are visible at a glance. attr selects the behavioral column
// to plot.
func WriteClusterChart(w io.Writer, behavioral []string, observations []dataset.Observation, labels []stb.Label, attr int) error {
	if len(observations) != len(labels) {
		return fmt.Errorf("report: %d observations but %d labels", len(observations), len(labels))
	}
	if attr < 0 || attr >= len(behavioral) {
		return fmt.Errorf("report: behavioral attribute %d out of range", attr)
	}

	series := map[stb.Label][]opts.ScatterData{}
	for i, o := range observations {
		series[labels[i]] = append(series[labels[i]], opts.ScatterData{
			Value: []interface{}{o.Timestamp, o.Behavior[attr]},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "ST-BDBCAN clusters",
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "ST-BDBCAN clusters",
			Subtitle: fmt.Sprintf("%s over time, %d points", behavioral[attr], len(observations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "timestamp (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: behavioral[attr]}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	// Clusters first in id order, then noise, then unclassified, so the
	// legend is stable across runs.
	maxID := stb.Label(-1)
	for l := range series {
		if l > maxID {
			maxID = l
		}
	}
	for id := stb.Label(0); id <= maxID; id++ {
		if data, ok := series[id]; ok {
			scatter.AddSeries(id.String(), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		}
	}
	for _, l := range []stb.Label{stb.Noise, stb.Unclassified} {
		if data, ok := series[l]; ok {
			scatter.AddSeries(l.String(), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		}
	}

	return scatter.Render(w)
}
