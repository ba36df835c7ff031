// Package diagnostics renders go-echarts HTML bar charts of sampled
// circuit marginal frequencies (spec §8's concrete scenarios), grounded on
// the teacher's cmd/analysis/main.go histogram-chart helper: same
// SetGlobalOptions/AddSeries shape, same "count" series, same
// io.Writer-based Render, only the source data differs (bin-count
// histograms there, measurement-outcome marginals here).
package diagnostics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Bin is one labeled outcome bin: e.g. "00", "01" for a two-qubit marginal,
// or "flip"/"no flip" for a single noisy-measurement frequency.
type Bin struct {
	Label string
	Count int
}

// MarginalChart builds a bar chart of observed outcome-bin counts against
// `shots` total trials, annotated with the expected fraction for each bin
// when known (spec §8's acceptance tolerances are framed this way: observed
// vs expected within N sigma).
func MarginalChart(title string, shots int, bins []Bin, expected map[string]float64) *charts.Bar {
	labels := make([]string, len(bins))
	counts := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = b.Label
		counts[i] = opts.BarData{Value: b.Count}
	}

	subtitle := fmt.Sprintf("shots=%d", shots)
	if expected != nil {
		subtitle += ", expected: "
		first := true
		for _, b := range bins {
			if want, ok := expected[b.Label]; ok {
				if !first {
					subtitle += ", "
				}
				subtitle += fmt.Sprintf("%s=%.3f", b.Label, want)
				first = false
			}
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("count", counts).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return bar
}

// RenderMarginalChart writes the chart's standalone HTML page to w.
func RenderMarginalChart(w io.Writer, title string, shots int, bins []Bin, expected map[string]float64) error {
	bar := MarginalChart(title, shots, bins, expected)
	return bar.Render(w)
}

// CountBits tallies a measurement record's two rows (shot-parallel bits
// row0, row1) into the four two-qubit outcome bins "00","01","10","11",
// the shape spec §8 scenario 1 (Bell pair) and scenario 2 (X_ERROR
// marginal) both need.
func CountBits(row0, row1 func(shot int) bool, shots int) []Bin {
	counts := map[string]int{"00": 0, "01": 0, "10": 0, "11": 0}
	for s := 0; s < shots; s++ {
		key := string([]byte{bitChar(row0(s)), bitChar(row1(s))})
		counts[key]++
	}
	order := []string{"00", "01", "10", "11"}
	bins := make([]Bin, len(order))
	for i, k := range order {
		bins[i] = Bin{Label: k, Count: counts[k]}
	}
	return bins
}

func bitChar(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}
