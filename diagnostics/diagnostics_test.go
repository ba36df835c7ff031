package diagnostics

import (
	"bytes"
	"strings"
	"testing"
)

func TestCountBitsBellPairBins(t *testing.T) {
	row0 := []bool{true, false, true, true}
	row1 := []bool{true, false, true, true}
	bins := CountBits(func(s int) bool { return row0[s] }, func(s int) bool { return row1[s] }, len(row0))
	counts := map[string]int{}
	for _, b := range bins {
		counts[b.Label] = b.Count
	}
	if counts["00"] != 1 || counts["11"] != 3 || counts["01"] != 0 || counts["10"] != 0 {
		t.Fatalf("unexpected bin counts: %+v", counts)
	}
}

func TestRenderMarginalChartProducesHTML(t *testing.T) {
	bins := []Bin{{Label: "00", Count: 480}, {Label: "11", Count: 520}}
	var buf bytes.Buffer
	err := RenderMarginalChart(&buf, "Bell pair marginal", 1000, bins, map[string]float64{"00": 0.5, "11": 0.5})
	if err != nil {
		t.Fatalf("RenderMarginalChart: %v", err)
	}
	if !strings.Contains(buf.String(), "Bell pair marginal") {
		t.Fatalf("rendered HTML should contain the chart title")
	}
}
