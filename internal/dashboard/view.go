package dashboard

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/dataset"
)

// Settings are the analysis knobs shared by the CLI and the web page.
type Settings struct {
	DaytimeMin     float64
	SummaryMetrics []string
	BoxMetrics     []string
}

// DefaultSettings mirrors the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		DaytimeMin:     analysis.DaytimeGHIMin,
		SummaryMetrics: append([]string(nil), analysis.DefaultMetrics...),
		BoxMetrics:     []string{"GHI", "DNI"},
	}
}

// View is one selection loaded and filtered, ready to summarise or plot.
type View struct {
	Selected  []string
	Threshold float64
	Combined  *dataset.RecordSet
	Daytime   analysis.DaytimeView
	Failures  []*dataset.LoadError
}

// Prepare loads the selected countries and applies the daytime filter.
// Load failures are recorded on the view, never returned.
func Prepare(l *dataset.Loader, selected []string, threshold float64) *View {
	v := &View{Selected: selected, Threshold: threshold}
	rs, err := l.LoadMerged(selected)
	var me *dataset.MergeError
	if errors.As(err, &me) {
		v.Failures = me.Failures
	}
	v.Combined = rs
	v.Daytime = analysis.Daytime(rs, threshold)
	return v
}

// Warnings are the user-facing notes for this view, in display order.
func (v *View) Warnings() []string {
	var out []string
	if len(v.Selected) == 0 {
		return []string{"Please select at least one country to view data."}
	}
	for _, f := range v.Failures {
		out = append(out, f.Error())
	}
	if v.Combined.Empty() {
		out = append(out, "Failed to load data for the selected countries. Please ensure CSV files are present in the data directory and accessible.")
		return out
	}
	if v.Daytime.FellBack {
		out = append(out, fmt.Sprintf("No data points with GHI > %g W/m² found for the selected countries. Plots are based on all data.", v.Threshold))
	}
	return out
}

// Summary builds the daytime summary table for the view.
func (v *View) Summary(metrics []string) (*analysis.SummaryTable, error) {
	if len(metrics) == 0 {
		metrics = analysis.DefaultMetrics
	}
	return analysis.BuildSummary(v.Daytime.Records, metrics)
}

// Boxes returns per-country box statistics over the daytime records.
func (v *View) Boxes(metric string) ([]analysis.Box, error) {
	return analysis.BoxStats(v.Daytime.Records, metric)
}

// Series returns per-country time series over the unfiltered records.
func (v *View) Series(metric string) ([]analysis.Series, error) {
	if metric == "" {
		metric = analysis.DefaultMetric(v.Combined)
	}
	return analysis.TimeSeries(v.Combined, metric)
}
