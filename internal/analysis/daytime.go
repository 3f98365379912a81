package analysis

import (
	"github.com/KaramelBytes/solarlens/internal/dataset"
)

// DaytimeGHIMin is the irradiance (W/m²) above which a reading counts as daytime.
const DaytimeGHIMin = 10.0

// FilterDaytime keeps rows with GHI > DaytimeGHIMin.
func FilterDaytime(rs *dataset.RecordSet) *dataset.RecordSet {
	return FilterAbove(rs, "GHI", DaytimeGHIMin)
}

// FilterAbove keeps rows whose metric is strictly greater than threshold. Missing
// values never pass, and a set without the metric yields an empty result.
// The input is not modified.
func FilterAbove(rs *dataset.RecordSet, metric string, threshold float64) *dataset.RecordSet {
	vals, ok := rs.Numbers(metric)
	if !ok {
		return rs.Select(func(int) bool { return false })
	}
	return rs.Select(func(i int) bool { return vals[i] > threshold })
}

// DaytimeView is the set the dashboard plots from: the daytime rows when
// there are any, else the whole input.
type DaytimeView struct {
	Records *dataset.RecordSet
	// FellBack is true when the input had rows but none passed the filter.
	FellBack bool
}

// Daytime applies the filter with the given threshold and its fallback.
func Daytime(rs *dataset.RecordSet, threshold float64) DaytimeView {
	day := FilterAbove(rs, "GHI", threshold)
	if day.Empty() && !rs.Empty() {
		return DaytimeView{Records: rs.Copy(), FellBack: true}
	}
	return DaytimeView{Records: day}
}
