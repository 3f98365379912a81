// Package analysis derives the dashboard's views from loaded measurement
// records: the daytime filter, per-country summary statistics, box-plot
// quartiles and time series.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/solarlens/internal/dataset"
)

var (
	// ErrNoSuitableMetrics means none of the requested metrics is a numeric column.
	ErrNoSuitableMetrics = errors.New("no suitable metrics available")
	// ErrMissingColumn means a required column is absent or has the wrong kind.
	ErrMissingColumn = errors.New("missing column")
)

// Statistic names one per-group aggregate.
type Statistic string

const (
	Mean   Statistic = "mean"
	Median Statistic = "median"
	Std    Statistic = "std"
)

// DefaultStatistics are computed for every metric unless overridden.
var DefaultStatistics = []Statistic{Mean, Median, Std}

// DefaultMetrics are the channels summarized on the dashboard.
var DefaultMetrics = []string{"GHI", "DNI", "DHI", "Tamb", "TModA"}

// DefaultSortColumn ranks countries in the summary table.
const DefaultSortColumn = "GHI_mean"

// FlatName joins a metric and statistic into a summary column name, e.g. GHI_mean.
func FlatName(metric string, stat Statistic) string {
	return metric + "_" + string(stat)
}

// Cell is a summary value that may be undefined (for example the standard
// deviation of a single reading).
type Cell struct {
	Value float64
	Valid bool
}

func cell(v float64, ok bool) Cell {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Value: v, Valid: true}
}

// String renders two decimals, or blank when undefined.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", c.Value)
}

// MarshalJSON encodes undefined cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// SummaryRow holds one country's aggregates keyed by flat column name.
type SummaryRow struct {
	Country string
	Count   int
	Values  map[string]Cell
}

// Entry is the long form of one summary value.
type Entry struct {
	Country   string    `json:"country"`
	Metric    string    `json:"metric"`
	Statistic Statistic `json:"statistic"`
	Value     Cell      `json:"value"`
}

// SummaryTable is one row per country and one column per (metric, statistic).
type SummaryTable struct {
	Metrics    []string
	Statistics []Statistic
	// Columns are the flat names in metric-major order.
	Columns []string
	Rows    []SummaryRow
	// SortedBy names the column rows are ordered by, descending. Empty means
	// no sort was applied and rows are in country order.
	SortedBy string
}

// Empty reports whether the table has no rows.
func (t *SummaryTable) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Sorted reports whether a ranking column was applied.
func (t *SummaryTable) Sorted() bool { return t != nil && t.SortedBy != "" }

// Get returns a value by country and flat column name.
func (t *SummaryTable) Get(country, column string) (Cell, bool) {
	if t == nil {
		return Cell{}, false
	}
	for _, r := range t.Rows {
		if r.Country == country {
			c, ok := r.Values[column]
			return c, ok
		}
	}
	return Cell{}, false
}

// Entries flattens the table into (country, metric, statistic, value) records
// in row order then metric × statistic order.
func (t *SummaryTable) Entries() []Entry {
	var out []Entry
	for _, r := range t.Rows {
		for _, m := range t.Metrics {
			for _, s := range t.Statistics {
				out = append(out, Entry{Country: r.Country, Metric: m, Statistic: s, Value: r.Values[FlatName(m, s)]})
			}
		}
	}
	return out
}

// MarshalJSON emits {"columns": [...], "sorted_by": "...", "rows": [{...}]}.
func (t *SummaryTable) MarshalJSON() ([]byte, error) {
	type row map[string]any
	rows := make([]row, 0, len(t.Rows))
	for _, r := range t.Rows {
		m := row{dataset.CountryColumn: r.Country, "count": r.Count}
		for _, c := range t.Columns {
			m[c] = r.Values[c]
		}
		rows = append(rows, m)
	}
	cols := append([]string{dataset.CountryColumn}, t.Columns...)
	return json.Marshal(struct {
		Columns  []string `json:"columns"`
		SortedBy string   `json:"sorted_by,omitempty"`
		Rows     []row    `json:"rows"`
	}{cols, t.SortedBy, rows})
}

// SummaryOptions controls BuildSummary.
type SummaryOptions struct {
	// Metrics in requested order; absent or non-numeric ones are skipped.
	Metrics []string
	// Statistics per metric. Defaults to DefaultStatistics.
	Statistics []Statistic
	// GroupBy is the text column rows are grouped on. Defaults to Country.
	GroupBy string
	// SortBy is the preferred ranking column. Defaults to DefaultSortColumn.
	SortBy string
}

// BuildSummary groups records by country and computes mean, median and sample
// standard deviation for each requested metric present in records.
func BuildSummary(rs *dataset.RecordSet, metrics []string) (*SummaryTable, error) {
	return Summarize(rs, SummaryOptions{Metrics: metrics})
}

// Summarize is BuildSummary with explicit options.
//
// Rows are ordered by SortBy descending when that column exists, else by the
// first retained metric's mean, else left in ascending group-key order with
// SortedBy empty. Undefined values sort last. When no requested metric is
// present the table is empty and ErrNoSuitableMetrics is returned.
func Summarize(rs *dataset.RecordSet, opt SummaryOptions) (*SummaryTable, error) {
	stats := opt.Statistics
	if len(stats) == 0 {
		stats = DefaultStatistics
	}
	groupBy := opt.GroupBy
	if groupBy == "" {
		groupBy = dataset.CountryColumn
	}
	sortBy := opt.SortBy
	if sortBy == "" {
		sortBy = DefaultSortColumn
	}

	t := &SummaryTable{Statistics: append([]Statistic(nil), stats...)}
	seen := map[string]bool{}
	for _, m := range opt.Metrics {
		if seen[m] {
			continue
		}
		seen[m] = true
		if _, ok := rs.Numbers(m); ok {
			t.Metrics = append(t.Metrics, m)
		}
	}
	if len(t.Metrics) == 0 {
		return t, ErrNoSuitableMetrics
	}
	for _, m := range t.Metrics {
		for _, s := range stats {
			t.Columns = append(t.Columns, FlatName(m, s))
		}
	}

	keys, ok := rs.Texts(groupBy)
	if !ok {
		return t, fmt.Errorf("group by %s: %w", groupBy, ErrMissingColumn)
	}
	groups := map[string][]int{}
	for i, k := range keys {
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], i)
	}
	names := make([]string, 0, len(groups))
	for k := range groups {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		rows := groups[name]
		r := SummaryRow{Country: name, Count: len(rows), Values: make(map[string]Cell, len(t.Columns))}
		for _, m := range t.Metrics {
			col, _ := rs.Numbers(m)
			vals := finite(col, rows)
			for _, s := range stats {
				r.Values[FlatName(m, s)] = aggregate(vals, s)
			}
		}
		t.Rows = append(t.Rows, r)
	}

	for _, c := range []string{sortBy, FlatName(t.Metrics[0], Mean)} {
		if hasColumn(t.Columns, c) {
			sortDesc(t.Rows, c)
			t.SortedBy = c
			break
		}
	}
	return t, nil
}

func aggregate(vals []float64, s Statistic) Cell {
	switch s {
	case Mean:
		return cell(mean(vals))
	case Median:
		return cell(median(vals))
	case Std:
		return cell(sampleStd(vals))
	default:
		return Cell{}
	}
}

func hasColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

func sortDesc(rows []SummaryRow, col string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Values[col], rows[j].Values[col]
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Value > b.Value
	})
}
