package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/dataset"
)

// ErrNoTimestamp means the records carry no datetime column to plot against.
var ErrNoTimestamp = errors.New("timestamp column not available")

// excludedMetrics never appear as selectable chart metrics.
var excludedMetrics = map[string]bool{dataset.CountryColumn: true, "Cleaning": true}

// NumericMetrics lists numeric columns suitable for charting, in column order.
// Country, Cleaning and *_zscore columns are left out.
func NumericMetrics(rs *dataset.RecordSet) []string {
	var out []string
	for _, name := range rs.Columns() {
		if excludedMetrics[name] || strings.HasSuffix(name, "_zscore") {
			continue
		}
		if _, ok := rs.Numbers(name); ok {
			out = append(out, name)
		}
	}
	return out
}

// DefaultMetric picks GHI when it is selectable, otherwise the first numeric metric.
func DefaultMetric(rs *dataset.RecordSet) string {
	metrics := NumericMetrics(rs)
	for _, m := range metrics {
		if m == "GHI" {
			return m
		}
	}
	if len(metrics) > 0 {
		return metrics[0]
	}
	return ""
}

// groupOrder returns group keys in first-appearance order with their rows.
func groupOrder(keys []string) ([]string, map[string][]int) {
	var order []string
	rows := map[string][]int{}
	for i, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := rows[k]; !ok {
			order = append(order, k)
		}
		rows[k] = append(rows[k], i)
	}
	return order, rows
}

// Box is the five-number summary of one country's metric.
type Box struct {
	Country string  `json:"country"`
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	// Values are the finite observations, sorted; not serialized.
	Values []float64 `json:"-"`
}

// BoxStats computes per-country quartiles of metric. Countries without any
// finite value are omitted.
func BoxStats(rs *dataset.RecordSet, metric string) ([]Box, error) {
	vals, ok := rs.Numbers(metric)
	if !ok {
		return nil, fmt.Errorf("metric %s: %w", metric, ErrMissingColumn)
	}
	keys, ok := rs.Texts(dataset.CountryColumn)
	if !ok {
		return nil, fmt.Errorf("group by %s: %w", dataset.CountryColumn, ErrMissingColumn)
	}
	order, rows := groupOrder(keys)
	out := make([]Box, 0, len(order))
	for _, country := range order {
		v := finite(vals, rows[country])
		if len(v) == 0 {
			continue
		}
		sort.Float64s(v)
		m, _ := mean(v)
		out = append(out, Box{
			Country: country,
			Count:   len(v),
			Min:     v[0],
			Q1:      quantile(v, 0.25),
			Median:  quantile(v, 0.5),
			Q3:      quantile(v, 0.75),
			Max:     v[len(v)-1],
			Mean:    m,
			Values:  v,
		})
	}
	return out, nil
}

// Point is one timestamped reading.
type Point struct {
	Time  time.Time `json:"t"`
	Value float64   `json:"v"`
}

// Series is one country's readings of a metric in file order.
type Series struct {
	Country string  `json:"country"`
	Metric  string  `json:"metric"`
	Points  []Point `json:"points"`
}

// TimeSeries extracts (Timestamp, metric) per country. Rows with a missing
// time or value are dropped.
func TimeSeries(rs *dataset.RecordSet, metric string) ([]Series, error) {
	ts, ok := rs.Times(dataset.TimestampColumn)
	if !ok {
		return nil, ErrNoTimestamp
	}
	vals, ok := rs.Numbers(metric)
	if !ok {
		return nil, fmt.Errorf("metric %s: %w", metric, ErrMissingColumn)
	}
	keys, ok := rs.Texts(dataset.CountryColumn)
	if !ok {
		return nil, fmt.Errorf("group by %s: %w", dataset.CountryColumn, ErrMissingColumn)
	}
	order, rows := groupOrder(keys)
	out := make([]Series, 0, len(order))
	for _, country := range order {
		s := Series{Country: country, Metric: metric}
		for _, i := range rows[country] {
			if ts[i].IsZero() || math.IsNaN(vals[i]) {
				continue
			}
			s.Points = append(s.Points, Point{Time: ts[i], Value: vals[i]})
		}
		out = append(out, s)
	}
	return out, nil
}

// Resample averages each series into fixed buckets of width every, keyed by
// the bucket start. Buckets are emitted in time order. A non-positive width
// returns the input unchanged.
func Resample(series []Series, every time.Duration) []Series {
	if every <= 0 {
		return series
	}
	out := make([]Series, len(series))
	for i, s := range series {
		type acc struct {
			sum float64
			n   int
		}
		buckets := map[int64]*acc{}
		var starts []int64
		for _, p := range s.Points {
			k := p.Time.Truncate(every).UnixNano()
			a := buckets[k]
			if a == nil {
				a = &acc{}
				buckets[k] = a
				starts = append(starts, k)
			}
			a.sum += p.Value
			a.n++
		}
		sort.Slice(starts, func(a, b int) bool { return starts[a] < starts[b] })
		rs := Series{Country: s.Country, Metric: s.Metric, Points: make([]Point, 0, len(starts))}
		for _, k := range starts {
			a := buckets[k]
			rs.Points = append(rs.Points, Point{Time: time.Unix(0, k).UTC(), Value: a.sum / float64(a.n)})
		}
		out[i] = rs
	}
	return out
}
