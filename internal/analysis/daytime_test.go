package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/solarlens/internal/dataset"
)

func TestFilterDaytimeIdempotent(t *testing.T) {
	rs := recordSet(t, []string{"A", "A", "B", "B", "B"}, map[string][]float64{
		"GHI": {0, 11, 10, math.NaN(), 600},
	})
	once := FilterDaytime(rs)
	if once.Len() != 2 {
		t.Fatalf("rows = %d, want 2", once.Len())
	}
	twice := FilterDaytime(once)
	if twice.Len() != once.Len() {
		t.Fatalf("filter not idempotent: %d vs %d", twice.Len(), once.Len())
	}
	a, _ := once.Numbers("GHI")
	b, _ := twice.Numbers("GHI")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs", i)
		}
	}
	if rs.Len() != 5 {
		t.Fatalf("input mutated")
	}
}

func TestDaytimeFallback(t *testing.T) {
	night := recordSet(t, []string{"A", "B"}, map[string][]float64{"GHI": {0, 5}})
	v := Daytime(night, DaytimeGHIMin)
	if !v.FellBack || v.Records.Len() != 2 {
		t.Fatalf("expected fallback to full set, got %+v rows=%d", v.FellBack, v.Records.Len())
	}

	day := recordSet(t, []string{"A", "B"}, map[string][]float64{"GHI": {0, 50}})
	v = Daytime(day, DaytimeGHIMin)
	if v.FellBack || v.Records.Len() != 1 {
		t.Fatalf("unexpected view %+v rows=%d", v.FellBack, v.Records.Len())
	}

	v = Daytime(dataset.Empty(), DaytimeGHIMin)
	if v.FellBack || !v.Records.Empty() {
		t.Fatalf("empty input should stay empty without fallback")
	}
}

func TestFilterWithoutGHI(t *testing.T) {
	rs := recordSet(t, []string{"A"}, map[string][]float64{"DNI": {100}})
	if !FilterDaytime(rs).Empty() {
		t.Fatalf("expected empty result without GHI column")
	}
}

func TestBoxStats(t *testing.T) {
	rs := recordSet(t, []string{"B", "B", "B", "B", "B", "A"}, map[string][]float64{
		"GHI": {5, 1, 3, 2, 4, 7},
	})
	boxes, err := BoxStats(rs, "GHI")
	if err != nil {
		t.Fatalf("BoxStats: %v", err)
	}
	if len(boxes) != 2 || boxes[0].Country != "B" {
		t.Fatalf("boxes = %#v", boxes)
	}
	b := boxes[0]
	if b.Min != 1 || b.Q1 != 2 || b.Median != 3 || b.Q3 != 4 || b.Max != 5 || b.Count != 5 {
		t.Fatalf("box B = %#v", b)
	}
	if _, err := BoxStats(rs, "DNI"); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestTimeSeriesAndResample(t *testing.T) {
	base := time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(25 * time.Hour), {}}
	rs, err := dataset.New(
		dataset.TimeColumn(dataset.TimestampColumn, times),
		dataset.NumberColumn("GHI", []float64{10, 30, 50, 70}),
		dataset.NumberColumn("GHI_zscore", []float64{0, 0, 0, 0}),
		dataset.NumberColumn("Cleaning", []float64{0, 0, 0, 0}),
		dataset.TextColumn(dataset.CountryColumn, []string{"A", "A", "A", "A"}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	metrics := NumericMetrics(rs)
	if len(metrics) != 1 || metrics[0] != "GHI" || DefaultMetric(rs) != "GHI" {
		t.Fatalf("metrics = %v", metrics)
	}

	series, err := TimeSeries(rs, "GHI")
	if err != nil {
		t.Fatalf("TimeSeries: %v", err)
	}
	if len(series) != 1 || len(series[0].Points) != 3 {
		t.Fatalf("series = %#v", series)
	}
	daily := Resample(series, 24*time.Hour)
	pts := daily[0].Points
	if len(pts) != 2 || pts[0].Value != 20 || pts[1].Value != 50 {
		t.Fatalf("daily = %#v", pts)
	}

	noTime := recordSet(t, []string{"A"}, map[string][]float64{"GHI": {1}})
	if _, err := TimeSeries(noTime, "GHI"); err != ErrNoTimestamp {
		t.Fatalf("err = %v, want ErrNoTimestamp", err)
	}
}
