package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/solarlens/internal/dataset"
)

func recordSet(t *testing.T, countries []string, cols map[string][]float64) *dataset.RecordSet {
	t.Helper()
	var cs []*dataset.Column
	for _, name := range []string{"GHI", "DNI", "DHI", "Tamb", "TModA"} {
		if v, ok := cols[name]; ok {
			cs = append(cs, dataset.NumberColumn(name, v))
		}
	}
	cs = append(cs, dataset.TextColumn(dataset.CountryColumn, countries))
	rs, err := dataset.New(cs...)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return rs
}

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func mustCell(t *testing.T, tbl *SummaryTable, country, col string) Cell {
	t.Helper()
	c, ok := tbl.Get(country, col)
	if !ok {
		t.Fatalf("no %s for %s", col, country)
	}
	return c
}

func TestSummaryGetNilTable(t *testing.T) {
	var tbl *SummaryTable
	if c, ok := tbl.Get("X", "GHI_mean"); ok || c.Valid {
		t.Fatalf("nil table Get = %+v, %v", c, ok)
	}
}

func TestBuildSummaryExample(t *testing.T) {
	rs := recordSet(t, []string{"X", "X", "X", "Y"}, map[string][]float64{"GHI": {20, 40, 60, 500}})
	tbl, err := BuildSummary(rs, []string{"GHI"})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	for col, want := range map[string]float64{"GHI_mean": 40, "GHI_median": 40, "GHI_std": 20} {
		c := mustCell(t, tbl, "X", col)
		if !c.Valid || !almostEqual(c.Value, want, 1e-9) {
			t.Fatalf("X %s = %+v, want %v", col, c, want)
		}
	}
	if got := mustCell(t, tbl, "X", "GHI_std").String(); got != "20.00" {
		t.Fatalf("formatted std = %q", got)
	}
	std := mustCell(t, tbl, "Y", "GHI_std")
	if std.Valid || std.String() != "" {
		t.Fatalf("single-row std should be blank, got %+v", std)
	}
	if tbl.SortedBy != "GHI_mean" || tbl.Rows[0].Country != "Y" {
		t.Fatalf("sort = %q, first = %q", tbl.SortedBy, tbl.Rows[0].Country)
	}
}

func TestBuildSummarySkipsAbsentMetrics(t *testing.T) {
	rs := recordSet(t, []string{"A", "B"}, map[string][]float64{"GHI": {1, 2}})
	tbl, err := BuildSummary(rs, []string{"GHI", "Foo", "GHI"})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if len(tbl.Metrics) != 1 || tbl.Metrics[0] != "GHI" {
		t.Fatalf("metrics = %v", tbl.Metrics)
	}
	want := []string{"GHI_mean", "GHI_median", "GHI_std"}
	for i, c := range want {
		if tbl.Columns[i] != c {
			t.Fatalf("columns = %v", tbl.Columns)
		}
	}
}

func TestBuildSummaryNoSuitableMetrics(t *testing.T) {
	rs := recordSet(t, []string{"A"}, map[string][]float64{"GHI": {1}})
	tbl, err := BuildSummary(rs, []string{"Foo"})
	if !errors.Is(err, ErrNoSuitableMetrics) {
		t.Fatalf("err = %v", err)
	}
	if tbl == nil || !tbl.Empty() {
		t.Fatalf("expected empty table")
	}
	if _, err := BuildSummary(dataset.Empty(), DefaultMetrics); !errors.Is(err, ErrNoSuitableMetrics) {
		t.Fatalf("empty input err = %v", err)
	}
}

func TestBuildSummaryRowCountMatchesCountries(t *testing.T) {
	rs := recordSet(t, []string{"C", "A", "B", "A", "C"}, map[string][]float64{
		"GHI": {1, 2, 3, 4, 5},
		"DNI": {1, 1, 1, 1, 1},
	})
	tbl, err := BuildSummary(rs, DefaultMetrics)
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tbl.Rows))
	}
	if len(tbl.Columns) != 6 {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	// C mean 3, A mean 3, B mean 3: stable sort keeps alphabetical order.
	got := []string{tbl.Rows[0].Country, tbl.Rows[1].Country, tbl.Rows[2].Country}
	if got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Fatalf("order = %v", got)
	}
}

func TestSummarizeSortFallbacks(t *testing.T) {
	rs := recordSet(t, []string{"A", "A", "B", "B"}, map[string][]float64{"DNI": {1, 3, 10, 30}})

	tbl, err := BuildSummary(rs, []string{"DNI"})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if tbl.SortedBy != "DNI_mean" || tbl.Rows[0].Country != "B" {
		t.Fatalf("expected fallback to DNI_mean, got %q first %q", tbl.SortedBy, tbl.Rows[0].Country)
	}

	tbl, err = Summarize(rs, SummaryOptions{Metrics: []string{"DNI"}, Statistics: []Statistic{Median, Std}})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if tbl.Sorted() {
		t.Fatalf("expected unsorted table, sorted by %q", tbl.SortedBy)
	}
	if tbl.Rows[0].Country != "A" {
		t.Fatalf("unsorted rows should keep key order")
	}
	if !strings.Contains(tbl.Markdown(), "Unsorted") {
		t.Fatalf("markdown should flag unsorted table")
	}
}

func TestSummarizeIgnoresNaN(t *testing.T) {
	rs := recordSet(t, []string{"A", "A", "A"}, map[string][]float64{"GHI": {math.NaN(), 10, 30}})
	tbl, _ := BuildSummary(rs, []string{"GHI"})
	c := mustCell(t, tbl, "A", "GHI_mean")
	if !almostEqual(c.Value, 20, 1e-9) {
		t.Fatalf("mean = %v", c.Value)
	}
	if tbl.Rows[0].Count != 3 {
		t.Fatalf("count = %d", tbl.Rows[0].Count)
	}
}

func TestSummaryRendering(t *testing.T) {
	rs := recordSet(t, []string{"X", "Y"}, map[string][]float64{"GHI": {20, 40}})
	tbl, _ := BuildSummary(rs, []string{"GHI"})

	md := tbl.Markdown()
	if !strings.Contains(md, "| Country | GHI_mean | GHI_median | GHI_std |") {
		t.Fatalf("markdown header: %s", md)
	}
	if !strings.Contains(md, "| Y | 40.00 | 40.00 |  |") {
		t.Fatalf("markdown row: %s", md)
	}

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Country,GHI_mean,GHI_median,GHI_std\nY,40.00,40.00,\n") {
		t.Fatalf("csv = %q", buf.String())
	}

	buf.Reset()
	tbl.WriteTable(&buf)
	if !strings.Contains(buf.String(), "GHI_mean") {
		t.Fatalf("console table = %q", buf.String())
	}

	b, err := json.Marshal(tbl)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"GHI_std":null`) || !strings.Contains(string(b), `"sorted_by":"GHI_mean"`) {
		t.Fatalf("json = %s", b)
	}

	entries := tbl.Entries()
	if len(entries) != 6 || entries[0].Country != "Y" || entries[0].Statistic != Mean {
		t.Fatalf("entries = %#v", entries)
	}
}
