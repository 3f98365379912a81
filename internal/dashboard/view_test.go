package dashboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/solarlens/internal/analysis"
)

func TestPrepareRecordsFailures(t *testing.T) {
	s := newTestServer(t)
	v := Prepare(s.loader, []string{"Sierra Leone (Bumbuna)"}, 10)
	if !v.Combined.Empty() || len(v.Failures) != 1 {
		t.Fatalf("combined=%d failures=%d", v.Combined.Len(), len(v.Failures))
	}
	w := v.Warnings()
	if len(w) != 2 || !strings.HasPrefix(w[1], "Failed to load data") {
		t.Fatalf("warnings = %v", w)
	}
	if _, err := v.Summary(nil); !errors.Is(err, analysis.ErrNoSuitableMetrics) {
		t.Fatalf("summary err = %v", err)
	}
}

func TestPrepareDaytimeFallbackWarning(t *testing.T) {
	s := newTestServer(t)
	v := Prepare(s.loader, []string{"Benin (Malanville)"}, 5000)
	if !v.Daytime.FellBack || v.Daytime.Records.Len() != 3 {
		t.Fatalf("expected fallback, got %+v", v.Daytime)
	}
	w := v.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "GHI > 5000") {
		t.Fatalf("warnings = %v", w)
	}
	series, err := v.Series("")
	if err != nil || len(series) != 1 || series[0].Metric != "GHI" {
		t.Fatalf("series = %+v, %v", series, err)
	}
}
