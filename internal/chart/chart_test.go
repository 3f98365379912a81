package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/solarlens/internal/analysis"
)

func sampleBoxes() []analysis.Box {
	return []analysis.Box{
		{Country: "Benin (Malanville)", Count: 4, Values: []float64{100, 200, 300, 400}},
		{Country: "Togo (Dapaong QC)", Count: 3, Values: []float64{150, 250, 350}},
	}
}

func TestBoxRendersPNG(t *testing.T) {
	p, err := Box(sampleBoxes(), "GHI")
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	if p.Title.Text != "Global Horizontal Irradiance (GHI)" || p.Y.Label.Text != "GHI (W/m²)" {
		t.Fatalf("title/label = %q / %q", p.Title.Text, p.Y.Label.Text)
	}
	var buf bytes.Buffer
	if err := Render(&buf, p, Size{Width: 4, Height: 3}, "png"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestBoxNoData(t *testing.T) {
	if _, err := Box(nil, "GHI"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v", err)
	}
}

func TestLinesSaveSVG(t *testing.T) {
	base := time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC)
	series := []analysis.Series{
		{Country: "A", Metric: "Tamb", Points: []analysis.Point{{Time: base, Value: 20}, {Time: base.Add(time.Hour), Value: 22}}},
		{Country: "B", Metric: "Tamb"},
	}
	p, err := Lines(series, "Tamb")
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ts.svg")
	if err := Save(path, p, DefaultSize); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(b, []byte("<svg")) {
		t.Fatalf("expected svg output")
	}
	if _, err := Lines([]analysis.Series{{Country: "B"}}, "Tamb"); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty series err = %v", err)
	}
}

func TestFormat(t *testing.T) {
	for in, want := range map[string]string{"": "png", ".PNG": "png", "svg": "svg"} {
		got, err := Format(in)
		if err != nil || got != want {
			t.Fatalf("Format(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := Format("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
	if ContentType("svg") != "image/svg+xml" || ContentType("png") != "image/png" {
		t.Fatalf("content types wrong")
	}
}
