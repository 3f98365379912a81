// Package chart renders the dashboard's irradiance box plots and time-series
// views to PNG or SVG with gonum/plot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData means there was nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Size is the canvas size in inches.
type Size struct {
	Width  float64
	Height float64
}

// DefaultSize fits a half-width dashboard column.
var DefaultSize = Size{Width: 8, Height: 5}

func (s Size) lengths() (vg.Length, vg.Length) {
	w, h := s.Width, s.Height
	if w <= 0 {
		w = DefaultSize.Width
	}
	if h <= 0 {
		h = DefaultSize.Height
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

var units = map[string]string{
	"GHI": "W/m²", "DNI": "W/m²", "DHI": "W/m²",
	"ModA": "W/m²", "ModB": "W/m²",
	"Tamb": "°C", "TModA": "°C", "TModB": "°C",
	"RH": "%", "WS": "m/s", "WSgust": "m/s", "BP": "hPa",
}

var titles = map[string]string{
	"GHI": "Global Horizontal Irradiance (GHI)",
	"DNI": "Direct Normal Irradiance (DNI)",
	"DHI": "Diffuse Horizontal Irradiance (DHI)",
}

// AxisLabel returns "GHI (W/m²)" style labels, or the bare metric when its unit is unknown.
func AxisLabel(metric string) string {
	if u, ok := units[metric]; ok {
		return fmt.Sprintf("%s (%s)", metric, u)
	}
	return metric
}

// Box draws one box per country with whiskers at 1.5 IQR; outlier glyphs are hidden.
func Box(boxes []analysis.Box, metric string) (*plot.Plot, error) {
	if len(boxes) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = metric + " Distribution"
	if t, ok := titles[metric]; ok {
		p.Title.Text = t
	}
	p.Y.Label.Text = AxisLabel(metric)
	p.X.Label.Text = "Country"

	names := make([]string, len(boxes))
	w := vg.Points(40)
	for i, b := range boxes {
		bp, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(b.Values))
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.Country, err)
		}
		bp.FillColor = plotutil.Color(i)
		bp.GlyphStyle.Radius = 0
		p.Add(bp)
		names[i] = b.Country
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())
	return p, nil
}

// Lines draws one line per country series against time.
func Lines(series []analysis.Series, metric string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = metric + " Over Time"
	p.Y.Label.Text = AxisLabel(metric)
	p.X.Label.Text = "Timestamp"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true

	drawn := 0
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Time.Unix())
			xys[j].Y = pt.Value
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", s.Country, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Country, line)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Format normalizes an output format name; only png and svg are served.
func Format(name string) (string, error) {
	f := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	switch f {
	case "", "png":
		return "png", nil
	case "svg":
		return "svg", nil
	default:
		return "", fmt.Errorf("unsupported chart format: %s (use png|svg)", name)
	}
}

// ContentType returns the MIME type for a normalized format.
func ContentType(format string) string {
	if format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render writes p to w in format.
func Render(w io.Writer, p *plot.Plot, size Size, format string) error {
	f, err := Format(format)
	if err != nil {
		return err
	}
	width, height := size.lengths()
	wt, err := p.WriterTo(width, height, f)
	if err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// Save renders p to path, choosing the format from its extension.
func Save(path string, p *plot.Plot, size Size) error {
	f, err := Format(filepath.Ext(path))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Render(&buf, p, size, f); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
