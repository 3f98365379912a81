package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/KaramelBytes/solarlens/internal/analysis"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type countryOption struct {
	Label    string
	Selected bool
}

type chartLink struct {
	Metric string
	Title  string
	URL    template.URL
}

type pageData struct {
	Countries    []countryOption
	Warnings     []string
	DaytimeMin   float64
	HasData      bool
	Boxes        []chartLink
	Summary      *analysis.SummaryTable
	SummaryNote  string
	SeriesMetric string
	Metrics      []string
	Series       *chartLink
	SeriesNote   string
}

func chartURL(path string, sel []string, metric string) template.URL {
	q := url.Values{}
	q.Set("metric", metric)
	for _, c := range sel {
		q.Add("country", c)
	}
	return template.URL(path + "?" + q.Encode())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := s.view(r)
	data := pageData{Warnings: v.Warnings(), DaytimeMin: v.Threshold}

	selected := map[string]bool{}
	for _, c := range v.Selected {
		selected[c] = true
	}
	for _, l := range s.loader.Catalog().Labels() {
		data.Countries = append(data.Countries, countryOption{Label: l, Selected: selected[l]})
	}

	if !v.Combined.Empty() {
		day := v.Daytime.Records
		data.HasData = true
		for _, m := range s.settings.BoxMetrics {
			link := chartLink{Metric: m, Title: m + " Distribution"}
			if day.Has(m) {
				link.URL = chartURL("/chart/box.png", v.Selected, m)
			}
			data.Boxes = append(data.Boxes, link)
		}

		tbl, err := v.Summary(s.settings.SummaryMetrics)
		switch {
		case errors.Is(err, analysis.ErrNoSuitableMetrics):
			data.SummaryNote = "No suitable metrics available for the summary table in selected data."
		case err != nil:
			data.SummaryNote = err.Error()
		default:
			data.Summary = tbl
		}

		data.Metrics = analysis.NumericMetrics(v.Combined)
		metric := q.Get("metric")
		if metric == "" {
			metric = analysis.DefaultMetric(v.Combined)
		}
		data.SeriesMetric = metric
		if _, err := v.Series(metric); err != nil {
			data.SeriesNote = "Combined data or Timestamp column not available for time series viewer."
			if !errors.Is(err, analysis.ErrNoTimestamp) {
				data.SeriesNote = "Metric '" + metric + "' not available for time series plot."
			}
		} else {
			data.Series = &chartLink{Metric: metric, Title: metric + " Over Time", URL: chartURL("/chart/timeseries.png", v.Selected, metric)}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
