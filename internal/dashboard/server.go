// Package dashboard serves the solar comparison page, its JSON API and chart
// images over HTTP.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/chart"
	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/KaramelBytes/solarlens/internal/logging"
	"github.com/google/uuid"
	"gonum.org/v1/plot"
)

// RequestIDHeader carries the id logged for each request.
const RequestIDHeader = "X-Request-Id"

// Options configures a Server.
type Options struct {
	Loader    *dataset.Loader
	Settings  Settings
	ChartSize chart.Size
}

// Server renders views for country selections taken from the query string.
type Server struct {
	loader   *dataset.Loader
	settings Settings
	size     chart.Size
}

// ErrResp is the JSON body of every non-2xx API response.
type ErrResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// New builds a server; a nil loader uses the stock catalog and directories.
func New(opt Options) *Server {
	s := &Server{loader: opt.Loader, settings: opt.Settings, size: opt.ChartSize}
	if s.loader == nil {
		s.loader = dataset.NewLoader(dataset.DefaultOptions())
	}
	if s.settings.DaytimeMin == 0 && len(s.settings.SummaryMetrics) == 0 && len(s.settings.BoxMetrics) == 0 {
		s.settings = DefaultSettings()
	}
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/boxplot", s.handleBoxplot)
	mux.HandleFunc("GET /api/timeseries", s.handleTimeseries)
	mux.HandleFunc("GET /chart/box.png", s.handleBoxChart)
	mux.HandleFunc("GET /chart/timeseries.png", s.handleTimeseriesChart)
	return withRequestLog(mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logging.LogEvent("dashboard listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logging.LogEvent("dashboard stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r.Header.Get(RequestIDHeader))
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logging.LogRequest(id, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// requestID keeps a client-supplied id only when it is a valid UUID.
func requestID(supplied string) string {
	if u, err := uuid.Parse(strings.TrimSpace(supplied)); err == nil {
		return u.String()
	}
	return uuid.NewString()
}

// selection reads repeated country= parameters. Without any, every catalog
// country is selected; country= with only blank values selects none.
func (s *Server) selection(q url.Values) []string {
	vals, ok := q["country"]
	if !ok {
		return s.loader.Catalog().Labels()
	}
	out := []string{}
	seen := map[string]bool{}
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (s *Server) view(r *http.Request) *View {
	return Prepare(s.loader, s.selection(r.URL.Query()), s.settings.DaytimeMin)
}

// boxMetric is the requested metric, else the first configured box metric
// present in records, else the default chart metric.
func (s *Server) boxMetric(q url.Values, rs *dataset.RecordSet) string {
	if m := strings.TrimSpace(q.Get("metric")); m != "" {
		return m
	}
	for _, m := range s.settings.BoxMetrics {
		if rs.Has(m) {
			return m
		}
	}
	return analysis.DefaultMetric(rs)
}

func summaryMetrics(q url.Values, fallback []string) []string {
	raw := strings.TrimSpace(q.Get("metrics"))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type countryInfo struct {
	Label string `json:"label"`
	File  string `json:"file"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	entries := s.loader.Catalog().Entries()
	out := make([]countryInfo, 0, len(entries))
	for _, e := range entries {
		info := countryInfo{Label: e.Label, File: e.File}
		if p, err := s.loader.Resolve(e.Label); err != nil {
			info.Error = err.Error()
		} else {
			info.Path = p
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type summaryResp struct {
	Countries   []string               `json:"countries"`
	Rows        int                    `json:"rows"`
	DaytimeRows int                    `json:"daytime_rows"`
	FellBack    bool                   `json:"fell_back"`
	Skipped     int                    `json:"skipped"`
	Warnings    []string               `json:"warnings,omitempty"`
	Summary     *analysis.SummaryTable `json:"summary"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	resp := summaryResp{
		Countries:   v.Selected,
		Rows:        v.Combined.Len(),
		DaytimeRows: v.Daytime.Records.Len(),
		FellBack:    v.Daytime.FellBack,
		Skipped:     len(v.Failures),
		Warnings:    v.Warnings(),
	}
	tbl, err := v.Summary(summaryMetrics(r.URL.Query(), s.settings.SummaryMetrics))
	if err != nil && !v.Combined.Empty() {
		resp.Warnings = append(resp.Warnings, err.Error())
	}
	resp.Summary = tbl
	writeJSON(w, http.StatusOK, resp)
}

type boxResp struct {
	Metric string         `json:"metric"`
	Boxes  []analysis.Box `json:"boxes"`
}

func (s *Server) boxes(w http.ResponseWriter, r *http.Request) (string, []analysis.Box, bool) {
	v := s.view(r)
	metric := s.boxMetric(r.URL.Query(), v.Daytime.Records)
	boxes, err := v.Boxes(metric)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrResp{Error: fmt.Sprintf("%s data not available for selected countries", metric)})
		return metric, nil, false
	}
	return metric, boxes, true
}

func (s *Server) handleBoxplot(w http.ResponseWriter, r *http.Request) {
	metric, boxes, ok := s.boxes(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, boxResp{Metric: metric, Boxes: boxes})
}

type seriesResp struct {
	Metric string            `json:"metric"`
	Every  string            `json:"resample,omitempty"`
	Series []analysis.Series `json:"series"`
}

func (s *Server) series(w http.ResponseWriter, r *http.Request) (string, []analysis.Series, bool) {
	q := r.URL.Query()
	var every time.Duration
	if raw := strings.TrimSpace(q.Get("resample")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrResp{Error: "invalid resample duration: " + raw})
			return "", nil, false
		}
		every = d
	}
	v := s.view(r)
	metric := strings.TrimSpace(q.Get("metric"))
	if metric == "" {
		metric = analysis.DefaultMetric(v.Combined)
	}
	series, err := v.Series(metric)
	switch {
	case errors.Is(err, analysis.ErrNoTimestamp):
		writeJSON(w, http.StatusNotFound, ErrResp{Error: "Combined data or Timestamp column not available for time series viewer."})
		return metric, nil, false
	case err != nil:
		writeJSON(w, http.StatusNotFound, ErrResp{Error: fmt.Sprintf("Metric '%s' not available for time series plot.", metric)})
		return metric, nil, false
	}
	if every > 0 {
		series = analysis.Resample(series, every)
	}
	return metric, series, true
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	metric, series, ok := s.series(w, r)
	if !ok {
		return
	}
	resp := seriesResp{Metric: metric, Series: series}
	if raw := strings.TrimSpace(r.URL.Query().Get("resample")); raw != "" {
		resp.Every = raw
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoxChart(w http.ResponseWriter, r *http.Request) {
	metric, boxes, ok := s.boxes(w, r)
	if !ok {
		return
	}
	s.writeChart(w, r, func() (*plot.Plot, error) { return chart.Box(boxes, metric) })
}

func (s *Server) handleTimeseriesChart(w http.ResponseWriter, r *http.Request) {
	metric, series, ok := s.series(w, r)
	if !ok {
		return
	}
	s.writeChart(w, r, func() (*plot.Plot, error) { return chart.Lines(series, metric) })
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, build func() (*plot.Plot, error)) {
	format, err := chart.Format(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrResp{Error: err.Error()})
		return
	}
	p, err := build()
	if errors.Is(err, chart.ErrNoData) {
		writeJSON(w, http.StatusNotFound, ErrResp{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrResp{Error: err.Error()})
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, p, s.size, format); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrResp{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", chart.ContentType(format))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
