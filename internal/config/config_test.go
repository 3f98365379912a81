package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CacheTTLSec != 3600 || c.TTL() != time.Hour {
		t.Fatalf("ttl = %d", c.CacheTTLSec)
	}
	if len(c.DataDirs) != 2 || c.DataDirs[0] != "data" {
		t.Fatalf("data_dirs = %v", c.DataDirs)
	}
	if c.DaytimeGHIMin != 10 || c.ListenAddr != "127.0.0.1:8501" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.SummaryMetrics) != 5 || c.SummaryMetrics[0] != "GHI" {
		t.Fatalf("summary_metrics = %v", c.SummaryMetrics)
	}
	cat, err := c.Catalog()
	if err != nil || cat.Len() != 3 {
		t.Fatalf("catalog = %v, %v", cat, err)
	}
}

func TestTTLNonPositiveDisablesCache(t *testing.T) {
	for _, sec := range []int{0, -5} {
		c := Defaults()
		c.CacheTTLSec = sec
		if got := c.TTL(); got >= 0 {
			t.Fatalf("cache_ttl_sec=%d: ttl = %v, want negative", sec, got)
		}
		opt, err := c.LoaderOptions()
		if err != nil {
			t.Fatalf("LoaderOptions: %v", err)
		}
		if opt.TTL >= 0 {
			t.Fatalf("cache_ttl_sec=%d: loader ttl = %v, want negative", sec, opt.TTL)
		}
	}
}

func TestSaveLoadRoundTripAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	c := Defaults()
	if err := c.Set("countries", "Niger (Niamey)=niger_clean.csv"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set("cache_ttl_sec", "60"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Setenv("SOLARLENS_LISTEN_ADDR", "0.0.0.0:9000")

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CacheTTLSec != 60 || got.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("got %+v", got)
	}
	opt, err := got.LoaderOptions()
	if err != nil {
		t.Fatalf("LoaderOptions: %v", err)
	}
	if f, ok := opt.Catalog.Lookup("Niger (Niamey)"); !ok || f != "niger_clean.csv" {
		t.Fatalf("override missing: %q %v", f, ok)
	}
	if opt.TTL != time.Minute {
		t.Fatalf("ttl = %v", opt.TTL)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dirs: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSetValidation(t *testing.T) {
	c := Defaults()
	bad := map[string]string{
		"cache_ttl_sec":  "-1",
		"data_dirs":      " , ",
		"countries":      "no-equals",
		"listen_addr":    "8501",
		"chart_width_in": "0",
		"nope":           "x",
	}
	for k, v := range bad {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%q, %q) should fail", k, v)
		}
	}
	if err := c.Set("summary_metrics", "GHI, DNI"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := c.Get("summary_metrics"); v != "GHI,DNI" {
		t.Fatalf("summary_metrics = %q", v)
	}
	for _, k := range Keys() {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("Get(%q): %v", k, err)
		}
	}
}
