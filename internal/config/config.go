// Package config loads solarlens settings from defaults, a yaml file and
// SOLARLENS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/catalog"
	"github.com/KaramelBytes/solarlens/internal/chart"
	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user config directory under $HOME.
const DirName = ".solarlens"

// Global configuration structure.
type Global struct {
	DataDirs      []string `mapstructure:"data_dirs" yaml:"data_dirs"`
	CacheTTLSec   int      `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	DaytimeGHIMin float64  `mapstructure:"daytime_ghi_min" yaml:"daytime_ghi_min"`
	// Metrics summarised and box-plotted by default
	SummaryMetrics []string `mapstructure:"summary_metrics" yaml:"summary_metrics"`
	BoxMetrics     []string `mapstructure:"box_metrics" yaml:"box_metrics"`
	// Extra or replacement entries for the country catalog
	Countries []catalog.Entry `mapstructure:"countries" yaml:"countries,omitempty"`

	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`

	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		DataDirs:       append([]string(nil), dataset.DefaultDirs...),
		CacheTTLSec:    int(dataset.DefaultTTL / time.Second),
		DaytimeGHIMin:  10,
		SummaryMetrics: []string{"GHI", "DNI", "DHI", "Tamb", "TModA"},
		BoxMetrics:     []string{"GHI", "DNI"},
		ListenAddr:     "127.0.0.1:8501",
		ChartWidthIn:   chart.DefaultSize.Width,
		ChartHeightIn:  chart.DefaultSize.Height,
	}
}

// DefaultPath is ~/.solarlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.solarlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SOLARLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("data_dirs", d.DataDirs)
	v.SetDefault("cache_ttl_sec", d.CacheTTLSec)
	v.SetDefault("daytime_ghi_min", d.DaytimeGHIMin)
	v.SetDefault("summary_metrics", d.SummaryMetrics)
	v.SetDefault("box_metrics", d.BoxMetrics)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_file", "")
	v.SetDefault("chart_width_in", d.ChartWidthIn)
	v.SetDefault("chart_height_in", d.ChartHeightIn)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine, a broken one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.DataDirs) == 0 {
		c.DataDirs = d.DataDirs
	}
	return &c, nil
}

// TTL is the cache lifetime. A cache_ttl_sec of zero or less disables caching
// and maps to a negative duration.
func (c *Global) TTL() time.Duration {
	if c.CacheTTLSec <= 0 {
		return -1
	}
	return time.Duration(c.CacheTTLSec) * time.Second
}

// ChartSize returns the configured canvas size.
func (c *Global) ChartSize() chart.Size {
	return chart.Size{Width: c.ChartWidthIn, Height: c.ChartHeightIn}
}

// Catalog returns the default catalog extended by the configured countries.
func (c *Global) Catalog() (*catalog.Catalog, error) {
	if len(c.Countries) == 0 {
		return catalog.Default(), nil
	}
	cat, err := catalog.New(append(append([]catalog.Entry(nil), catalog.Defaults...), c.Countries...)...)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	return cat, nil
}

// LoaderOptions builds dataset options from the configuration.
func (c *Global) LoaderOptions() (dataset.Options, error) {
	cat, err := c.Catalog()
	if err != nil {
		return dataset.Options{}, err
	}
	return dataset.Options{
		Catalog: cat,
		Dirs:    append([]string(nil), c.DataDirs...),
		TTL:     c.TTL(),
	}, nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"data_dirs", "cache_ttl_sec", "daytime_ghi_min", "summary_metrics", "box_metrics",
		"countries", "listen_addr", "log_file", "chart_width_in", "chart_height_in",
	}
}

// Get formats a single key for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_dirs":
		return strings.Join(c.DataDirs, ","), nil
	case "cache_ttl_sec":
		return strconv.Itoa(c.CacheTTLSec), nil
	case "daytime_ghi_min":
		return strconv.FormatFloat(c.DaytimeGHIMin, 'g', -1, 64), nil
	case "summary_metrics":
		return strings.Join(c.SummaryMetrics, ","), nil
	case "box_metrics":
		return strings.Join(c.BoxMetrics, ","), nil
	case "countries":
		parts := make([]string, len(c.Countries))
		for i, e := range c.Countries {
			parts[i] = e.Label + "=" + e.File
		}
		return strings.Join(parts, ","), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_file":
		return c.LogFile, nil
	case "chart_width_in":
		return strconv.FormatFloat(c.ChartWidthIn, 'g', -1, 64), nil
	case "chart_height_in":
		return strconv.FormatFloat(c.ChartHeightIn, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses and assigns a single key. Lists are comma separated; countries
// takes "Label=file.csv" and adds or replaces one entry.
func (c *Global) Set(key, val string) error {
	switch key {
	case "data_dirs":
		dirs := splitList(val)
		if len(dirs) == 0 {
			return fmt.Errorf("data_dirs must name at least one directory")
		}
		c.DataDirs = dirs
	case "cache_ttl_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for cache_ttl_sec: %v", val)
		}
		c.CacheTTLSec = i
	case "daytime_ghi_min":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for daytime_ghi_min: %w", err)
		}
		c.DaytimeGHIMin = f
	case "summary_metrics":
		c.SummaryMetrics = splitList(val)
	case "box_metrics":
		c.BoxMetrics = splitList(val)
	case "countries":
		label, file, ok := strings.Cut(val, "=")
		label, file = strings.TrimSpace(label), strings.TrimSpace(file)
		if !ok || label == "" || file == "" {
			return fmt.Errorf("invalid countries entry: %q (use Label=file.csv)", val)
		}
		for i := range c.Countries {
			if c.Countries[i].Label == label {
				c.Countries[i].File = file
				return nil
			}
		}
		c.Countries = append(c.Countries, catalog.Entry{Label: label, File: file})
	case "listen_addr":
		if !strings.Contains(val, ":") {
			return fmt.Errorf("invalid listen_addr: %s (use host:port)", val)
		}
		c.ListenAddr = val
	case "log_file":
		c.LogFile = val
	case "chart_width_in", "chart_height_in":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid size for %s: %v", key, val)
		}
		if key == "chart_width_in" {
			c.ChartWidthIn = f
		} else {
			c.ChartHeightIn = f
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
