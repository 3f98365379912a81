package cmd

import (
	"fmt"
	"log"
	"os"

	cfgpkg "github.com/KaramelBytes/solarlens/internal/config"
	"github.com/KaramelBytes/solarlens/internal/dashboard"
	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/KaramelBytes/solarlens/internal/logging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Data overrides (take precedence over config)
	flagDataDirs []string
	flagSites    map[string]string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("⚠")
	errMark  = color.New(color.FgRed).Sprint("✗")
)

var rootCmd = &cobra.Command{
	Use:   "solarlens",
	Short: "SolarLens: compare solar irradiance across measurement sites",
	Long:  `SolarLens loads cleaned per-country solar measurement CSVs, filters daytime readings and ranks regions by irradiance, from the terminal or a local web dashboard.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errMark, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.solarlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringSliceVar(&flagDataDirs, "data-dir", nil, "data directories to search, in order (overrides config)")
	rootCmd.PersistentFlags().StringToStringVar(&flagSites, "site", nil, "extra country as Label=file.csv (repeatable)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "%s Warning: failed to load config: %v\n", warnMark, err)
		c = cfgpkg.Defaults()
	}
	cfg = c
	if len(flagDataDirs) > 0 {
		cfg.DataDirs = append([]string(nil), flagDataDirs...)
	}
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if cfg.LogFile != "" {
		if err := logging.Init(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "%s Warning: log file disabled: %v\n", warnMark, err)
		}
	}
}

// newLoader builds a dataset loader from the effective config and --site flags.
func newLoader() (*dataset.Loader, error) {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	opt, err := cfg.LoaderOptions()
	if err != nil {
		return nil, err
	}
	if len(flagSites) > 0 {
		cat, err := opt.Catalog.WithOverrides(flagSites)
		if err != nil {
			return nil, fmt.Errorf("--site: %w", err)
		}
		opt.Catalog = cat
	}
	opt.Logf = func(string, ...any) {}
	if debug {
		opt.Logf = logging.LogEvent
	}
	return dataset.NewLoader(opt), nil
}

func settings() dashboard.Settings {
	return dashboard.Settings{
		DaytimeMin:     cfg.DaytimeGHIMin,
		SummaryMetrics: cfg.SummaryMetrics,
		BoxMetrics:     cfg.BoxMetrics,
	}
}

// selectedCountries returns the --country values, or every catalog label.
func selectedCountries(l *dataset.Loader, flagged []string) []string {
	if len(flagged) > 0 {
		return flagged
	}
	return l.Catalog().Labels()
}

// printWarnings writes view warnings to the command's error stream.
func printWarnings(cmd *cobra.Command, v *dashboard.View) {
	for _, w := range v.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", warnMark, w)
	}
}
