package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/analysis"
	"github.com/KaramelBytes/solarlens/internal/chart"
	"github.com/KaramelBytes/solarlens/internal/dashboard"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
)

var (
	chMetric    string
	chOutput    string
	chCountries []string
	chResample  time.Duration
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render box plots or time series to PNG/SVG",
}

var chartBoxCmd = &cobra.Command{
	Use:   "box",
	Short: "Box plot of a daytime metric per country",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderChart(cmd, func(v *dashboard.View) (*plot.Plot, string, error) {
			metric := chMetric
			if metric == "" {
				metric = "GHI"
				if len(cfg.BoxMetrics) > 0 {
					metric = cfg.BoxMetrics[0]
				}
			}
			boxes, err := v.Boxes(metric)
			if err != nil {
				return nil, metric, err
			}
			p, err := chart.Box(boxes, metric)
			return p, metric, err
		})
	},
}

var chartSeriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Line chart of a metric over time per country",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderChart(cmd, func(v *dashboard.View) (*plot.Plot, string, error) {
			metric := chMetric
			if metric == "" {
				metric = analysis.DefaultMetric(v.Combined)
			}
			series, err := v.Series(metric)
			if err != nil {
				return nil, metric, err
			}
			if chResample > 0 {
				series = analysis.Resample(series, chResample)
			}
			p, err := chart.Lines(series, metric)
			return p, metric, err
		})
	},
}

func renderChart(cmd *cobra.Command, build func(*dashboard.View) (*plot.Plot, string, error)) error {
	if strings.TrimSpace(chOutput) == "" {
		return fmt.Errorf("--output is required")
	}
	if _, err := chart.Format(filepath.Ext(chOutput)); err != nil {
		return err
	}
	l, err := newLoader()
	if err != nil {
		return err
	}
	v := dashboard.Prepare(l, selectedCountries(l, chCountries), cfg.DaytimeGHIMin)
	printWarnings(cmd, v)
	if v.Combined.Empty() {
		return fmt.Errorf("no data loaded for %d selected countries", len(v.Selected))
	}
	p, metric, err := build(v)
	if err != nil {
		return fmt.Errorf("%s: %w", metric, err)
	}
	if err := chart.Save(chOutput, p, cfg.ChartSize()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s chart to %s\n", okMark, metric, chOutput)
	return nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.AddCommand(chartBoxCmd)
	chartCmd.AddCommand(chartSeriesCmd)
	chartCmd.PersistentFlags().StringVar(&chMetric, "metric", "", "metric to plot")
	chartCmd.PersistentFlags().StringVarP(&chOutput, "output", "o", "", "output file (.png or .svg)")
	chartCmd.PersistentFlags().StringArrayVarP(&chCountries, "country", "c", nil, "country label to include (repeatable; default all)")
	chartSeriesCmd.Flags().DurationVar(&chResample, "resample", 0, "average into buckets of this width, e.g. 24h")
}
