package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/solarlens/internal/dashboard"
	"github.com/KaramelBytes/solarlens/internal/utils"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	sumCountries []string
	sumMetrics   []string
	sumFormat    string
	sumOutput    string
	sumThreshold float64
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Rank countries by daytime irradiance statistics",
	Long:  `Loads the selected countries, keeps daytime readings (GHI above the threshold, falling back to all readings when none qualify) and prints mean, median and standard deviation per metric, sorted by GHI_mean.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(sumFormat))
		switch format {
		case "", "table":
			format = "table"
		case "markdown", "md":
			format = "markdown"
		case "csv", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use table|markdown|csv|json)", sumFormat)
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		threshold := cfg.DaytimeGHIMin
		if cmd.Flags().Changed("threshold") {
			threshold = sumThreshold
		}
		metrics := cfg.SummaryMetrics
		if len(sumMetrics) > 0 {
			metrics = sumMetrics
		}

		v := dashboard.Prepare(l, selectedCountries(l, sumCountries), threshold)
		printWarnings(cmd, v)
		if v.Combined.Empty() {
			return fmt.Errorf("no data loaded for %d selected countries", len(v.Selected))
		}
		tbl, err := v.Summary(metrics)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		switch format {
		case "table":
			tbl.WriteTable(&buf)
		case "markdown":
			buf.WriteString(tbl.Markdown())
		case "csv":
			if err := tbl.WriteCSV(&buf); err != nil {
				return err
			}
		case "json":
			b, err := utils.PrettyJSON(map[string]any{
				"countries":    v.Selected,
				"rows":         v.Combined.Len(),
				"daytime_rows": v.Daytime.Records.Len(),
				"fell_back":    v.Daytime.FellBack,
				"skipped":      len(v.Failures),
				"summary":      tbl,
			})
			if err != nil {
				return err
			}
			buf.Write(append(b, '\n'))
		}

		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote summary to %s\n", okMark, sumOutput)
		} else {
			_, _ = cmd.OutOrStdout().Write(buf.Bytes())
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Summarised %s rows (%s daytime) across %d countries\n",
			okMark, humanize.Comma(int64(v.Combined.Len())), humanize.Comma(int64(v.Daytime.Records.Len())), len(tbl.Rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringArrayVarP(&sumCountries, "country", "c", nil, "country label to include (repeatable; default all)")
	summaryCmd.Flags().StringSliceVarP(&sumMetrics, "metrics", "m", nil, "metrics to summarise (default from config)")
	summaryCmd.Flags().StringVarP(&sumFormat, "format", "f", "table", "output format: table|markdown|csv|json")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "write to file instead of stdout")
	summaryCmd.Flags().Float64Var(&sumThreshold, "threshold", 10, "daytime GHI threshold in W/m² (overrides config)")
}
