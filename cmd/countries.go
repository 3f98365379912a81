package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/solarlens/internal/dataset"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List catalog countries and where their data files resolve",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader()
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Country", "File", "Path"})
		table.SetAutoFormatHeaders(false)
		missing := 0
		for _, e := range l.Catalog().Entries() {
			path, err := l.Resolve(e.Label)
			switch {
			case errors.Is(err, dataset.ErrFileNotFound):
				path = "(not found)"
				missing++
			case err != nil:
				return err
			}
			table.Append([]string{e.Label, e.File, path})
		}
		table.Render()
		if missing > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d of %d countries have no data file in %v\n", warnMark, missing, l.Catalog().Len(), l.Dirs())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}
