package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Header returns the display header: Country followed by the flat columns.
func (t *SummaryTable) Header() []string {
	return append([]string{"Country"}, t.Columns...)
}

// Records renders each row as display strings, undefined cells blank.
func (t *SummaryTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, r.Country)
		for _, c := range t.Columns {
			rec = append(rec, r.Values[c].String())
		}
		out = append(out, rec)
	}
	return out
}

// Markdown renders the table for reports and the terminal.
func (t *SummaryTable) Markdown() string {
	var b strings.Builder
	b.WriteString("[TOP REGIONS SUMMARY]\n")
	if t.Empty() {
		b.WriteString("(no rows)\n")
		return b.String()
	}
	hdr := t.Header()
	b.WriteString("| " + strings.Join(hdr, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(hdr)) + "\n")
	for _, rec := range t.Records() {
		for i := range rec {
			rec[i] = safeVal(rec[i])
		}
		b.WriteString("| " + strings.Join(rec, " | ") + " |\n")
	}
	if t.Sorted() {
		b.WriteString(fmt.Sprintf("\nSorted by %s (descending).\n", t.SortedBy))
	} else {
		b.WriteString("\nUnsorted: no ranking column available.\n")
	}
	return b.String()
}

// WriteCSV writes the header and rows as CSV.
func (t *SummaryTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteTable draws a bordered console table.
func (t *SummaryTable) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header())
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(t.Records())
	table.Render()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
