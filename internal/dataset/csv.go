package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
)

// TimestampColumn is parsed to datetime when present.
const TimestampColumn = "Timestamp"

// ReadOptions controls CSV parsing.
type ReadOptions struct {
	// Delimiter for CSV. If 0, ',' is used.
	Delimiter rune
	// TimeColumns are parsed as datetimes. Defaults to TimestampColumn.
	TimeColumns []string
}

// ReadFile parses the CSV at path. Paths ending in .gz are decompressed;
// .tsv (or .tsv.gz) selects a tab delimiter.
func ReadFile(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}
	opt := ReadOptions{}
	if strings.HasSuffix(name, ".tsv") {
		opt.Delimiter = '\t'
	}
	return Read(r, opt)
}

// Read parses CSV from r. The first record is the header. Each column is
// numeric when every non-empty cell parses as a number, otherwise text;
// configured time columns must parse as datetimes.
func Read(r io.Reader, opt ReadOptions) (*RecordSet, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	timeCols := opt.TimeColumns
	if timeCols == nil {
		timeCols = []string{TimestampColumn}
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse from file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := dedupeHeader(header)
	ncol := len(names)
	raw := make([][]string, ncol)

	row := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", row, ncol, len(rec))
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			raw[j] = append(raw[j], v)
		}
	}

	isTime := make(map[string]bool, len(timeCols))
	for _, n := range timeCols {
		isTime[n] = true
	}
	cols := make([]*Column, ncol)
	for j, name := range names {
		vals := raw[j]
		if vals == nil {
			vals = []string{}
		}
		if isTime[name] {
			ts, err := parseTimes(vals)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			cols[j] = TimeColumn(name, ts)
			continue
		}
		if nums, ok := parseNumbers(vals); ok {
			cols[j] = NumberColumn(name, nums)
			continue
		}
		cols[j] = TextColumn(name, vals)
	}
	return New(cols...)
}

// dedupeHeader trims names and suffixes repeats with .1, .2, ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			for n := 1; ; n++ {
				cand := fmt.Sprintf("%s.%d", name, n)
				if !seen[cand] {
					name = cand
					break
				}
			}
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

var naTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "-nan": true,
}

func isNA(s string) bool { return naTokens[strings.ToLower(s)] }

func parseNumbers(vals []string) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if isNA(v) {
			out[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04Z0700",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// parseTimes parses every non-empty cell. The layout that matched the
// previous cell is tried first.
func parseTimes(vals []string) ([]time.Time, error) {
	out := make([]time.Time, len(vals))
	last := -1
	for i, v := range vals {
		if isNA(v) {
			continue
		}
		if last >= 0 {
			if t, err := time.Parse(timeLayouts[last], v); err == nil {
				out[i] = t
				continue
			}
		}
		found := false
		for k, l := range timeLayouts {
			if t, err := time.Parse(l, v); err == nil {
				out[i] = t
				last = k
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("row %d: unparseable datetime %q", i+1, v)
		}
	}
	return out, nil
}
