// Package dataset loads per-country measurement CSVs into column-oriented
// record sets and merges them for multi-country views.
package dataset

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/solarlens/internal/cache"
	"github.com/KaramelBytes/solarlens/internal/catalog"
)

// CountryColumn holds the catalog label on every loaded row.
const CountryColumn = "Country"

// DefaultTTL is how long loaded data stays cached.
const DefaultTTL = time.Hour

// DefaultDirs are probed in order for each backing file.
var DefaultDirs = []string{"data", filepath.Join("..", "data")}

// Options configures a Loader.
type Options struct {
	Catalog *catalog.Catalog
	// Dirs are candidate base directories, earlier wins.
	Dirs []string
	// TTL applies to caches the loader creates itself. Zero means DefaultTTL;
	// a negative TTL disables caching.
	TTL   time.Duration
	Clock cache.Clock
	// CountryCache and MergedCache override the loader-created caches.
	CountryCache *cache.TTL[string, *RecordSet]
	MergedCache  *cache.TTL[string, *RecordSet]
	// Stat probes candidate paths. Defaults to os.Stat.
	Stat func(string) (fs.FileInfo, error)
	// Logf receives one line per skipped country. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// DefaultOptions returns the stock catalog, directories and one-hour caching.
func DefaultOptions() Options {
	return Options{
		Catalog: catalog.Default(),
		Dirs:    append([]string(nil), DefaultDirs...),
		TTL:     DefaultTTL,
	}
}

// Loader resolves country labels to files and memoizes parsed results.
type Loader struct {
	catalog *catalog.Catalog
	dirs    []string
	single  *cache.TTL[string, *RecordSet]
	merged  *cache.TTL[string, *RecordSet]
	stat    func(string) (fs.FileInfo, error)
	logf    func(format string, args ...any)
}

// NewLoader builds a loader; zero-valued options fall back to defaults.
func NewLoader(opt Options) *Loader {
	l := &Loader{
		catalog: opt.Catalog,
		dirs:    opt.Dirs,
		single:  opt.CountryCache,
		merged:  opt.MergedCache,
		stat:    opt.Stat,
		logf:    opt.Logf,
	}
	if l.catalog == nil {
		l.catalog = catalog.Default()
	}
	if len(l.dirs) == 0 {
		l.dirs = append([]string(nil), DefaultDirs...)
	}
	if opt.TTL == 0 {
		opt.TTL = DefaultTTL
	}
	if l.single == nil {
		l.single = cache.NewTTL[string, *RecordSet](opt.TTL, opt.Clock)
	}
	if l.merged == nil {
		l.merged = cache.NewTTL[string, *RecordSet](opt.TTL, opt.Clock)
	}
	if l.stat == nil {
		l.stat = os.Stat
	}
	if l.logf == nil {
		l.logf = log.Printf
	}
	return l
}

// Catalog returns the catalog the loader resolves against.
func (l *Loader) Catalog() *catalog.Catalog { return l.catalog }

// Dirs returns the candidate base directories in probe order.
func (l *Loader) Dirs() []string { return append([]string(nil), l.dirs...) }

// Candidates lists the paths probed for a file name, in precedence order.
func (l *Loader) Candidates(file string) []string {
	out := make([]string, 0, 2*len(l.dirs))
	for _, d := range l.dirs {
		p := filepath.Join(d, file)
		out = append(out, p)
		if !strings.HasSuffix(strings.ToLower(file), ".gz") {
			out = append(out, p+".gz")
		}
	}
	return out
}

// Resolve maps a label to the first existing candidate path.
func (l *Loader) Resolve(label string) (string, error) {
	file, ok := l.catalog.Lookup(label)
	if !ok {
		return "", &LoadError{Country: label, Kind: ErrUnknownCountry}
	}
	cands := l.Candidates(file)
	for _, p := range cands {
		if info, err := l.stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", &LoadError{Country: label, File: file, Searched: cands, Kind: ErrFileNotFound}
}

// LoadCountry returns the records for one country, tagged with its label.
// On failure it returns an empty set and a *LoadError; the caller may carry on
// with other countries. Successful loads are cached.
func (l *Loader) LoadCountry(label string) (*RecordSet, error) {
	if rs, ok := l.single.Get(label); ok {
		return rs, nil
	}
	path, err := l.Resolve(label)
	if err != nil {
		return Empty(), err
	}
	raw, err := ReadFile(path)
	if err != nil {
		file, _ := l.catalog.Lookup(label)
		return Empty(), &LoadError{Country: label, File: file, Path: path, Kind: ErrLoadFailure, Err: err}
	}
	rs := raw.withConstText(CountryColumn, label)
	l.single.Set(label, rs)
	return rs, nil
}

// LoadMerged loads each label in order, drops failed or empty results and
// row-concatenates the rest. The returned set is always usable, possibly
// empty; a non-nil error is a *MergeError listing the skipped countries.
// Results are cached by the exact label sequence when nothing was skipped.
func (l *Loader) LoadMerged(labels []string) (*RecordSet, error) {
	if len(labels) == 0 {
		return Empty(), nil
	}
	key := strings.Join(labels, "\x1f")
	if rs, ok := l.merged.Get(key); ok {
		return rs, nil
	}
	var parts []*RecordSet
	var failures []*LoadError
	for _, label := range labels {
		rs, err := l.LoadCountry(label)
		if err != nil {
			le, ok := err.(*LoadError)
			if !ok {
				le = &LoadError{Country: label, Kind: ErrLoadFailure, Err: err}
			}
			failures = append(failures, le)
			l.logf("skip country %q: %v", label, le)
			continue
		}
		if rs.Empty() {
			continue
		}
		parts = append(parts, rs)
	}
	out := Empty()
	if len(parts) > 0 {
		out = Concat(parts...)
	}
	if len(failures) > 0 {
		l.logf("merged load: %d rows, skipped %d of %d countries", out.Len(), len(failures), len(labels))
		return out, &MergeError{Failures: failures}
	}
	l.merged.Set(key, out)
	return out, nil
}
