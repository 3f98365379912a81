package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCountry indicates a label with no catalog entry.
	ErrUnknownCountry = errors.New("unknown country")
	// ErrFileNotFound indicates no candidate path resolved for a country.
	ErrFileNotFound = errors.New("data file not found")
	// ErrLoadFailure indicates the file existed but could not be read or parsed.
	ErrLoadFailure = errors.New("load failure")
)

// LoadError describes why a single country produced no records.
// errors.Is matches Kind and anything Err wraps.
type LoadError struct {
	Country  string
	File     string
	Path     string
	Searched []string
	Kind     error
	Err      error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case ErrUnknownCountry:
		return fmt.Sprintf("no file mapping found for country %q", e.Country)
	case ErrFileNotFound:
		return fmt.Sprintf("data file not found for %s (expected %s); searched: %s",
			e.Country, e.File, strings.Join(e.Searched, ", "))
	default:
		if e.Err != nil {
			return fmt.Sprintf("error loading data for %s from %s: %v", e.Country, e.Path, e.Err)
		}
		return fmt.Sprintf("error loading data for %s from %s", e.Country, e.Path)
	}
}

func (e *LoadError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// MergeError collects the countries skipped by a merged load.
type MergeError struct {
	Failures []*LoadError
}

func (e *MergeError) Error() string {
	if len(e.Failures) == 1 {
		return "skipped 1 country: " + e.Failures[0].Error()
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("skipped %d countries: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *MergeError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// Skipped returns the number of countries that failed to load.
func (e *MergeError) Skipped() int {
	if e == nil {
		return 0
	}
	return len(e.Failures)
}

// Skipped extracts the skipped-country count from an error returned by LoadMerged.
func Skipped(err error) int {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Skipped()
	}
	return 0
}
