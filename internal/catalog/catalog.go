// Package catalog maps human-readable country labels to the measurement
// files that back them.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Entry is a single country label and its backing file name.
type Entry struct {
	Label string `json:"label" yaml:"label"`
	File  string `json:"file" yaml:"file"`
}

// Catalog is an ordered, closed set of country entries.
type Catalog struct {
	entries []Entry
	byLabel map[string]int
}

// Defaults are the sites shipped with the dashboard.
var Defaults = []Entry{
	{Label: "Benin (Malanville)", File: "benin-malanville_clean.csv"},
	{Label: "Sierra Leone (Bumbuna)", File: "sierraleone-bumbuna_clean.csv"},
	{Label: "Togo (Dapaong QC)", File: "togo-dapaong_qc_clean.csv"},
}

// New builds a catalog from entries, keeping first-seen order.
// A later entry with the same label replaces the file of the earlier one.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{byLabel: make(map[string]int, len(entries))}
	for _, e := range entries {
		if err := c.add(e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Default returns a catalog holding Defaults.
func Default() *Catalog {
	c, _ := New(Defaults...)
	return c
}

// WithOverrides returns a copy of c extended by the label→file map.
// Labels already present keep their position; new labels are appended sorted by label.
func (c *Catalog) WithOverrides(extra map[string]string) (*Catalog, error) {
	out, err := New(c.entries...)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(extra))
	for k := range extra {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	for _, l := range labels {
		if err := out.add(Entry{Label: l, File: extra[l]}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Catalog) add(e Entry) error {
	label := strings.TrimSpace(e.Label)
	file := strings.TrimSpace(e.File)
	if label == "" {
		return fmt.Errorf("catalog entry has empty label")
	}
	if file == "" {
		return fmt.Errorf("catalog entry %q has empty file", label)
	}
	if idx, ok := c.byLabel[label]; ok {
		c.entries[idx].File = file
		return nil
	}
	c.byLabel[label] = len(c.entries)
	c.entries = append(c.entries, Entry{Label: label, File: file})
	return nil
}

// Lookup returns the file name for label.
func (c *Catalog) Lookup(label string) (string, bool) {
	idx, ok := c.byLabel[label]
	if !ok {
		return "", false
	}
	return c.entries[idx].File, true
}

// Labels returns all labels in catalog order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports how many countries the catalog holds.
func (c *Catalog) Len() int { return len(c.entries) }
