// Package department turns free-form department names into canonical group
// identifiers and decides whether two departments are related.
package department

import (
	"strings"
)

var punctuation = strings.NewReplacer(
	"&", "and",
	"/", " ",
	"-", " ",
	".", " ",
)

// Normalize trims and lower-cases raw, spells out "&", turns "/", "-" and "."
// into spaces and collapses whitespace.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = punctuation.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Canonicalizer maps departments onto the groups of a synonym table.
type Canonicalizer struct {
	groups    []group
	overrides map[string]string
}

// New compiles the table into a Canonicalizer.
func New(table *Table) (*Canonicalizer, error) {
	groups, overrides, err := table.compile()
	if err != nil {
		return nil, err
	}
	return &Canonicalizer{groups: groups, overrides: overrides}, nil
}

// Default returns a Canonicalizer built from the embedded synonym table.
func Default() *Canonicalizer {
	table, err := DefaultTable()
	if err != nil {
		panic("department: embedded synonyms table: " + err.Error())
	}
	c, err := New(table)
	if err != nil {
		panic("department: embedded synonyms table: " + err.Error())
	}
	return c
}

// Canonicalize returns the group key for raw, the normalized string when no
// group claims it, or "" when raw is blank.
func (c *Canonicalizer) Canonicalize(raw string) string {
	normalized := Normalize(raw)
	if normalized == "" {
		return ""
	}
	if key := lookup(c.groups, c.overrides, normalized); key != "" {
		return key
	}
	return normalized
}

// Related reports whether two departments belong together. A missing
// department on either side never excludes anyone.
func (c *Canonicalizer) Related(a, b string) bool {
	ca, cb := c.Canonicalize(a), c.Canonicalize(b)
	if ca == "" || cb == "" {
		return true
	}
	return ca == cb
}
