// Package pipeline filters and orders entries for the list view, the charts
// and the export.
package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"financeiro/internal/core"
)

// All is the criteria value that matches every category, status or kind.
const All = "all"

// SortDirection orders entries by due date.
type SortDirection int

const (
	// Descending puts the latest due date first. It is the zero value.
	Descending SortDirection = iota
	Ascending
)

// ParseSortDirection maps "asc"/"desc" (or empty) to a direction.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return Descending, fmt.Errorf("invalid sort direction %q", s)
}

func (d SortDirection) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// DateRange is an inclusive range of due dates. A zero bound is open.
type DateRange struct {
	Start core.Date
	End   core.Date
}

func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d core.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// Criteria selects and orders entries. Every field is optional; the zero
// value keeps all entries, newest first.
type Criteria struct {
	Search   string
	Category string
	Status   core.Status
	Kind     core.Kind
	Range    DateRange

	Direction SortDirection

	// Today stands in for a missing due date when sorting.
	// Zero means the current day.
	Today core.Date
}

func matchAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

// Match reports whether e passes every filter in c. Entries without a due
// date always pass the date range.
func (c Criteria) Match(e core.Entry) bool {
	if q := strings.ToLower(c.Search); q != "" {
		if !strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Note), q) {
			return false
		}
	}
	if !matchAll(c.Category) && e.Category != c.Category {
		return false
	}
	if !matchAll(string(c.Status)) && e.Status != c.Status {
		return false
	}
	if !matchAll(string(c.Kind)) && e.Kind != c.Kind {
		return false
	}
	if e.HasDueDate() && !c.Range.Contains(e.DueDate) {
		return false
	}
	return true
}

// Key identifies the criteria for memoisation.
func (c Criteria) Key() string {
	return fmt.Sprintf("%q|%q|%q|%q|%s|%s|%s|%s",
		c.Search, c.Category, c.Status, c.Kind,
		c.Range.Start, c.Range.End, c.Direction, c.today())
}

func (c Criteria) today() core.Date {
	if c.Today.IsZero() {
		return core.Today()
	}
	return c.Today
}

// Apply returns the entries matching c in due-date order. The input is not
// modified. Entries with equal due dates keep their input order.
func Apply(entries []core.Entry, c Criteria) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	Sort(out, c.Direction, c.today())
	return out
}

// Sort orders entries in place by due date, stable on ties. Entries with no
// due date sort as if due on today.
func Sort(entries []core.Entry, dir SortDirection, today core.Date) {
	due := func(e core.Entry) core.Date {
		if e.HasDueDate() {
			return e.DueDate
		}
		return today
	}
	slices.SortStableFunc(entries, func(a, b core.Entry) int {
		c := due(a).Compare(due(b))
		if dir == Descending {
			return -c
		}
		return c
	})
}
