package http

import (
	"fmt"
	"net/url"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/pipeline"
)

// parseCriteria reads the filter and sort query parameters. Unknown kinds,
// statuses, dates and sort directions are rejected rather than ignored.
func parseCriteria(q url.Values) (pipeline.Criteria, error) {
	c := pipeline.Criteria{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	status, err := parseChoice(q.Get("status"), "status", string(core.StatusOpen), string(core.StatusClosed))
	if err != nil {
		return c, err
	}
	c.Status = core.Status(status)

	kind, err := parseChoice(q.Get("kind"), "kind", string(core.KindIncome), string(core.KindExpense))
	if err != nil {
		return c, err
	}
	c.Kind = core.Kind(kind)

	if c.Range.Start, err = parseQueryDate(q.Get("start"), "start"); err != nil {
		return c, err
	}
	if c.Range.End, err = parseQueryDate(q.Get("end"), "end"); err != nil {
		return c, err
	}

	if c.Direction, err = pipeline.ParseSortDirection(q.Get("sort")); err != nil {
		return c, err
	}
	return c, nil
}

// parseChoice matches v case-insensitively against choices and returns the
// canonical spelling. Empty and "all" select everything.
func parseChoice(v, name string, choices ...string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, pipeline.All) {
		return pipeline.All, nil
	}
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q", name, v)
}

func parseQueryDate(v, name string) (core.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid %s date %q", name, v)
	}
	return d, nil
}

// filteredScope reports whether a chart should use the filtered set.
func filteredScope(q url.Values) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(q.Get("scope"))) {
	case "", "all":
		return false, nil
	case "filtered":
		return true, nil
	}
	return false, fmt.Errorf("invalid scope %q", q.Get("scope"))
}
