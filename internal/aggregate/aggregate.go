// Package aggregate derives chart series and headline figures from a set of
// entries. Every function is a pure read over its input; sums are exact
// because amounts are integer cents.
package aggregate

import (
	"slices"

	"financeiro/internal/core"
)

type (
	// MonthlyCost is one month of expense totals split by cost category.
	MonthlyCost struct {
		Month        core.MonthKey
		FixedCost    core.Money
		VariableCost core.Money
		Total        core.Money
	}

	// MonthlyBalance is one month of income against expense.
	MonthlyBalance struct {
		Month   core.MonthKey
		Income  core.Money
		Expense core.Money
		Net     core.Money
	}

	// DescriptionTotal groups expenses that share a description.
	DescriptionTotal struct {
		Description string
		Value       core.Money
		Count       int
	}

	// Summary holds the headline figures of the whole collection.
	Summary struct {
		TotalIncome  core.Money
		TotalExpense core.Money
		Balance      core.Money
		OpenCount    int // open expenses
		ClosedCount  int // closed expenses
	}
)

// MonthlyCosts buckets dated expenses by month and sums the FixedCost and
// VariableCost categories. An expense in any other category still opens its
// month bucket but adds nothing to it. Months are returned in ascending order.
func MonthlyCosts(entries []core.Entry) []MonthlyCost {
	buckets := make(map[core.MonthKey]*MonthlyCost)
	for _, e := range entries {
		if e.Kind != core.KindExpense || !e.HasDueDate() {
			continue
		}
		key := e.DueDate.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyCost{Month: key}
			buckets[key] = b
		}
		switch e.Category {
		case core.CategoryFixedCost:
			b.FixedCost = b.FixedCost.Add(e.Amount)
		case core.CategoryVariableCost:
			b.VariableCost = b.VariableCost.Add(e.Amount)
		}
	}

	out := make([]MonthlyCost, 0, len(buckets))
	for _, b := range buckets {
		b.Total = b.FixedCost.Add(b.VariableCost)
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b MonthlyCost) int { return a.Month.Compare(b.Month) })
	return out
}

// MonthlyBalances buckets dated entries by month and returns income,
// expense and net per month in ascending order.
func MonthlyBalances(entries []core.Entry) []MonthlyBalance {
	buckets := make(map[core.MonthKey]*MonthlyBalance)
	for _, e := range entries {
		if !e.HasDueDate() {
			continue
		}
		key := e.DueDate.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyBalance{Month: key}
			buckets[key] = b
		}
		switch e.Kind {
		case core.KindIncome:
			b.Income = b.Income.Add(e.Amount)
		case core.KindExpense:
			b.Expense = b.Expense.Add(e.Amount)
		}
	}

	out := make([]MonthlyBalance, 0, len(buckets))
	for _, b := range buckets {
		b.Net = b.Income.Sub(b.Expense)
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b MonthlyBalance) int { return a.Month.Compare(b.Month) })
	return out
}

// ByDescription groups expenses by their description, in order of first
// appearance.
func ByDescription(entries []core.Entry) []DescriptionTotal {
	index := make(map[string]int)
	var out []DescriptionTotal
	for _, e := range entries {
		if e.Kind != core.KindExpense {
			continue
		}
		i, ok := index[e.Description]
		if !ok {
			i = len(out)
			index[e.Description] = i
			out = append(out, DescriptionTotal{Description: e.Description})
		}
		out[i].Value = out[i].Value.Add(e.Amount)
		out[i].Count++
	}
	if out == nil {
		out = []DescriptionTotal{}
	}
	return out
}

// Summarize computes the headline figures.
func Summarize(entries []core.Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Kind {
		case core.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(e.Amount)
		case core.KindExpense:
			s.TotalExpense = s.TotalExpense.Add(e.Amount)
			switch e.Status {
			case core.StatusOpen:
				s.OpenCount++
			case core.StatusClosed:
				s.ClosedCount++
			}
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// Undated counts the entries the monthly views leave out.
func Undated(entries []core.Entry) int {
	n := 0
	for _, e := range entries {
		if !e.HasDueDate() {
			n++
		}
	}
	return n
}
