// Package query implements the read side of the tracker: facet and date
// filtering plus the grouped sums the dashboard charts consume. All
// functions are pure; input slices are never mutated.
package query

import (
	"strconv"

	"kharcha/internal/core"
)

// StringSet is a facet selection. A nil set leaves the facet unconstrained;
// a non-nil empty set means the user deselected everything, which matches
// zero rows.
type StringSet map[string]struct{}

// NewSet builds a selection from the given values.
func NewSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) allows(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

// Intersect returns the intersection of two selections, treating nil as the
// universe.
func (s StringSet) Intersect(o StringSet) StringSet {
	if s == nil {
		return o
	}
	if o == nil {
		return s
	}
	out := make(StringSet)
	for v := range s {
		if _, ok := o[v]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

// DateRange is an inclusive day-granularity window.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// contains excludes the zero date: a row whose date failed to parse never
// satisfies a real range.
func (r DateRange) contains(d core.Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

type (
	// ExpenseFilter narrows an expense table. Constraints compose by AND
	// and application order does not change the result.
	ExpenseFilter struct {
		Categories StringSet
		Items      StringSet
		Currencies StringSet
		Range      *DateRange
	}

	// PeriodFilter narrows budget and income tables by month, year and
	// category.
	PeriodFilter struct {
		Months     StringSet
		Years      StringSet
		Categories StringSet
	}
)

// Apply returns the rows matching every constraint, preserving table order.
func (f ExpenseFilter) Apply(rows []core.Expense) []core.Expense {
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		if !f.Categories.allows(row.Category) {
			continue
		}
		if !f.Items.allows(row.Item) {
			continue
		}
		if !f.Currencies.allows(string(row.Currency)) {
			continue
		}
		if f.Range != nil && !f.Range.contains(row.Date) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// And combines two filters into one equivalent to applying both.
func (f ExpenseFilter) And(o ExpenseFilter) ExpenseFilter {
	combined := ExpenseFilter{
		Categories: f.Categories.Intersect(o.Categories),
		Items:      f.Items.Intersect(o.Items),
		Currencies: f.Currencies.Intersect(o.Currencies),
		Range:      f.Range,
	}
	if o.Range != nil {
		if combined.Range == nil {
			combined.Range = o.Range
		} else {
			merged := DateRange{Start: combined.Range.Start, End: combined.Range.End}
			if o.Range.Start.After(merged.Start.Time) {
				merged.Start = o.Range.Start
			}
			if o.Range.End.Before(merged.End.Time) {
				merged.End = o.Range.End
			}
			combined.Range = &merged
		}
	}
	return combined
}

func (f PeriodFilter) matches(month, year int, category string) bool {
	return f.Months.allows(monthKey(month)) &&
		f.Years.allows(yearKey(year)) &&
		f.Categories.allows(category)
}

// ApplyBudgets returns the budget rows matching every constraint.
func (f PeriodFilter) ApplyBudgets(rows []core.Budget) []core.Budget {
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		if f.matches(row.Month, row.Year, row.Category) {
			out = append(out, row)
		}
	}
	return out
}

func monthKey(m int) string { return strconv.Itoa(m) }
func yearKey(y int) string  { return strconv.Itoa(y) }

// ApplyIncomes returns the income rows matching every constraint.
func (f PeriodFilter) ApplyIncomes(rows []core.Income) []core.Income {
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		if f.matches(row.Month, row.Year, row.Category) {
			out = append(out, row)
		}
	}
	return out
}
