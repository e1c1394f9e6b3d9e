package query

import (
	"sort"

	"kharcha/internal/core"
)

// HierarchyRoot labels the synthetic top level of the breakdown tree.
const HierarchyRoot = "All Expenses"

type (
	// DateTotal is the per-day sum feeding the time-series chart.
	DateTotal struct {
		Date  core.Date
		Total core.Money
	}

	// LabelTotal is a per-item or per-category sum feeding the bar chart.
	LabelTotal struct {
		Label string
		Total core.Money
	}

	// HierarchyNode is one node of the category → item → weekday tree.
	// Value carries the summed amount of the whole subtree.
	HierarchyNode struct {
		Label    string
		Value    core.Money
		Children []*HierarchyNode
	}
)

// Total sums every row. Sums accumulate in cents; nothing rounds until
// display.
func Total(rows []core.Expense) core.Money {
	var sum core.Money
	for _, row := range rows {
		sum = sum.Add(row.Amount)
	}
	return sum
}

// SumByDate groups rows by calendar day, ascending. Days with no rows are
// simply absent; the chart draws no zero-filled gaps.
func SumByDate(rows []core.Expense) []DateTotal {
	sums := make(map[string]core.Money)
	dates := make(map[string]core.Date)
	for _, row := range rows {
		key := row.Date.String()
		sums[key] = sums[key].Add(row.Amount)
		dates[key] = row.Date
	}
	out := make([]DateTotal, 0, len(sums))
	for key, total := range sums {
		out = append(out, DateTotal{Date: dates[key], Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// SumByItem groups rows by item and orders the result by descending sum.
// Items with equal sums keep their first-seen order from the input.
func SumByItem(rows []core.Expense) []LabelTotal {
	sums := make(map[string]core.Money)
	order := make(map[string]int)
	var labels []string
	for _, row := range rows {
		if _, seen := sums[row.Item]; !seen {
			order[row.Item] = len(labels)
			labels = append(labels, row.Item)
		}
		sums[row.Item] = sums[row.Item].Add(row.Amount)
	}
	out := make([]LabelTotal, 0, len(labels))
	for _, label := range labels {
		out = append(out, LabelTotal{Label: label, Total: sums[label]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return order[out[i].Label] < order[out[j].Label]
	})
	return out
}

// SumByCategory groups rows by category, descending by sum, first-seen order
// on ties. Same contract as SumByItem along the other facet.
func SumByCategory(rows []core.Expense) []LabelTotal {
	relabeled := make([]core.Expense, len(rows))
	for i, row := range rows {
		relabeled[i] = row
		relabeled[i].Item = row.Category
	}
	return SumByItem(relabeled)
}

// Hierarchy builds the breakdown tree: root → category → item → weekday,
// with the weekday derived from each row's date. Every node's value is the
// sum of its subtree. Sibling order follows first appearance in the input.
func Hierarchy(rows []core.Expense) *HierarchyNode {
	root := &HierarchyNode{Label: HierarchyRoot}
	for _, row := range rows {
		cat := root.child(row.Category)
		item := cat.child(row.Item)
		day := item.child(row.Date.WeekdayName())

		root.Value = root.Value.Add(row.Amount)
		cat.Value = cat.Value.Add(row.Amount)
		item.Value = item.Value.Add(row.Amount)
		day.Value = day.Value.Add(row.Amount)
	}
	return root
}

func (n *HierarchyNode) child(label string) *HierarchyNode {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	c := &HierarchyNode{Label: label}
	n.Children = append(n.Children, c)
	return c
}

// Prefill returns the category and amount to pre-populate the entry form
// with when the user picks an existing item. The first row in table order
// wins when several rows share the item; callers must not assume
// most-recent semantics.
func Prefill(rows []core.Expense, item string) (category string, amount core.Money, ok bool) {
	for _, row := range rows {
		if row.Item == item {
			return row.Category, row.Amount, true
		}
	}
	return "", core.Money{}, false
}

// SumBudgetsByCategory groups budget rows by category, descending by sum.
func SumBudgetsByCategory(rows []core.Budget) []LabelTotal {
	exp := make([]core.Expense, len(rows))
	for i, row := range rows {
		exp[i] = core.Expense{Item: row.Category, Amount: row.Amount}
	}
	return SumByItem(exp)
}

// SumIncomesByCategory groups income rows by category, descending by sum.
func SumIncomesByCategory(rows []core.Income) []LabelTotal {
	exp := make([]core.Expense, len(rows))
	for i, row := range rows {
		exp[i] = core.Expense{Item: row.Category, Amount: row.Amount}
	}
	return SumByItem(exp)
}
