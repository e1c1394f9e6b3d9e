package query

import (
	"testing"

	"kharcha/internal/core"
)

func expenseRows() []core.Expense {
	return []core.Expense{
		{ID: "1", Date: core.NewDate(2024, 1, 1), Item: "Milk", Category: "Groceries", Amount: core.Money{Cents: 250}, Currency: core.EUR},
		{ID: "2", Date: core.NewDate(2024, 1, 2), Item: "Milk", Category: "Groceries", Amount: core.Money{Cents: 300}, Currency: core.EUR},
		{ID: "3", Date: core.NewDate(2024, 1, 2), Item: "Petrol", Category: "Transport", Amount: core.Money{Cents: 5000}, Currency: core.EUR},
		{ID: "4", Date: core.NewDate(2024, 2, 1), Item: "Chai", Category: "Groceries", Amount: core.Money{Cents: 323}, Currency: core.PKR},
	}
}

func ids(rows []core.Expense) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExpenseFilterFacets(t *testing.T) {
	rows := expenseRows()

	got := ExpenseFilter{Categories: NewSet("Groceries")}.Apply(rows)
	if !sameIDs(ids(got), "1", "2", "4") {
		t.Fatalf("category filter: got %v", ids(got))
	}

	got = ExpenseFilter{Categories: NewSet("Groceries"), Items: NewSet("Milk")}.Apply(rows)
	if !sameIDs(ids(got), "1", "2") {
		t.Fatalf("category+item filter: got %v", ids(got))
	}

	got = ExpenseFilter{Currencies: NewSet("PKR")}.Apply(rows)
	if !sameIDs(ids(got), "4") {
		t.Fatalf("currency filter: got %v", ids(got))
	}
}

func TestExpenseFilterEmptySelectionMatchesNothing(t *testing.T) {
	rows := expenseRows()
	got := ExpenseFilter{Categories: NewSet()}.Apply(rows)
	if len(got) != 0 {
		t.Fatalf("empty selection must match zero rows, got %d", len(got))
	}
	// nil set is the opposite: no constraint at all.
	got = ExpenseFilter{}.Apply(rows)
	if len(got) != len(rows) {
		t.Fatalf("nil selection must match everything, got %d", len(got))
	}
}

func TestExpenseFilterDateRange(t *testing.T) {
	rows := expenseRows()

	r := DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 2)}
	got := ExpenseFilter{Range: &r}.Apply(rows)
	if !sameIDs(ids(got), "1", "2", "3") {
		t.Fatalf("range filter: got %v", ids(got))
	}

	// A single-day range returns exactly the rows on that day.
	day := core.NewDate(2024, 1, 2)
	single := DateRange{Start: day, End: day}
	got = ExpenseFilter{Range: &single}.Apply(rows)
	if !sameIDs(ids(got), "2", "3") {
		t.Fatalf("single-day range: got %v", ids(got))
	}
}

func TestExpenseFilterExcludesUnparseableDates(t *testing.T) {
	rows := append(expenseRows(), core.Expense{
		ID:       "bad",
		Date:     core.CoerceDate("not a date"),
		Item:     "Mystery",
		Category: "Groceries",
		Amount:   core.Money{Cents: 100},
	})
	r := DateRange{Start: core.NewDate(1970, 1, 1), End: core.NewDate(2100, 12, 31)}
	got := ExpenseFilter{Range: &r}.Apply(rows)
	for _, row := range got {
		if row.ID == "bad" {
			t.Fatalf("coerced date must never satisfy a range")
		}
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(got))
	}
}

func TestExpenseFilterComposesAsIntersection(t *testing.T) {
	rows := expenseRows()
	r := DateRange{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31)}
	f1 := ExpenseFilter{Categories: NewSet("Groceries", "Transport"), Range: &r}
	f2 := ExpenseFilter{Items: NewSet("Milk", "Petrol"), Categories: NewSet("Groceries")}

	sequential := f2.Apply(f1.Apply(rows))
	combined := f1.And(f2).Apply(rows)
	reversed := f1.Apply(f2.Apply(rows))

	if !sameIDs(ids(sequential), ids(combined)...) {
		t.Fatalf("sequential %v != combined %v", ids(sequential), ids(combined))
	}
	if !sameIDs(ids(sequential), ids(reversed)...) {
		t.Fatalf("order must not matter: %v vs %v", ids(sequential), ids(reversed))
	}
	if !sameIDs(ids(sequential), "1", "2") {
		t.Fatalf("unexpected result: %v", ids(sequential))
	}
}

func TestExpenseFilterDoesNotMutateInput(t *testing.T) {
	rows := expenseRows()
	_ = ExpenseFilter{Categories: NewSet("Transport")}.Apply(rows)
	if !sameIDs(ids(rows), "1", "2", "3", "4") {
		t.Fatalf("input mutated: %v", ids(rows))
	}
}

func TestPeriodFilter(t *testing.T) {
	budgets := []core.Budget{
		{ID: "b1", Month: 1, Year: 2024, Category: "Groceries", Amount: core.Money{Cents: 10000}},
		{ID: "b2", Month: 2, Year: 2024, Category: "Groceries", Amount: core.Money{Cents: 11000}},
		{ID: "b3", Month: 1, Year: 2023, Category: "Transport", Amount: core.Money{Cents: 5000}},
	}
	got := PeriodFilter{Months: NewSet("1"), Years: NewSet("2024")}.ApplyBudgets(budgets)
	if len(got) != 1 || got[0].ID != "b1" {
		t.Fatalf("unexpected budgets: %+v", got)
	}

	incomes := []core.Income{
		{ID: "i1", Month: 1, Year: 2024, Category: "Salary", Amount: core.Money{Cents: 250000}},
		{ID: "i2", Month: 1, Year: 2024, Category: "Side", Amount: core.Money{Cents: 20000}},
	}
	got2 := PeriodFilter{Categories: NewSet("Salary")}.ApplyIncomes(incomes)
	if len(got2) != 1 || got2[0].ID != "i1" {
		t.Fatalf("unexpected incomes: %+v", got2)
	}
	if got3 := (PeriodFilter{Categories: NewSet()}).ApplyIncomes(incomes); len(got3) != 0 {
		t.Fatalf("empty selection must match zero rows")
	}
}
