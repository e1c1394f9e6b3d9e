package storage

import (
	"context"
	"path/filepath"
	"testing"

	"kharcha/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kharcha.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestExpensesReplaceAndLoadPreserveOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	rows := []core.Expense{
		{ID: "a", Date: core.NewDate(2024, 1, 3), Item: "Three", Category: "C", Amount: core.Money{Cents: 300}, Currency: core.EUR},
		{ID: "b", Date: core.NewDate(2024, 1, 1), Item: "One", Category: "C", Amount: core.Money{Cents: 100}, Currency: core.EUR},
		{ID: "c", Date: core.NewDate(2024, 1, 2), Item: "Two", Category: "C", Amount: core.Money{Cents: 200}, Currency: core.PKR},
	}
	if err := repo.ReplaceExpenses(ctx, rows); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	// Table order, not date order.
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Fatalf("row %d: expected id %q, got %q", i, want, got[i].ID)
		}
	}
	if got[2].Currency != core.PKR || got[2].Amount.Cents != 200 {
		t.Fatalf("row c mismatch: %+v", got[2])
	}
}

func TestReplaceOverwritesPreviousRows(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first := []core.Expense{
		{ID: "a", Date: core.NewDate(2024, 1, 1), Item: "One", Category: "C", Amount: core.Money{Cents: 100}, Currency: core.EUR},
		{ID: "b", Date: core.NewDate(2024, 1, 2), Item: "Two", Category: "C", Amount: core.Money{Cents: 200}, Currency: core.EUR},
	}
	if err := repo.ReplaceExpenses(ctx, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := repo.ReplaceExpenses(ctx, first[1:]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := repo.LoadExpenses(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only row b, got %+v", got)
	}
}

func TestBudgetsAndIncomesRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	budgets := []core.Budget{
		{ID: "b1", Month: 6, Year: 2024, Item: "", Category: "Groceries", Amount: core.Money{Cents: 10000}, Currency: core.EUR},
	}
	if err := repo.ReplaceBudgets(ctx, budgets); err != nil {
		t.Fatalf("replace budgets: %v", err)
	}
	gotB, err := repo.LoadBudgets(ctx)
	if err != nil {
		t.Fatalf("load budgets: %v", err)
	}
	if len(gotB) != 1 || gotB[0] != budgets[0] {
		t.Fatalf("budget round trip: %+v", gotB)
	}

	incomes := []core.Income{
		{ID: "i1", Month: 6, Year: 2024, Category: "Salary", Amount: core.Money{Cents: 250000}, Currency: core.EUR},
	}
	if err := repo.ReplaceIncomes(ctx, incomes); err != nil {
		t.Fatalf("replace incomes: %v", err)
	}
	gotI, err := repo.LoadIncomes(ctx)
	if err != nil {
		t.Fatalf("load incomes: %v", err)
	}
	if len(gotI) != 1 || gotI[0] != incomes[0] {
		t.Fatalf("income round trip: %+v", gotI)
	}
}

func TestEmptyTablesLoadEmpty(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if rows, err := repo.LoadExpenses(ctx); err != nil || len(rows) != 0 {
		t.Fatalf("expected empty expenses, got %d (err=%v)", len(rows), err)
	}
	if rows, err := repo.LoadBudgets(ctx); err != nil || len(rows) != 0 {
		t.Fatalf("expected empty budgets, got %d (err=%v)", len(rows), err)
	}
	if rows, err := repo.LoadIncomes(ctx); err != nil || len(rows) != 0 {
		t.Fatalf("expected empty incomes, got %d (err=%v)", len(rows), err)
	}
}
