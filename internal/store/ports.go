// Package store defines the ports to the record store: one durable table
// per record kind, read whole at the start of a rendering cycle and
// rewritten whole on any mutation. Implementations live in subpackages
// (csvfile) and in internal/storage (sqlite).
package store

import (
	"context"

	"kharcha/internal/core"
)

type (
	ExpenseStore interface {
		// LoadExpenses returns all expense rows in table order, creating
		// an empty table with the canonical columns if none exists.
		LoadExpenses(ctx context.Context) ([]core.Expense, error)
		// ReplaceExpenses rewrites the whole table. Last writer wins.
		ReplaceExpenses(ctx context.Context, rows []core.Expense) error
	}

	BudgetStore interface {
		LoadBudgets(ctx context.Context) ([]core.Budget, error)
		ReplaceBudgets(ctx context.Context, rows []core.Budget) error
	}

	IncomeStore interface {
		LoadIncomes(ctx context.Context) ([]core.Income, error)
		ReplaceIncomes(ctx context.Context, rows []core.Income) error
	}

	// RecordStore is the full record-store surface the services consume.
	RecordStore interface {
		ExpenseStore
		BudgetStore
		IncomeStore
	}
)
