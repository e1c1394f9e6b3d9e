// Package services orchestrates the record lifecycle: a submitted entry is
// validated and normalized in core, the full table is rewritten through the
// record store, and a backup notification goes out best-effort.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/store"
)

// BackupPublisher is the slice of the AMQP client the tracker needs.
type BackupPublisher interface {
	PublishBackup(ctx context.Context, kind core.RecordKind, id string, event amqp.BackupEvent) error
}

// Tracker drives add/edit/delete for all three record kinds.
type Tracker struct {
	store     store.RecordStore
	publisher BackupPublisher
}

func NewTracker(s store.RecordStore, publisher BackupPublisher) *Tracker {
	return &Tracker{store: s, publisher: publisher}
}

// publish is best-effort: the record is already persisted locally, so a
// backup failure is logged, never returned.
func (t *Tracker) publish(ctx context.Context, kind core.RecordKind, id string, event amqp.BackupEvent) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishBackup(ctx, kind, id, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish backup message",
			"kind", kind, "id", id, "event", event, "error", err)
	}
}

func (t *Tracker) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return t.store.LoadExpenses(ctx)
}

// AddExpense runs the entry pipeline and appends the new record.
func (t *Tracker) AddExpense(ctx context.Context, entry core.ExpenseEntry) (core.Expense, error) {
	exp, err := entry.Build()
	if err != nil {
		return core.Expense{}, err
	}
	exp.ID = uuid.NewString()

	rows, err := t.store.LoadExpenses(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	rows = append(rows, exp)
	if err := t.store.ReplaceExpenses(ctx, rows); err != nil {
		return core.Expense{}, fmt.Errorf("persist expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense added",
		"id", exp.ID,
		"item", exp.Item,
		"category", exp.Category,
		"amount_cents", exp.Amount.Cents,
		"currency", exp.Currency)

	t.publish(ctx, core.KindExpense, exp.ID, amqp.EventUpsert)
	return exp, nil
}

// EditExpense re-runs the full entry pipeline against an existing record.
// A changed currency re-normalizes the amount; the stored value is never
// left in a foreign currency.
func (t *Tracker) EditExpense(ctx context.Context, id string, entry core.ExpenseEntry) (core.Expense, error) {
	exp, err := entry.Build()
	if err != nil {
		return core.Expense{}, err
	}

	rows, err := t.store.LoadExpenses(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	idx := -1
	for i, row := range rows {
		if row.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("edit expense %s: %w", id, core.ErrRecordNotFound)
	}

	exp.ID = id
	rows[idx] = exp
	if err := t.store.ReplaceExpenses(ctx, rows); err != nil {
		return core.Expense{}, fmt.Errorf("persist expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense edited", "id", id, "amount_cents", exp.Amount.Cents)
	t.publish(ctx, core.KindExpense, id, amqp.EventUpsert)
	return exp, nil
}

// DeleteExpense removes a record by id. A stale id is surfaced, not
// swallowed: it means the caller acted on an outdated view.
func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	rows, err := t.store.LoadExpenses(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	kept := rows[:0:0]
	found := false
	for _, row := range rows {
		if row.ID == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return fmt.Errorf("delete expense %s: %w", id, core.ErrRecordNotFound)
	}
	if err := t.store.ReplaceExpenses(ctx, kept); err != nil {
		return fmt.Errorf("persist expenses: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	t.publish(ctx, core.KindExpense, id, amqp.EventDelete)
	return nil
}

func (t *Tracker) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return t.store.LoadBudgets(ctx)
}

func (t *Tracker) AddBudget(ctx context.Context, entry core.BudgetEntry) (core.Budget, error) {
	b, err := entry.Build()
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = uuid.NewString()

	rows, err := t.store.LoadBudgets(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load budgets: %w", err)
	}
	rows = append(rows, b)
	if err := t.store.ReplaceBudgets(ctx, rows); err != nil {
		return core.Budget{}, fmt.Errorf("persist budgets: %w", err)
	}

	slog.InfoContext(ctx, "Budget added",
		"id", b.ID, "month", b.Month, "year", b.Year, "category", b.Category)
	t.publish(ctx, core.KindBudget, b.ID, amqp.EventUpsert)
	return b, nil
}

func (t *Tracker) EditBudget(ctx context.Context, id string, entry core.BudgetEntry) (core.Budget, error) {
	b, err := entry.Build()
	if err != nil {
		return core.Budget{}, err
	}

	rows, err := t.store.LoadBudgets(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("load budgets: %w", err)
	}
	idx := -1
	for i, row := range rows {
		if row.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Budget{}, fmt.Errorf("edit budget %s: %w", id, core.ErrRecordNotFound)
	}

	b.ID = id
	rows[idx] = b
	if err := t.store.ReplaceBudgets(ctx, rows); err != nil {
		return core.Budget{}, fmt.Errorf("persist budgets: %w", err)
	}

	slog.InfoContext(ctx, "Budget edited", "id", id)
	t.publish(ctx, core.KindBudget, id, amqp.EventUpsert)
	return b, nil
}

func (t *Tracker) DeleteBudget(ctx context.Context, id string) error {
	rows, err := t.store.LoadBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	kept := rows[:0:0]
	found := false
	for _, row := range rows {
		if row.ID == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return fmt.Errorf("delete budget %s: %w", id, core.ErrRecordNotFound)
	}
	if err := t.store.ReplaceBudgets(ctx, kept); err != nil {
		return fmt.Errorf("persist budgets: %w", err)
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id)
	t.publish(ctx, core.KindBudget, id, amqp.EventDelete)
	return nil
}

func (t *Tracker) ListIncomes(ctx context.Context) ([]core.Income, error) {
	return t.store.LoadIncomes(ctx)
}

func (t *Tracker) AddIncome(ctx context.Context, entry core.IncomeEntry) (core.Income, error) {
	in, err := entry.Build()
	if err != nil {
		return core.Income{}, err
	}
	in.ID = uuid.NewString()

	rows, err := t.store.LoadIncomes(ctx)
	if err != nil {
		return core.Income{}, fmt.Errorf("load incomes: %w", err)
	}
	rows = append(rows, in)
	if err := t.store.ReplaceIncomes(ctx, rows); err != nil {
		return core.Income{}, fmt.Errorf("persist incomes: %w", err)
	}

	slog.InfoContext(ctx, "Income added",
		"id", in.ID, "month", in.Month, "year", in.Year, "category", in.Category)
	t.publish(ctx, core.KindIncome, in.ID, amqp.EventUpsert)
	return in, nil
}

func (t *Tracker) EditIncome(ctx context.Context, id string, entry core.IncomeEntry) (core.Income, error) {
	in, err := entry.Build()
	if err != nil {
		return core.Income{}, err
	}

	rows, err := t.store.LoadIncomes(ctx)
	if err != nil {
		return core.Income{}, fmt.Errorf("load incomes: %w", err)
	}
	idx := -1
	for i, row := range rows {
		if row.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Income{}, fmt.Errorf("edit income %s: %w", id, core.ErrRecordNotFound)
	}

	in.ID = id
	rows[idx] = in
	if err := t.store.ReplaceIncomes(ctx, rows); err != nil {
		return core.Income{}, fmt.Errorf("persist incomes: %w", err)
	}

	slog.InfoContext(ctx, "Income edited", "id", id)
	t.publish(ctx, core.KindIncome, id, amqp.EventUpsert)
	return in, nil
}

func (t *Tracker) DeleteIncome(ctx context.Context, id string) error {
	rows, err := t.store.LoadIncomes(ctx)
	if err != nil {
		return fmt.Errorf("load incomes: %w", err)
	}
	kept := rows[:0:0]
	found := false
	for _, row := range rows {
		if row.ID == id {
			found = true
			continue
		}
		kept = append(kept, row)
	}
	if !found {
		return fmt.Errorf("delete income %s: %w", id, core.ErrRecordNotFound)
	}
	if err := t.store.ReplaceIncomes(ctx, kept); err != nil {
		return fmt.Errorf("persist incomes: %w", err)
	}

	slog.InfoContext(ctx, "Income deleted", "id", id)
	t.publish(ctx, core.KindIncome, id, amqp.EventDelete)
	return nil
}
