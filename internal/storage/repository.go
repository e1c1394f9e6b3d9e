// Package storage provides the SQLite implementation of the record store.
// The tables keep an explicit position column so load and replace preserve
// table order exactly like the flat-file backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"kharcha/internal/core"
	"kharcha/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, item, category, amount_cents, currency FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e     core.Expense
			date  string
			cents int64
			cur   string
		)
		if err := rows.Scan(&e.ID, &date, &e.Item, &e.Category, &cents, &cur); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = core.CoerceDate(date)
		e.Amount = core.Money{Cents: cents}
		e.Currency = core.Currency(cur)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReplaceExpenses rewrites the whole table in one transaction, numbering
// positions from the slice order.
func (r *SQLiteRepository) ReplaceExpenses(ctx context.Context, records []core.Expense) error {
	return r.replaceAll(ctx, "expenses", func(tx *sql.Tx) error {
		for i, e := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO expenses (id, position, date, item, category, amount_cents, currency)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				e.ID, i, e.Date.String(), e.Item, e.Category, e.Amount.Cents, string(e.Currency))
			if err != nil {
				return fmt.Errorf("insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, year, item, category, amount_cents, currency FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			cents int64
			cur   string
		)
		if err := rows.Scan(&b.ID, &b.Month, &b.Year, &b.Item, &b.Category, &cents, &cur); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = core.Money{Cents: cents}
		b.Currency = core.Currency(cur)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ReplaceBudgets(ctx context.Context, records []core.Budget) error {
	return r.replaceAll(ctx, "budgets", func(tx *sql.Tx) error {
		for i, b := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO budgets (id, position, month, year, item, category, amount_cents, currency)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				b.ID, i, b.Month, b.Year, b.Item, b.Category, b.Amount.Cents, string(b.Currency))
			if err != nil {
				return fmt.Errorf("insert budget %s: %w", b.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, year, category, amount_cents, currency FROM incomes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in    core.Income
			cents int64
			cur   string
		)
		if err := rows.Scan(&in.ID, &in.Month, &in.Year, &in.Category, &cents, &cur); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Amount = core.Money{Cents: cents}
		in.Currency = core.Currency(cur)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ReplaceIncomes(ctx context.Context, records []core.Income) error {
	return r.replaceAll(ctx, "incomes", func(tx *sql.Tx) error {
		for i, in := range records {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO incomes (id, position, month, year, category, amount_cents, currency)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				in.ID, i, in.Month, in.Year, in.Category, in.Amount.Cents, string(in.Currency))
			if err != nil {
				return fmt.Errorf("insert income %s: %w", in.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) replaceAll(ctx context.Context, table string, insert func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
