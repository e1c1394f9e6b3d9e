// Package csvfile persists the three record tables as flat CSV files, one
// row per record. Loads read the whole file; mutations rewrite it through a
// temp file and rename. Legacy headers from earlier schema versions are
// recognized and their missing columns defaulted.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"kharcha/internal/core"
	"kharcha/internal/store"
)

const (
	expensesFile = "expenses.csv"
	budgetsFile  = "budgets.csv"
	incomesFile  = "incomes.csv"
)

// Canonical headers. The amount column keeps the original file's
// "Cost in EUR" name so existing data stays readable.
var (
	expenseHeader = []string{"ID", "Date", "Item", "Category", "Cost in EUR", "Currency"}
	budgetHeader  = []string{"ID", "Month", "Year", "Item", "Category", "Cost in EUR", "Currency"}
	incomeHeader  = []string{"ID", "Month", "Year", "Category", "Cost in EUR", "Currency"}
)

// Store reads and writes the CSV tables under a single data directory.
type Store struct {
	mu  sync.Mutex
	dir string
}

var _ store.RecordStore = (*Store)(nil)

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// load reads all rows of a table, creating the file with the canonical
// header when absent. Returned records are column maps keyed by header
// name, so legacy files with fewer columns load cleanly.
func (s *Store) load(name string, header []string) ([]map[string]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := s.writeAll(name, header, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeAll rewrites a table atomically: temp file in the same directory,
// then rename over the old one.
func (s *Store) writeAll(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// fieldOr returns the column value or a default for columns the file's
// schema version predates.
func fieldOr(row map[string]string, col, def string) string {
	if v, ok := row[col]; ok && v != "" {
		return v
	}
	return def
}

func itoa(v int) string { return strconv.Itoa(v) }

func parseIntOr(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseAmount(s string) core.Money {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}
	}
	return core.Money{Cents: cents}
}

func (s *Store) LoadExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load(expensesFile, expenseHeader)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Expense{
			ID:       fieldOr(row, "ID", uuid.NewString()),
			Date:     core.CoerceDate(row["Date"]),
			Item:     row["Item"],
			Category: row["Category"],
			Amount:   parseAmount(row["Cost in EUR"]),
			Currency: core.Currency(fieldOr(row, "Currency", string(core.BaseCurrency))),
		})
	}
	return out, nil
}

func (s *Store) ReplaceExpenses(_ context.Context, rows []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([][]string, 0, len(rows))
	for _, e := range rows {
		recs = append(recs, []string{
			e.ID, e.Date.String(), e.Item, e.Category, e.Amount.String(), string(e.Currency),
		})
	}
	return s.writeAll(expensesFile, expenseHeader, recs)
}

func (s *Store) LoadBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load(budgetsFile, budgetHeader)
	if err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Budget{
			ID:       fieldOr(row, "ID", uuid.NewString()),
			Month:    parseIntOr(row["Month"], 0),
			Year:     parseIntOr(row["Year"], 0),
			Item:     row["Item"], // absent in legacy files, defaults to empty
			Category: row["Category"],
			Amount:   parseAmount(row["Cost in EUR"]),
			Currency: core.Currency(fieldOr(row, "Currency", string(core.BaseCurrency))),
		})
	}
	return out, nil
}

func (s *Store) ReplaceBudgets(_ context.Context, rows []core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([][]string, 0, len(rows))
	for _, b := range rows {
		recs = append(recs, []string{
			b.ID, itoa(b.Month), itoa(b.Year), b.Item, b.Category, b.Amount.String(), string(b.Currency),
		})
	}
	return s.writeAll(budgetsFile, budgetHeader, recs)
}

func (s *Store) LoadIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load(incomesFile, incomeHeader)
	if err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Income{
			ID:       fieldOr(row, "ID", uuid.NewString()),
			Month:    parseIntOr(row["Month"], 0),
			Year:     parseIntOr(row["Year"], 0),
			Category: row["Category"],
			Amount:   parseAmount(row["Cost in EUR"]),
			Currency: core.Currency(fieldOr(row, "Currency", string(core.BaseCurrency))),
		})
	}
	return out, nil
}

func (s *Store) ReplaceIncomes(_ context.Context, rows []core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([][]string, 0, len(rows))
	for _, in := range rows {
		recs = append(recs, []string{
			in.ID, itoa(in.Month), itoa(in.Year), in.Category, in.Amount.String(), string(in.Currency),
		})
	}
	return s.writeAll(incomesFile, incomeHeader, recs)
}
