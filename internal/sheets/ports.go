// Package sheets defines the port to the off-site backup target. The
// google subpackage implements it against a Google Sheets spreadsheet.
package sheets

import (
	"context"

	"kharcha/internal/core"
)

type (
	// BackupWriter appends record snapshots to the backup target. Deletes
	// are recorded as tombstone rows; the backup is an append-only journal,
	// not a mirror.
	BackupWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) error
		AppendBudget(ctx context.Context, b core.Budget) error
		AppendIncome(ctx context.Context, in core.Income) error
		AppendTombstone(ctx context.Context, kind core.RecordKind, id string) error
	}
)
