// Package worker runs the backup loop: it consumes record-changed messages
// and journals the current record state to the backup writer.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/sheets"
	"kharcha/internal/store"
)

// BackupWorker re-reads each notified record from the store and appends it
// to the backup target. Reading at consume time means a delayed queue still
// backs up current data.
type BackupWorker struct {
	store  store.RecordStore
	writer sheets.BackupWriter
}

func NewBackupWorker(s store.RecordStore, writer sheets.BackupWriter) *BackupWorker {
	return &BackupWorker{store: s, writer: writer}
}

// HandleMessage processes one backup notification.
func (w *BackupWorker) HandleMessage(ctx context.Context, msg *amqp.BackupMessage) error {
	slog.InfoContext(ctx, "Processing backup message",
		"kind", msg.Kind, "id", msg.ID, "event", msg.Event)

	if msg.Event == amqp.EventDelete {
		return w.writer.AppendTombstone(ctx, msg.Kind, msg.ID)
	}

	switch msg.Kind {
	case core.KindExpense:
		rows, err := w.store.LoadExpenses(ctx)
		if err != nil {
			return fmt.Errorf("load expenses: %w", err)
		}
		for _, row := range rows {
			if row.ID == msg.ID {
				return w.writer.AppendExpense(ctx, row)
			}
		}
	case core.KindBudget:
		rows, err := w.store.LoadBudgets(ctx)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		for _, row := range rows {
			if row.ID == msg.ID {
				return w.writer.AppendBudget(ctx, row)
			}
		}
	case core.KindIncome:
		rows, err := w.store.LoadIncomes(ctx)
		if err != nil {
			return fmt.Errorf("load incomes: %w", err)
		}
		for _, row := range rows {
			if row.ID == msg.ID {
				return w.writer.AppendIncome(ctx, row)
			}
		}
	default:
		return fmt.Errorf("unknown record kind %q", msg.Kind)
	}

	// The record vanished between publish and consume (edited away or
	// deleted); the delete notification will follow. Nothing to do.
	slog.WarnContext(ctx, "Record no longer present, skipping backup",
		"kind", msg.Kind, "id", msg.ID)
	return nil
}
