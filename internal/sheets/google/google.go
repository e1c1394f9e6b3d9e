// Package google appends backup rows to a Google Sheets spreadsheet, one
// tab per record kind. Authentication uses a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kharcha/internal/core"
	ports "kharcha/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	budgetsSheet  string
	incomesSheet  string
}

var _ ports.BackupWriter = (*Client)(nil)

// NewFromEnv creates a backup client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Optional tab names:
// BACKUP_EXPENSES_SHEET, BACKUP_BUDGETS_SHEET, BACKUP_INCOMES_SHEET.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: envOr("BACKUP_EXPENSES_SHEET", "Expenses"),
		budgetsSheet:  envOr("BACKUP_BUDGETS_SHEET", "Budgets"),
		incomesSheet:  envOr("BACKUP_INCOMES_SHEET", "Incomes"),
	}, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) append(ctx context.Context, sheet string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.append(ctx, c.expensesSheet, []any{
		e.ID, e.Date.String(), e.Item, e.Category, e.Amount.Euros(), string(e.Currency),
	})
}

func (c *Client) AppendBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.append(ctx, c.budgetsSheet, []any{
		b.ID, b.Month, b.Year, b.Item, b.Category, b.Amount.Euros(), string(b.Currency),
	})
}

func (c *Client) AppendIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return c.append(ctx, c.incomesSheet, []any{
		in.ID, in.Month, in.Year, in.Category, in.Amount.Euros(), string(in.Currency),
	})
}

// AppendTombstone journals a deletion so the backup can be replayed.
func (c *Client) AppendTombstone(ctx context.Context, kind core.RecordKind, id string) error {
	sheet := c.expensesSheet
	switch kind {
	case core.KindBudget:
		sheet = c.budgetsSheet
	case core.KindIncome:
		sheet = c.incomesSheet
	}
	return c.append(ctx, sheet, []any{id, "DELETED"})
}
