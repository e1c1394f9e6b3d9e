package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kharcha/internal/core"
	"kharcha/internal/services"
)

type memStore struct {
	expenses []core.Expense
	budgets  []core.Budget
	incomes  []core.Income
}

func (m *memStore) LoadExpenses(context.Context) ([]core.Expense, error) {
	return append([]core.Expense(nil), m.expenses...), nil
}

func (m *memStore) ReplaceExpenses(_ context.Context, rows []core.Expense) error {
	m.expenses = append([]core.Expense(nil), rows...)
	return nil
}

func (m *memStore) LoadBudgets(context.Context) ([]core.Budget, error) {
	return append([]core.Budget(nil), m.budgets...), nil
}

func (m *memStore) ReplaceBudgets(_ context.Context, rows []core.Budget) error {
	m.budgets = append([]core.Budget(nil), rows...)
	return nil
}

func (m *memStore) LoadIncomes(context.Context) ([]core.Income, error) {
	return append([]core.Income(nil), m.incomes...), nil
}

func (m *memStore) ReplaceIncomes(_ context.Context, rows []core.Income) error {
	m.incomes = append([]core.Income(nil), rows...)
	return nil
}

func newTestServer(t *testing.T, st *memStore) *Server {
	t.Helper()
	tracker := services.NewTracker(st, nil)
	s := NewServer(":0", tracker, Options{})
	t.Cleanup(func() { s.cacheManager.Stop() })
	return s
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(w, r)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &memStore{})
	w := doRequest(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", w.Code)
	}
}

func TestCreateExpense(t *testing.T) {
	st := &memStore{}
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodPost, "/api/expenses", `{
		"date": "2024-03-01",
		"item": {"new": "Milk"},
		"category": {"new": "Groceries"},
		"amount": "2.50",
		"currency": "EUR"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var got expenseJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if got.AmountCents != 250 {
		t.Fatalf("amount_cents = %d, want 250", got.AmountCents)
	}
	if len(st.expenses) != 1 {
		t.Fatalf("store rows = %d, want 1", len(st.expenses))
	}
}

func TestCreateExpenseConvertsCurrency(t *testing.T) {
	s := newTestServer(t, &memStore{})

	w := doRequest(t, s, http.MethodPost, "/api/expenses", `{
		"date": "2024-03-01",
		"item": {"new": "Fuel"},
		"category": {"new": "Transport"},
		"amount": "1000",
		"currency": "PKR",
		"rate": 310
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var got expenseJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.AmountCents != 323 {
		t.Fatalf("amount_cents = %d, want 323", got.AmountCents)
	}
	if got.Currency != "PKR" {
		t.Fatalf("currency = %s, want PKR", got.Currency)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing category",
			body: `{"date":"2024-03-01","item":{"new":"Milk"},"category":{"existing":""},"amount":"2.50"}`,
		},
		{
			name: "empty new item",
			body: `{"date":"2024-03-01","item":{"new":""},"category":{"new":"Groceries"},"amount":"2.50"}`,
		},
		{
			name: "zero amount",
			body: `{"date":"2024-03-01","item":{"new":"Milk"},"category":{"new":"Groceries"},"amount":"0"}`,
		},
		{
			name: "foreign currency without rate",
			body: `{"date":"2024-03-01","item":{"new":"Milk"},"category":{"new":"Groceries"},"amount":"10","currency":"USD"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &memStore{}
			s := newTestServer(t, st)
			w := doRequest(t, s, http.MethodPost, "/api/expenses", tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
			}
			if len(st.expenses) != 0 {
				t.Fatalf("rejected entry must not persist, got %d rows", len(st.expenses))
			}
		})
	}
}

func TestCreateExpenseBadDate(t *testing.T) {
	s := newTestServer(t, &memStore{})
	w := doRequest(t, s, http.MethodPost, "/api/expenses",
		`{"date":"garbage","item":{"new":"Milk"},"category":{"new":"Groceries"},"amount":"2.50"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body.String())
	}
}

func seedExpenses() *memStore {
	return &memStore{expenses: []core.Expense{
		{ID: "a", Date: core.NewDate(2024, 3, 1), Item: "Milk", Category: "Groceries",
			Amount: core.Money{Cents: 250}, Currency: core.EUR},
		{ID: "b", Date: core.NewDate(2024, 3, 1), Item: "Bread", Category: "Groceries",
			Amount: core.Money{Cents: 150}, Currency: core.EUR},
		{ID: "c", Date: core.NewDate(2024, 3, 5), Item: "Fuel", Category: "Transport",
			Amount: core.Money{Cents: 5000}, Currency: core.EUR},
	}}
}

func TestListExpensesFilters(t *testing.T) {
	s := newTestServer(t, seedExpenses())

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"unfiltered", "/api/expenses", 3},
		{"by category", "/api/expenses?category=Groceries", 2},
		{"by item", "/api/expenses?item=Fuel", 1},
		{"empty selection matches nothing", "/api/expenses?category=", 0},
		{"date range", "/api/expenses?start=2024-03-02&end=2024-03-31", 1},
		{"single day range", "/api/expenses?start=2024-03-01&end=2024-03-01", 2},
		{"combined", "/api/expenses?category=Groceries&item=Milk", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodGet, tt.target, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}
			var got []expenseJSON
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("rows = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestListExpensesBadRange(t *testing.T) {
	s := newTestServer(t, seedExpenses())
	w := doRequest(t, s, http.MethodGet, "/api/expenses?start=not-a-date", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestUpdateExpense(t *testing.T) {
	st := seedExpenses()
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodPut, "/api/expenses/a", `{
		"date": "2024-03-02",
		"item": {"existing": "Milk"},
		"category": {"existing": "Groceries"},
		"amount": "1000",
		"currency": "PKR",
		"rate": 310
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got expenseJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "a" {
		t.Fatalf("id = %s, want a", got.ID)
	}
	if got.AmountCents != 323 {
		t.Fatalf("edit must re-normalize amount, got %d cents", got.AmountCents)
	}
	if st.expenses[0].Amount.Cents != 323 {
		t.Fatalf("persisted cents = %d, want 323", st.expenses[0].Amount.Cents)
	}
}

func TestUpdateExpenseStaleID(t *testing.T) {
	s := newTestServer(t, seedExpenses())
	w := doRequest(t, s, http.MethodPut, "/api/expenses/nope", `{
		"date": "2024-03-02",
		"item": {"existing": "Milk"},
		"category": {"existing": "Groceries"},
		"amount": "2.50"
	}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestDeleteExpense(t *testing.T) {
	st := seedExpenses()
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodDelete, "/api/expenses/b", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", w.Code, w.Body.String())
	}
	if len(st.expenses) != 2 {
		t.Fatalf("rows = %d, want 2", len(st.expenses))
	}

	// Second delete of the same id hits a stale view.
	w = doRequest(t, s, http.MethodDelete, "/api/expenses/b", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestExpenseSummary(t *testing.T) {
	s := newTestServer(t, seedExpenses())

	w := doRequest(t, s, http.MethodGet, "/api/expenses/summary?category=Groceries", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TotalCents != 400 {
		t.Fatalf("total_cents = %d, want 400", got.TotalCents)
	}
	if len(got.ByDate) != 1 || got.ByDate[0].Date != "2024-03-01" {
		t.Fatalf("by_date = %+v, want one entry for 2024-03-01", got.ByDate)
	}
	if len(got.ByItem) != 2 || got.ByItem[0].Label != "Milk" {
		t.Fatalf("by_item = %+v, want Milk first (largest sum)", got.ByItem)
	}
	if got.Hierarchy.Label != "All Expenses" || got.Hierarchy.ValueCents != 400 {
		t.Fatalf("hierarchy root = %+v", got.Hierarchy)
	}
}

func TestSummaryCacheInvalidatedOnMutation(t *testing.T) {
	st := seedExpenses()
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodGet, "/api/expenses/summary", "")
	var before summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doRequest(t, s, http.MethodPost, "/api/expenses", `{
		"date": "2024-03-07",
		"item": {"new": "Coffee"},
		"category": {"new": "Groceries"},
		"amount": "3.00"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodGet, "/api/expenses/summary", "")
	var after summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if after.TotalCents != before.TotalCents+300 {
		t.Fatalf("total after mutation = %d, want %d", after.TotalCents, before.TotalCents+300)
	}
}

func TestPrefill(t *testing.T) {
	st := seedExpenses()
	// Second Milk row with a different category: first row in table order wins.
	st.expenses = append(st.expenses, core.Expense{
		ID: "d", Date: core.NewDate(2024, 3, 9), Item: "Milk", Category: "Other",
		Amount: core.Money{Cents: 999}, Currency: core.EUR,
	})
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodGet, "/api/prefill?item=Milk", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var got prefillResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Category != "Groceries" || got.AmountCents != 250 {
		t.Fatalf("prefill = %+v, want first-row Groceries/250", got)
	}

	w = doRequest(t, s, http.MethodGet, "/api/prefill?item=Unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown item status = %d, want 404", w.Code)
	}
	w = doRequest(t, s, http.MethodGet, "/api/prefill", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing item status = %d, want 400", w.Code)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	st := &memStore{}
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodPost, "/api/budgets", `{
		"month": 3,
		"year": 2024,
		"category": {"new": "Groceries"},
		"amount": "400"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created budgetJSON
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Item != "" {
		t.Fatalf("budget item should stay empty, got %q", created.Item)
	}

	w = doRequest(t, s, http.MethodGet, "/api/budgets?month=3&year=2024", "")
	var listed []budgetJSON
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("rows = %d, want 1", len(listed))
	}

	w = doRequest(t, s, http.MethodGet, "/api/budgets?month=4", "")
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("rows = %d, want 0 for another month", len(listed))
	}

	w = doRequest(t, s, http.MethodDelete, "/api/budgets/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
}

func TestIncomeLifecycle(t *testing.T) {
	st := &memStore{}
	s := newTestServer(t, st)

	w := doRequest(t, s, http.MethodPost, "/api/incomes", `{
		"month": 3,
		"year": 2024,
		"category": {"new": "Salary"},
		"amount": "2500"
	}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created incomeJSON
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doRequest(t, s, http.MethodGet, "/api/incomes/summary", "")
	var summary []labelTotalJSON
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(summary) != 1 || summary[0].Label != "Salary" || summary[0].TotalCents != 250000 {
		t.Fatalf("summary = %+v", summary)
	}

	w = doRequest(t, s, http.MethodPut, "/api/incomes/"+created.ID, `{
		"month": 3,
		"year": 2024,
		"category": {"existing": "Salary"},
		"amount": "2600"
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	if st.incomes[0].Amount.Cents != 260000 {
		t.Fatalf("persisted cents = %d, want 260000", st.incomes[0].Amount.Cents)
	}

	w = doRequest(t, s, http.MethodPut, "/api/incomes/missing", `{
		"month": 3, "year": 2024, "category": {"existing": "Salary"}, "amount": "1"
	}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("stale update status = %d, want 404", w.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t, &memStore{})
	w := doRequest(t, s, http.MethodPost, "/api/expenses", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("error responses must be JSON, got %q", w.Header().Get("Content-Type"))
	}
}
