package http

import (
	"net/http"

	"kharcha/internal/core"
)

type expenseJSON struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Item        string `json:"item"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Date:        e.Date.String(),
		Item:        e.Item,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Amount:      e.Amount.String(),
		Currency:    string(e.Currency),
	}
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExpenseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := s.tracker.ListExpenses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	matched := filter.Apply(rows)
	out := make([]expenseJSON, 0, len(matched))
	for _, e := range matched {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	entry, err := parseExpenseEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	exp, err := s.tracker.AddExpense(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusCreated, toExpenseJSON(exp))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	entry, err := parseExpenseEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	exp, err := s.tracker.EditExpense(r.Context(), r.PathValue("id"), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	writeJSON(w, http.StatusOK, toExpenseJSON(exp))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateSummaries()
	w.WriteHeader(http.StatusNoContent)
}
