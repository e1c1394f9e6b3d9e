package http

import (
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/query"
)

type budgetJSON struct {
	ID          string `json:"id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Item        string `json:"item,omitempty"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		Month:       b.Month,
		Year:        b.Year,
		Item:        b.Item,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Amount:      b.Amount.String(),
		Currency:    string(b.Currency),
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	filter := parsePeriodFilter(r.URL.Query())
	rows, err := s.tracker.ListBudgets(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	matched := filter.ApplyBudgets(rows)
	out := make([]budgetJSON, 0, len(matched))
	for _, b := range matched {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	filter := parsePeriodFilter(r.URL.Query())
	rows, err := s.tracker.ListBudgets(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	matched := filter.ApplyBudgets(rows)
	writeJSON(w, http.StatusOK, toLabelTotals(query.SumBudgetsByCategory(matched)))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	entry, err := parseBudgetEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	b, err := s.tracker.AddBudget(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetJSON(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	entry, err := parseBudgetEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	b, err := s.tracker.EditBudget(r.Context(), r.PathValue("id"), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
