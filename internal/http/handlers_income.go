package http

import (
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/query"
)

type incomeJSON struct {
	ID          string `json:"id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

func toIncomeJSON(in core.Income) incomeJSON {
	return incomeJSON{
		ID:          in.ID,
		Month:       in.Month,
		Year:        in.Year,
		Category:    in.Category,
		AmountCents: in.Amount.Cents,
		Amount:      in.Amount.String(),
		Currency:    string(in.Currency),
	}
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	filter := parsePeriodFilter(r.URL.Query())
	rows, err := s.tracker.ListIncomes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	matched := filter.ApplyIncomes(rows)
	out := make([]incomeJSON, 0, len(matched))
	for _, in := range matched {
		out = append(out, toIncomeJSON(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	filter := parsePeriodFilter(r.URL.Query())
	rows, err := s.tracker.ListIncomes(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	matched := filter.ApplyIncomes(rows)
	writeJSON(w, http.StatusOK, toLabelTotals(query.SumIncomesByCategory(matched)))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	entry, err := parseIncomeEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	in, err := s.tracker.AddIncome(r.Context(), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeJSON(in))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	entry, err := parseIncomeEntry(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	in, err := s.tracker.EditIncome(r.Context(), r.PathValue("id"), entry)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeJSON(in))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
