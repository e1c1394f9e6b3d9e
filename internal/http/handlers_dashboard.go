package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"kharcha/internal/query"
)

type (
	dateTotalJSON struct {
		Date       string `json:"date"`
		TotalCents int64  `json:"total_cents"`
		Total      string `json:"total"`
	}

	labelTotalJSON struct {
		Label      string `json:"label"`
		TotalCents int64  `json:"total_cents"`
		Total      string `json:"total"`
	}

	hierarchyJSON struct {
		Label      string          `json:"label"`
		ValueCents int64           `json:"value_cents"`
		Value      string          `json:"value"`
		Children   []hierarchyJSON `json:"children,omitempty"`
	}

	// summaryResponse bundles everything the dashboard charts draw from
	// one filtered view of the expense table.
	summaryResponse struct {
		TotalCents int64            `json:"total_cents"`
		Total      string           `json:"total"`
		ByDate     []dateTotalJSON  `json:"by_date"`
		ByItem     []labelTotalJSON `json:"by_item"`
		ByCategory []labelTotalJSON `json:"by_category"`
		Hierarchy  hierarchyJSON    `json:"hierarchy"`
	}

	prefillResponse struct {
		Item        string `json:"item"`
		Category    string `json:"category"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
	}
)

func toLabelTotals(totals []query.LabelTotal) []labelTotalJSON {
	out := make([]labelTotalJSON, 0, len(totals))
	for _, t := range totals {
		out = append(out, labelTotalJSON{Label: t.Label, TotalCents: t.Total.Cents, Total: t.Total.String()})
	}
	return out
}

func toHierarchyJSON(n *query.HierarchyNode) hierarchyJSON {
	out := hierarchyJSON{Label: n.Label, ValueCents: n.Value.Cents, Value: n.Value.String()}
	for _, c := range n.Children {
		out.Children = append(out.Children, toHierarchyJSON(c))
	}
	return out
}

// summaryCacheKey normalizes the query string so equivalent filters share a
// cache slot regardless of parameter order.
func summaryCacheKey(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), q[k]...)
		sort.Strings(vals)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(vals, ","))
		b.WriteByte('&')
	}
	return b.String()
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	key := summaryCacheKey(r.URL.Query())
	if cached, ok := s.summaryCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Summary cache hit", "key", key)
		writeJSON(w, http.StatusOK, cached)
		return
	}

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

	total := query.Total(matched)
	resp := summaryResponse{
		TotalCents: total.Cents,
		Total:      total.String(),
		ByDate:     make([]dateTotalJSON, 0),
		ByItem:     toLabelTotals(query.SumByItem(matched)),
		ByCategory: toLabelTotals(query.SumByCategory(matched)),
		Hierarchy:  toHierarchyJSON(query.Hierarchy(matched)),
	}
	for _, dt := range query.SumByDate(matched) {
		resp.ByDate = append(resp.ByDate, dateTotalJSON{
			Date:       dt.Date.String(),
			TotalCents: dt.Total.Cents,
			Total:      dt.Total.String(),
		})
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// handlePrefill returns the category and amount to pre-populate the entry
// form with when the user picks an existing item.
func (s *Server) handlePrefill(w http.ResponseWriter, r *http.Request) {
	item := strings.TrimSpace(r.URL.Query().Get("item"))
	if item == "" {
		writeError(w, http.StatusBadRequest, "missing item parameter")
		return
	}
	rows, err := s.tracker.ListExpenses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	category, amount, ok := query.Prefill(rows, item)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown item: "+item)
		return
	}
	writeJSON(w, http.StatusOK, prefillResponse{
		Item:        item,
		Category:    category,
		AmountCents: amount.Cents,
		Amount:      amount.String(),
	})
}
