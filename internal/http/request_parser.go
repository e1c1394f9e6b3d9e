package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/query"
)

// fieldChoiceJSON mirrors the two ways the entry form supplies a facet:
// picking an existing value ({"existing": "x"} or a bare string) or typing
// a new one ({"new": "x"}). isNew survives an empty new value so the right
// missing field gets reported.
type fieldChoiceJSON struct {
	Existing string
	New      string
	isNew    bool
}

func (f *fieldChoiceJSON) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		// A bare string is shorthand for picking an existing value.
		var s string
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return err
		}
		f.Existing = s
		return nil
	}
	if v, ok := raw["new"]; ok {
		f.New = v
		f.isNew = true
		return nil
	}
	f.Existing = raw["existing"]
	return nil
}

func (f fieldChoiceJSON) choice() core.FieldChoice {
	if f.isNew {
		return core.CreateNew(f.New)
	}
	return core.UseExisting(f.Existing)
}

type expensePayload struct {
	Date     string          `json:"date"`
	Item     fieldChoiceJSON `json:"item"`
	Category fieldChoiceJSON `json:"category"`
	Amount   string          `json:"amount"`
	Currency string          `json:"currency"`
	Rate     float64         `json:"rate"`
}

type budgetPayload struct {
	Month    int             `json:"month"`
	Year     int             `json:"year"`
	Item     fieldChoiceJSON `json:"item"`
	Category fieldChoiceJSON `json:"category"`
	Amount   string          `json:"amount"`
	Currency string          `json:"currency"`
	Rate     float64         `json:"rate"`
}

type incomePayload struct {
	Month    int             `json:"month"`
	Year     int             `json:"year"`
	Category fieldChoiceJSON `json:"category"`
	Amount   string          `json:"amount"`
	Currency string          `json:"currency"`
	Rate     float64         `json:"rate"`
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func parseExpenseEntry(r *http.Request) (core.ExpenseEntry, error) {
	var p expensePayload
	if err := decodeBody(r, &p); err != nil {
		return core.ExpenseEntry{}, err
	}
	date, err := core.ParseDate(strings.TrimSpace(p.Date))
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	return core.ExpenseEntry{
		Date:     date,
		Item:     p.Item.choice(),
		Category: p.Category.choice(),
		Amount:   p.Amount,
		Currency: core.Currency(strings.ToUpper(strings.TrimSpace(p.Currency))),
		Rate:     p.Rate,
	}, nil
}

func parseBudgetEntry(r *http.Request) (core.BudgetEntry, error) {
	var p budgetPayload
	if err := decodeBody(r, &p); err != nil {
		return core.BudgetEntry{}, err
	}
	return core.BudgetEntry{
		Month:    p.Month,
		Year:     p.Year,
		Item:     p.Item.choice(),
		Category: p.Category.choice(),
		Amount:   p.Amount,
		Currency: core.Currency(strings.ToUpper(strings.TrimSpace(p.Currency))),
		Rate:     p.Rate,
	}, nil
}

func parseIncomeEntry(r *http.Request) (core.IncomeEntry, error) {
	var p incomePayload
	if err := decodeBody(r, &p); err != nil {
		return core.IncomeEntry{}, err
	}
	return core.IncomeEntry{
		Month:    p.Month,
		Year:     p.Year,
		Category: p.Category.choice(),
		Amount:   p.Amount,
		Currency: core.Currency(strings.ToUpper(strings.TrimSpace(p.Currency))),
		Rate:     p.Rate,
	}, nil
}

// parseSet reads a facet constraint from the query string. An absent
// parameter leaves the facet unconstrained (nil set); a present but empty
// one is an explicit empty selection and matches nothing. Values may repeat
// or be comma-separated.
func parseSet(q url.Values, key string) query.StringSet {
	if !q.Has(key) {
		return nil
	}
	set := query.NewSet()
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				set[v] = struct{}{}
			}
		}
	}
	return set
}

// parseDateRange reads start/end query parameters. A missing bound is left
// open; zero stored dates still never match a range.
func parseDateRange(q url.Values) (*query.DateRange, error) {
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if start == "" && end == "" {
		return nil, nil
	}
	rng := query.DateRange{
		Start: core.NewDate(1, 1, 1),
		End:   core.NewDate(9999, 12, 31),
	}
	if start != "" {
		d, err := core.ParseDate(start)
		if err != nil {
			return nil, err
		}
		rng.Start = d
	}
	if end != "" {
		d, err := core.ParseDate(end)
		if err != nil {
			return nil, err
		}
		rng.End = d
	}
	return &rng, nil
}

func parseExpenseFilter(q url.Values) (query.ExpenseFilter, error) {
	rng, err := parseDateRange(q)
	if err != nil {
		return query.ExpenseFilter{}, err
	}
	return query.ExpenseFilter{
		Categories: parseSet(q, "category"),
		Items:      parseSet(q, "item"),
		Currencies: parseSet(q, "currency"),
		Range:      rng,
	}, nil
}

func parsePeriodFilter(q url.Values) query.PeriodFilter {
	return query.PeriodFilter{
		Months:     parseSet(q, "month"),
		Years:      parseSet(q, "year"),
		Categories: parseSet(q, "category"),
	}
}
