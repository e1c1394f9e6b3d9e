package core

import "strings"

// FieldChoice models how the input surface supplies a facet value: either an
// existing value picked from a dropdown, or a freshly typed one. It replaces
// the "Add Item" sentinel branching of the UI with a single resolution step.
type FieldChoice struct {
	value string
	fresh bool
}

// UseExisting wraps a value picked from the existing options.
func UseExisting(v string) FieldChoice {
	return FieldChoice{value: v}
}

// CreateNew wraps a value typed into the "new X" field.
func CreateNew(v string) FieldChoice {
	return FieldChoice{value: v, fresh: true}
}

// Resolve returns the trimmed value. An empty new-value choice reports the
// "new X" field as missing; an empty existing choice reports the field
// itself.
func (c FieldChoice) Resolve(field string) (string, error) {
	v := strings.TrimSpace(c.value)
	if v != "" {
		return v, nil
	}
	if c.fresh {
		return "", &MissingFieldError{Field: "new " + field}
	}
	return "", &MissingFieldError{Field: field}
}

// resolveOptional is Resolve for fields that may legitimately stay empty
// (budget item). Choosing "new" and leaving it blank is still an error.
func (c FieldChoice) resolveOptional(field string) (string, error) {
	v := strings.TrimSpace(c.value)
	if v == "" && c.fresh {
		return "", &MissingFieldError{Field: "new " + field}
	}
	return v, nil
}

type (
	// ExpenseEntry carries the raw submitted fields of an expense form.
	ExpenseEntry struct {
		Date     Date
		Item     FieldChoice
		Category FieldChoice
		Amount   string
		Currency Currency
		Rate     float64
	}

	// BudgetEntry carries the raw submitted fields of a budget form.
	BudgetEntry struct {
		Month    int
		Year     int
		Item     FieldChoice
		Category FieldChoice
		Amount   string
		Currency Currency
		Rate     float64
	}

	// IncomeEntry carries the raw submitted fields of an income form.
	IncomeEntry struct {
		Month    int
		Year     int
		Category FieldChoice
		Amount   string
		Currency Currency
		Rate     float64
	}
)

// normalizeEntryAmount parses the submitted decimal and converts it into the
// base currency. An empty currency tag means the amount was entered in the
// base currency already.
func normalizeEntryAmount(amount string, cur Currency, rate float64) (Money, Currency, error) {
	if strings.TrimSpace(amount) == "" {
		return Money{}, cur, &MissingFieldError{Field: "amount"}
	}
	raw, err := ParseMoney(amount)
	if err != nil {
		return Money{}, cur, err
	}
	if cur == "" {
		cur = BaseCurrency
	}
	base, err := NormalizeAmount(raw, cur, rate)
	if err != nil {
		return Money{}, cur, err
	}
	return base, cur, nil
}

// Build validates the entry and produces a record ready to persist. The ID
// is left blank; the caller assigns it on append or carries it over on edit.
func (e ExpenseEntry) Build() (Expense, error) {
	item, err := e.Item.Resolve("item")
	if err != nil {
		return Expense{}, err
	}
	category, err := e.Category.Resolve("category")
	if err != nil {
		return Expense{}, err
	}
	amount, cur, err := normalizeEntryAmount(e.Amount, e.Currency, e.Rate)
	if err != nil {
		return Expense{}, err
	}
	exp := Expense{
		Date:     e.Date,
		Item:     item,
		Category: category,
		Amount:   amount,
		Currency: cur,
	}
	if err := exp.Validate(); err != nil {
		return Expense{}, err
	}
	return exp, nil
}

func (e BudgetEntry) Build() (Budget, error) {
	item, err := e.Item.resolveOptional("item")
	if err != nil {
		return Budget{}, err
	}
	category, err := e.Category.Resolve("category")
	if err != nil {
		return Budget{}, err
	}
	amount, cur, err := normalizeEntryAmount(e.Amount, e.Currency, e.Rate)
	if err != nil {
		return Budget{}, err
	}
	b := Budget{
		Month:    e.Month,
		Year:     e.Year,
		Item:     item,
		Category: category,
		Amount:   amount,
		Currency: cur,
	}
	if err := b.Validate(); err != nil {
		return Budget{}, err
	}
	return b, nil
}

func (e IncomeEntry) Build() (Income, error) {
	category, err := e.Category.Resolve("category")
	if err != nil {
		return Income{}, err
	}
	amount, cur, err := normalizeEntryAmount(e.Amount, e.Currency, e.Rate)
	if err != nil {
		return Income{}, err
	}
	in := Income{
		Month:    e.Month,
		Year:     e.Year,
		Category: category,
		Amount:   amount,
		Currency: cur,
	}
	if err := in.Validate(); err != nil {
		return Income{}, err
	}
	return in, nil
}
