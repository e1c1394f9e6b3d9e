package core

import (
	"errors"
	"fmt"
	"time"
)

// Currency tags the currency an amount was originally entered in. Amounts of
// record are always stored in the base currency; the tag is informational and
// is never reprocessed on read.
type Currency string

const (
	EUR Currency = "EUR"
	PKR Currency = "PKR"
	USD Currency = "USD"
)

// BaseCurrency is the single currency every Amount field is stored in.
const BaseCurrency = EUR

// IsBase reports whether amounts in this currency need no conversion.
func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

// RecordKind identifies one of the three tracked tables.
type RecordKind string

const (
	KindExpense RecordKind = "expense"
	KindBudget  RecordKind = "budget"
	KindIncome  RecordKind = "income"
)

func (k RecordKind) Valid() bool {
	switch k {
	case KindExpense, KindBudget, KindIncome:
		return true
	default:
		return false
	}
}

type (
	// Date is a calendar date at day granularity. The zero value marks a
	// date that could not be parsed; range filters exclude it.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single dated purchase.
	Expense struct {
		ID       string
		Date     Date
		Item     string
		Category string
		Amount   Money // base currency
		Currency Currency
	}

	// Budget is a monthly ceiling for a category (and optionally an item;
	// legacy rows predate the item column and leave it empty).
	Budget struct {
		ID       string
		Month    int
		Year     int
		Item     string
		Category string
		Amount   Money
		Currency Currency
	}

	// Income is a monthly income line for a category.
	Income struct {
		ID       string
		Month    int
		Year     int
		Category string
		Amount   Money
		Currency Currency
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidRate    = errors.New("invalid conversion rate")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidYear    = errors.New("invalid year")
	ErrEmptyItem      = errors.New("empty item")
	ErrEmptyCategory  = errors.New("empty category")
	ErrRecordNotFound = errors.New("record not found")
)

// MissingFieldError reports which required field the input surface left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

const dateLayout = "2006-01-02"

// legacyDateLayout matches the dd.mm.yyyy format of early data files.
const legacyDateLayout = "02.01.2006"

// NewDate builds a day-granularity date in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts ISO (2006-01-02) and legacy (02.01.2006) forms.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(legacyDateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// CoerceDate parses like ParseDate but maps failures to the zero Date
// instead of an error, so one bad row never poisons a whole table load.
func CoerceDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// WeekdayName returns the English day name ("Monday" .. "Sunday"), used as
// the leaf level of the hierarchical breakdown.
func (d Date) WeekdayName() string {
	return d.Time.Weekday().String()
}

// Equal compares at day granularity.
func (d Date) Equal(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validMonth(m int) bool { return m >= 1 && m <= 12 }

// validYear bounds years to a plausible calendar window.
func validYear(y int) bool { return y >= 1970 && y <= 2100 }

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Item == "" {
		return ErrEmptyItem
	}
	if e.Category == "" {
		return ErrEmptyCategory
	}
	return e.Amount.Validate()
}

func (b Budget) Validate() error {
	if !validMonth(b.Month) {
		return ErrInvalidMonth
	}
	if !validYear(b.Year) {
		return ErrInvalidYear
	}
	// Item may be empty: legacy budget rows have no item column.
	if b.Category == "" {
		return ErrEmptyCategory
	}
	return b.Amount.Validate()
}

func (i Income) Validate() error {
	if !validMonth(i.Month) {
		return ErrInvalidMonth
	}
	if !validYear(i.Year) {
		return ErrInvalidYear
	}
	if i.Category == "" {
		return ErrEmptyCategory
	}
	return i.Amount.Validate()
}
