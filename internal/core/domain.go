package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Error kinds surfaced by the engine. Callers classify failures with
// errors.Is; every layer wraps with fmt.Errorf("...: %w", kind).
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptySample     = errors.New("empty sample")
	ErrNoExpenses      = errors.New("no expense rows in sample")
	ErrUnavailable     = errors.New("store unavailable")
	ErrUpstream        = errors.New("upstream text generation failed")
)

// Fetch limits for bounded retrieval. Requests outside the range fail
// with ErrInvalidArgument at both the filter and the store layer.
const (
	MinFetchLimit = 1
	MaxFetchLimit = 500
)

// Categories is the fixed category vocabulary of the transaction store.
var Categories = []string{
	"Food",
	"Groceries",
	"Transport",
	"Shopping",
	"Entertainment",
	"Utilities",
	"Health",
	"Travel",
	"Income",
	"Other",
}

// Currencies the dataset draws from. Aggregation treats amounts as
// currency-agnostic, so this is vocabulary, not exchange-rate data.
var Currencies = []string{"EUR", "GBP", "USD"}

// ColumnNames is the column order of the transactions table and of its
// CSV bulk-load format. The seeder rejects files whose header differs.
var ColumnNames = []string{
	"id", "date", "description", "amount", "currency",
	"merchant", "category", "city", "country",
}

type (
	// Date is a calendar date; the time component is always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is one row of the store. Negative amounts are expenses,
	// positive amounts income. The engine never mutates transactions.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Currency    string          `json:"currency"`
		Merchant    string          `json:"merchant"`
		Category    string          `json:"category"`
		City        string          `json:"city"`
		Country     string          `json:"country"`
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidArgument)
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateLimit checks a retrieval limit against the fetch bounds.
func ValidateLimit(limit int) error {
	if limit < MinFetchLimit || limit > MaxFetchLimit {
		return fmt.Errorf("limit %d out of range [%d, %d]: %w",
			limit, MinFetchLimit, MaxFetchLimit, ErrInvalidArgument)
	}
	return nil
}

// KnownCategory reports whether name is part of the fixed vocabulary.
func KnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// IsExpense reports whether the transaction is an expense (amount < 0).
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is income (amount > 0).
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Validate checks a transaction against the store schema constraints.
// Zero amounts are unusual but not disallowed.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("empty transaction id: %w", ErrInvalidArgument)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("zero transaction date: %w", ErrInvalidArgument)
	}
	if !KnownCategory(t.Category) {
		return fmt.Errorf("unknown category %q: %w", t.Category, ErrInvalidArgument)
	}
	if strings.TrimSpace(t.Currency) == "" {
		return fmt.Errorf("empty currency: %w", ErrInvalidArgument)
	}
	return nil
}
