package domain

import (
	"strings"
	"time"
)

// IncomeCategory is the sentinel category value that reclassifies a
// transaction as income in every aggregation. Matching is case-insensitive.
const IncomeCategory = "income"

// DefaultCurrency is applied when a transaction is created without an
// explicit currency.
const DefaultCurrency = "USD"

// Transaction is one spending or income record owned by a single user.
// UserID is set once at creation and never changes. Category is a pointer
// because "no category at all" and "empty category string" are distinct
// states: the category breakdown excludes only true absence, while the
// summary treats both as expense.
type Transaction struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	Category    *string `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`

	Date    time.Time `json:"date"`
	RawText string    `json:"raw_text,omitempty"`

	CreatedTS time.Time  `json:"created_ts"`
	UpdatedTS *time.Time `json:"updated_ts,omitempty"`
}

// IsIncome reports whether this transaction carries the income sentinel
// category. Uncategorized transactions are never income.
func (t *Transaction) IsIncome() bool {
	return t.Category != nil && strings.EqualFold(*t.Category, IncomeCategory)
}
