package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendwise/internal/domain"
)

// TransactionRow maps a domain transaction onto the finance.transactions
// table schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED

	Amount   float64 `bigquery:"amount"`   // REQUIRED FLOAT64
	Currency string  `bigquery:"currency"` // REQUIRED STRING

	Category    bigquery.NullString `bigquery:"category"`    // NULLABLE
	Description bigquery.NullString `bigquery:"description"` // NULLABLE

	Date    time.Time  `bigquery:"date"`     // REQUIRED TIMESTAMP
	DateDay civil.Date `bigquery:"date_day"` // REQUIRED DATE, partition column

	RawText bigquery.NullString `bigquery:"raw_text"` // NULLABLE

	CreatedTS time.Time              `bigquery:"created_ts"` // REQUIRED
	UpdatedTS bigquery.NullTimestamp `bigquery:"updated_ts"` // NULLABLE
}

// UserRow maps a domain user onto the finance.users table schema.
type UserRow struct {
	UserID   string              `bigquery:"user_id"`   // REQUIRED
	GoogleID string              `bigquery:"google_id"` // REQUIRED
	Email    string              `bigquery:"email"`     // REQUIRED
	Name     bigquery.NullString `bigquery:"name"`      // NULLABLE
	Avatar   bigquery.NullString `bigquery:"avatar"`    // NULLABLE

	RefreshTokens []string `bigquery:"refresh_tokens"` // REPEATED STRING

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

func transactionToRow(tx *domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Date:          tx.Date,
		DateDay:       civil.DateOf(tx.Date),
		CreatedTS:     tx.CreatedTS,
	}
	if tx.Category != nil {
		row.Category = bigquery.NullString{StringVal: *tx.Category, Valid: true}
	}
	if tx.Description != "" {
		row.Description = bigquery.NullString{StringVal: tx.Description, Valid: true}
	}
	if tx.RawText != "" {
		row.RawText = bigquery.NullString{StringVal: tx.RawText, Valid: true}
	}
	if tx.UpdatedTS != nil {
		row.UpdatedTS = bigquery.NullTimestamp{Timestamp: *tx.UpdatedTS, Valid: true}
	}
	return row
}

func rowToTransaction(row *TransactionRow) *domain.Transaction {
	tx := &domain.Transaction{
		ID:        row.TransactionID,
		UserID:    row.UserID,
		Amount:    row.Amount,
		Currency:  row.Currency,
		Date:      row.Date,
		CreatedTS: row.CreatedTS,
	}
	if row.Category.Valid {
		category := row.Category.StringVal
		tx.Category = &category
	}
	if row.Description.Valid {
		tx.Description = row.Description.StringVal
	}
	if row.RawText.Valid {
		tx.RawText = row.RawText.StringVal
	}
	if row.UpdatedTS.Valid {
		ts := row.UpdatedTS.Timestamp
		tx.UpdatedTS = &ts
	}
	return tx
}

func userToRow(u *domain.User) *UserRow {
	row := &UserRow{
		UserID:        u.ID,
		GoogleID:      u.GoogleID,
		Email:         u.Email,
		RefreshTokens: u.RefreshTokens,
		CreatedTS:     u.CreatedTS,
	}
	if u.Name != "" {
		row.Name = bigquery.NullString{StringVal: u.Name, Valid: true}
	}
	if u.Avatar != "" {
		row.Avatar = bigquery.NullString{StringVal: u.Avatar, Valid: true}
	}
	return row
}

func rowToUser(row *UserRow) *domain.User {
	u := &domain.User{
		ID:            row.UserID,
		GoogleID:      row.GoogleID,
		Email:         row.Email,
		RefreshTokens: row.RefreshTokens,
		CreatedTS:     row.CreatedTS,
	}
	if row.Name.Valid {
		u.Name = row.Name.StringVal
	}
	if row.Avatar.Valid {
		u.Avatar = row.Avatar.StringVal
	}
	return u
}
