package store

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/spendwise/internal/domain"
)

// ErrNotFound is returned when a record with the requested ID does not
// exist. Callers branch on it to distinguish "missing" from store failure.
var ErrNotFound = errors.New("record not found")

// TransactionPatch is a partial update for a transaction. Nil fields keep
// their prior values; Category distinguishes "leave alone" (nil) from
// "set to this value" (non-nil pointer, possibly to an empty string).
type TransactionPatch struct {
	Amount      *float64
	Currency    *string
	Category    *string
	Description *string
	Date        *time.Time
}

// TransactionStore abstracts persistence of transaction records. All
// operations are owner-scoped by the caller, not by the store: FindByID
// returns any record and the caller is responsible for rejecting access
// when the caller's identity does not match the record's UserID.
type TransactionStore interface {
	// Insert persists a new transaction, assigning its ID and CreatedTS,
	// and returns the stored record.
	Insert(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)

	// FindByOwner returns all transactions owned by the given user.
	FindByOwner(ctx context.Context, userID string) ([]*domain.Transaction, error)

	// FindByID returns the transaction with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)

	// Update applies a partial update and returns the updated record,
	// or ErrNotFound.
	Update(ctx context.Context, id string, patch TransactionPatch) (*domain.Transaction, error)

	// Delete removes the transaction with the given ID, or returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// UserStore abstracts persistence of user accounts for the sign-in flow.
type UserStore interface {
	// FindByGoogleID returns the user with the given Google subject, or
	// ErrNotFound.
	FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Insert persists a new user, assigning its ID and CreatedTS.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)

	// ReplaceRefreshTokens overwrites the user's refresh token set.
	ReplaceRefreshTokens(ctx context.Context, userID string, tokens []string) error

	// FindByID returns the user with the given ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
