package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store"
)

// Store is an in-memory implementation of store.TransactionStore.
// It is safe for concurrent use. Data is lost on restart - for persistence
// use the BigQuery-backed store.
type Store struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

// NewStore creates a new empty in-memory transaction store.
func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*domain.Transaction),
	}
}

var _ store.TransactionStore = (*Store)(nil)

// Insert implements store.TransactionStore.
func (s *Store) Insert(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *tx
	stored.ID = uuid.New().String()
	stored.CreatedTS = time.Now().UTC()
	if stored.Date.IsZero() {
		stored.Date = stored.CreatedTS
	}
	if stored.Currency == "" {
		stored.Currency = domain.DefaultCurrency
	}

	s.transactions[stored.ID] = &stored

	out := stored
	return &out, nil
}

// FindByOwner implements store.TransactionStore.
func (s *Store) FindByOwner(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		// Return copies to avoid external modifications.
		txCopy := *tx
		result = append(result, &txCopy)
	}
	return result, nil
}

// FindByID implements store.TransactionStore.
func (s *Store) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, store.ErrNotFound
	}

	txCopy := *tx
	return &txCopy, nil
}

// Update implements store.TransactionStore.
func (s *Store) Update(ctx context.Context, id string, patch store.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, store.ErrNotFound
	}

	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		tx.Currency = *patch.Currency
	}
	if patch.Category != nil {
		category := *patch.Category
		tx.Category = &category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	now := time.Now().UTC()
	tx.UpdatedTS = &now

	txCopy := *tx
	return &txCopy, nil
}

// Delete implements store.TransactionStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// Users is an in-memory implementation of store.UserStore, safe for
// concurrent use.
type Users struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUsers creates a new empty in-memory user store.
func NewUsers() *Users {
	return &Users{
		users: make(map[string]*domain.User),
	}
}

var _ store.UserStore = (*Users)(nil)

// FindByGoogleID implements store.UserStore.
func (s *Users) FindByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.GoogleID == googleID {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

// Insert implements store.UserStore.
func (s *Users) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyUser(user)
	stored.ID = uuid.New().String()
	stored.CreatedTS = time.Now().UTC()
	s.users[stored.ID] = stored

	return copyUser(stored), nil
}

// ReplaceRefreshTokens implements store.UserStore.
func (s *Users) ReplaceRefreshTokens(ctx context.Context, userID string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return store.ErrNotFound
	}
	u.RefreshTokens = append([]string(nil), tokens...)
	return nil
}

// FindByID implements store.UserStore.
func (s *Users) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func copyUser(u *domain.User) *domain.User {
	userCopy := *u
	userCopy.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	return &userCopy
}
