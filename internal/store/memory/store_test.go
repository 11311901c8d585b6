package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store"
)

func strPtr(s string) *string { return &s }

func TestInsertAssignsDefaults(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tx, err := s.Insert(ctx, &domain.Transaction{
		UserID: "user-1",
		Amount: 12.5,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if tx.ID == "" {
		t.Error("expected store to assign an ID")
	}
	if tx.Currency != "USD" {
		t.Errorf("currency = %q, want USD default", tx.Currency)
	}
	if tx.Date.IsZero() {
		t.Error("expected date to default to creation time")
	}
	if tx.CreatedTS.IsZero() {
		t.Error("expected CreatedTS to be set")
	}
}

func TestFindByOwnerScopesToUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, userID := range []string{"alice", "alice", "bob"} {
		if _, err := s.Insert(ctx, &domain.Transaction{UserID: userID, Amount: 1}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := s.FindByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByOwner failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	for _, tx := range got {
		if tx.UserID != "alice" {
			t.Errorf("got transaction owned by %q", tx.UserID)
		}
	}

	none, err := s.FindByOwner(ctx, "carol")
	if err != nil {
		t.Fatalf("FindByOwner failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no records for carol, got %d", len(none))
	}
}

func TestUpdatePartial(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tx, err := s.Insert(ctx, &domain.Transaction{
		UserID:      "alice",
		Amount:      50,
		Category:    strPtr("Food"),
		Description: "lunch",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	amount := 75.0
	updated, err := s.Update(ctx, tx.ID, store.TransactionPatch{Amount: &amount})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Amount != 75 {
		t.Errorf("amount = %v, want 75", updated.Amount)
	}
	if updated.Category == nil || *updated.Category != "Food" {
		t.Error("unset category should retain prior value")
	}
	if updated.Description != "lunch" {
		t.Errorf("description = %q, want lunch", updated.Description)
	}
	if !updated.Date.Equal(date) {
		t.Errorf("date = %v, want %v", updated.Date, date)
	}
	if updated.UpdatedTS == nil {
		t.Error("expected UpdatedTS to be set")
	}
}

func TestUpdateCanSetEmptyCategory(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tx, err := s.Insert(ctx, &domain.Transaction{UserID: "alice", Amount: 5, Category: strPtr("Food")})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	updated, err := s.Update(ctx, tx.ID, store.TransactionPatch{Category: strPtr("")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Category == nil || *updated.Category != "" {
		t.Error("expected category to be present but empty after patch")
	}
}

func TestNotFound(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.FindByID(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByID error = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, "missing", store.TransactionPatch{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tx, err := s.Insert(ctx, &domain.Transaction{UserID: "alice", Amount: 5})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.FindByID(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected record gone, got err=%v", err)
	}
}

func TestUsersRoundTrip(t *testing.T) {
	s := NewUsers()
	ctx := context.Background()

	u, err := s.Insert(ctx, &domain.User{GoogleID: "g-123", Email: "a@example.com", Name: "Alice"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if u.ID == "" {
		t.Error("expected store to assign user ID")
	}

	found, err := s.FindByGoogleID(ctx, "g-123")
	if err != nil {
		t.Fatalf("FindByGoogleID failed: %v", err)
	}
	if found.Email != "a@example.com" {
		t.Errorf("email = %q", found.Email)
	}

	if err := s.ReplaceRefreshTokens(ctx, u.ID, []string{"tok-1", "tok-2"}); err != nil {
		t.Fatalf("ReplaceRefreshTokens failed: %v", err)
	}
	byID, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(byID.RefreshTokens) != 2 {
		t.Errorf("refresh tokens = %v, want 2 entries", byID.RefreshTokens)
	}

	if _, err := s.FindByGoogleID(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
