package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/store/memory"
)

func newIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newIssuer()

	access, err := issuer.IssueAccessToken("user-1")
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := issuer.ParseAccessToken(access)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	issuer := newIssuer()

	refresh, err := issuer.IssueRefreshToken("user-1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if _, err := issuer.ParseAccessToken(refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("a", "r", -time.Minute, -time.Minute)

	// Negative TTL falls back to the default, so sign directly.
	expired, err := sign([]byte("a"), "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := issuer.ParseAccessToken(expired); err == nil {
		t.Error("expired token accepted")
	}
}

// mockVerifier is an IdentityVerifier double.
type mockVerifier struct {
	profile *GoogleProfile
	err     error
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	return m.profile, m.err
}

func newTestService(verifier IdentityVerifier) (*Service, *memory.Users) {
	users := memory.NewUsers()
	return NewService(verifier, newIssuer(), users, zerolog.Nop()), users
}

func TestSignInCreatesUserOnce(t *testing.T) {
	svc, users := newTestService(&mockVerifier{
		profile: &GoogleProfile{Subject: "g-1", Email: "a@example.com", Name: "Alice"},
	})
	ctx := context.Background()

	first, pair, err := svc.SignInWithGoogle(ctx, "id-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected a full token pair")
	}

	second, _, err := svc.SignInWithGoogle(ctx, "id-token")
	if err != nil {
		t.Fatalf("second SignInWithGoogle failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("sign-in created a duplicate user: %q vs %q", first.ID, second.ID)
	}

	u, err := users.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if len(u.RefreshTokens) != 2 {
		t.Errorf("refresh tokens = %d, want 2 (one per sign-in)", len(u.RefreshTokens))
	}
}

func TestSignInRejectsBadIdentity(t *testing.T) {
	svc, _ := newTestService(&mockVerifier{err: errors.New("bad audience")})

	if _, _, err := svc.SignInWithGoogle(context.Background(), "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRotates(t *testing.T) {
	svc, _ := newTestService(&mockVerifier{profile: &GoogleProfile{Subject: "g-1", Email: "a@example.com"}})
	ctx := context.Background()

	_, pair, err := svc.SignInWithGoogle(ctx, "id-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh did not rotate the token")
	}

	// The old token was consumed by the rotation.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replayed refresh error = %v, want ErrInvalidToken", err)
	}

	// The new one still works.
	if _, err := svc.Refresh(ctx, next.RefreshToken); err != nil {
		t.Errorf("rotated token rejected: %v", err)
	}
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	svc, _ := newTestService(&mockVerifier{profile: &GoogleProfile{Subject: "g-1", Email: "a@example.com"}})
	ctx := context.Background()

	_, pair, err := svc.SignInWithGoogle(ctx, "id-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh after logout error = %v, want ErrInvalidToken", err)
	}

	// Logout is idempotent.
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Errorf("second Logout failed: %v", err)
	}
}

func TestValidateAccess(t *testing.T) {
	svc, _ := newTestService(&mockVerifier{profile: &GoogleProfile{Subject: "g-1", Email: "a@example.com"}})
	ctx := context.Background()

	user, pair, err := svc.SignInWithGoogle(ctx, "id-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}

	userID, err := svc.ValidateAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("user id = %q, want %q", userID, user.ID)
	}

	if _, err := svc.ValidateAccess("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}
