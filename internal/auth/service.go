package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/dvloznov/spendwise/internal/store"
)

// ErrInvalidToken is returned when a presented token fails validation or
// a refresh token is not in the user's active set.
var ErrInvalidToken = errors.New("invalid token")

// TokenPair is the result of a successful sign-in or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// Service implements the sign-in, refresh and logout flows against the
// user store. Refresh tokens rotate: each refresh invalidates the token
// that was presented and appends a new one.
type Service struct {
	verifier IdentityVerifier
	issuer   *TokenIssuer
	users    store.UserStore
	log      zerolog.Logger
}

// NewService wires the auth service.
func NewService(verifier IdentityVerifier, issuer *TokenIssuer, users store.UserStore, log zerolog.Logger) *Service {
	return &Service{verifier: verifier, issuer: issuer, users: users, log: log}
}

// SignInWithGoogle verifies the Google ID token, finds or creates the
// user, and issues a fresh token pair.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (*domain.User, *TokenPair, error) {
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.FindByGoogleID(ctx, profile.Subject)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.users.Insert(ctx, &domain.User{
			GoogleID: profile.Subject,
			Email:    profile.Email,
			Name:     profile.Name,
			Avatar:   profile.Picture,
		})
		if err == nil {
			s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("Created new user")
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("SignInWithGoogle: user lookup: %w", err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the presented refresh token and returns a new pair. The
// old token is removed from the user's set before the new one is added,
// so a token can only be refreshed once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("Refresh: user lookup: %w", err)
	}

	remaining, found := removeToken(user.RefreshTokens, refreshToken)
	if !found {
		return nil, fmt.Errorf("%w: refresh token not active", ErrInvalidToken)
	}
	user.RefreshTokens = remaining

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout removes the presented refresh token from the user's active set.
// Unknown tokens are ignored: logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("Logout: user lookup: %w", err)
	}

	remaining, found := removeToken(user.RefreshTokens, refreshToken)
	if !found {
		return nil
	}

	if err := s.users.ReplaceRefreshTokens(ctx, user.ID, remaining); err != nil {
		return fmt.Errorf("Logout: storing tokens: %w", err)
	}
	return nil
}

// ValidateAccess validates an access token and returns the user ID it
// asserts. Used by the HTTP auth middleware.
func (s *Service) ValidateAccess(tokenStr string) (string, error) {
	claims, err := s.issuer.ParseAccessToken(tokenStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.UserID, nil
}

func (s *Service) issuePair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuePair: access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuePair: refresh token: %w", err)
	}

	tokens := append(append([]string(nil), user.RefreshTokens...), refresh)
	if err := s.users.ReplaceRefreshTokens(ctx, user.ID, tokens); err != nil {
		return nil, fmt.Errorf("issuePair: storing tokens: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func removeToken(tokens []string, target string) ([]string, bool) {
	var remaining []string
	found := false
	for _, t := range tokens {
		if t == target {
			found = true
			continue
		}
		remaining = append(remaining, t)
	}
	return remaining, found
}
