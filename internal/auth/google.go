package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleProfile is the subset of the verified ID-token payload the
// sign-in flow consumes.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier validates a third-party identity assertion and returns
// the asserted profile. Implementations are network-backed; tests inject
// a double.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client ID.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// Verify implements IdentityVerifier.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*GoogleProfile, error) {
	payload, err := idtoken.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("Verify: validate id token: %w", err)
	}

	profile := &GoogleProfile{Subject: payload.Subject}
	if v, ok := payload.Claims["email"].(string); ok {
		profile.Email = v
	}
	if v, ok := payload.Claims["name"].(string); ok {
		profile.Name = v
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		profile.Picture = v
	}

	return profile, nil
}
