package domain

import "time"

// User is an account holder signed in through Google. GoogleID is the
// stable subject claim from the verified ID token; RefreshTokens holds the
// currently valid refresh tokens (rotated on every refresh).
type User struct {
	ID       string `json:"id"`
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	RefreshTokens []string `json:"-"`

	CreatedTS time.Time `json:"created_ts"`
}
