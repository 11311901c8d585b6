package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/auth"
	"github.com/dvloznov/spendwise/internal/store"
)

// refreshCookie is the httpOnly cookie carrying the refresh token.
const refreshCookie = "jid"

// AuthHandler handles the Google sign-in and token lifecycle endpoints.
type AuthHandler struct {
	auth  *auth.Service
	users store.UserStore
	log   zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authSvc *auth.Service, users store.UserStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:  authSvc,
		users: users,
		log:   log,
	}
}

// GoogleLogin handles POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No code provided")
		return
	}

	user, pair, err := h.auth.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		h.log.Warn().Err(err).Msg("Google sign-in failed")
		middleware.WriteError(w, http.StatusUnauthorized, "Invalid google token")
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"data": map[string]interface{}{
			"accessToken": pair.AccessToken,
			"user": map[string]string{
				"email":  user.Email,
				"name":   user.Name,
				"avatar": user.Avatar,
			},
		},
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "No token")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.log.Warn().Err(err).Msg("Refresh failed")
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Access token refreshed successfully",
		"data":    map[string]string{"accessToken": pair.AccessToken},
	})
}

// Logout handles POST /auth/logout
// Always succeeds so a client with a dead cookie can still log out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("Logout cleanup failed")
		}
	}

	clearRefreshCookie(w)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// Profile handles GET /auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile fetched successfully",
		"data":    user,
	})
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
