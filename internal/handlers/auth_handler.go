package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classtrack/backend/internal/auth/middleware"
	"github.com/classtrack/backend/internal/models"
	"github.com/classtrack/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for passwordless sign-in business logic.
type AuthService interface {
	// Method RequestMagicLink creates a one-time sign-in link and queues the email.
	//
	// The call succeeds whether or not the email is approved; an unapproved
	// email just never receives a link.
	RequestMagicLink(ctx context.Context, email string) error
	// Method ConsumeMagicLink exchanges a valid one-time link for a token pair.
	ConsumeMagicLink(ctx context.Context, email, token string) (*models.User, string, string, error)
	// Method Refresh rotates a refresh token and issues a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method SignOut deletes the refresh token of the current session.
	SignOut(ctx context.Context, refreshToken string) error
	// Method ResolveSession checks the approval list for an authenticated user.
	//
	// services.ErrSessionRevoked means the email fell off the list and every
	// session of the user has been revoked.
	ResolveSession(ctx context.Context, userID int, email string) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService    AuthService
	authMiddleware func(http.Handler) http.Handler
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService AuthService,
	authMiddleware func(http.Handler) http.Handler,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		authService:    authService,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/magic-link", h.RequestMagicLink)
		r.Get("/callback", h.Callback)
		r.Post("/refresh", h.Refresh)
		r.Post("/signout", h.SignOut)
		r.With(h.authMiddleware).Get("/me", h.Me)
	})
}

// MagicLinkRequest represents a sign-in link request
type MagicLinkRequest struct {
	Email string `json:"email"`
}

// RequestMagicLink handles POST /auth/magic-link
// @Summary Request a sign-in link
// @Description Send a one-time sign-in link to an email. Responds 200 regardless of approval so the roster cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body MagicLinkRequest true "Email to send the link to"
// @Success 200 {object} map[string]string "Link requested"
// @Failure 400 {object} map[string]string "Invalid request body or email"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.RequestMagicLink(r.Context(), req.Email); err != nil {
		h.Logger.Error("failed to request magic link", zap.Error(err))
		if err.Error() == "invalid email format" {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondError(w, http.StatusInternalServerError, "failed to request sign-in link")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "if the address is registered, a sign-in link is on its way",
	})
}

// Callback handles GET /auth/callback
// @Summary Complete a sign-in link
// @Description Exchange the emailed one-time link for a session. Tokens are set as HTTP-only cookies.
// @Tags auth
// @Produce json
// @Param email query string true "Email the link was sent to"
// @Param token query string true "One-time token from the link"
// @Success 200 {object} models.User "Signed in"
// @Failure 401 {object} map[string]string "Invalid, expired or replayed link"
// @Failure 403 {object} map[string]string "Email no longer approved"
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	token := r.URL.Query().Get("token")
	if email == "" || token == "" {
		h.RespondError(w, http.StatusBadRequest, "email and token are required")
		return
	}

	user, accessToken, refreshToken, err := h.authService.ConsumeMagicLink(r.Context(), email, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidMagicLink):
			h.RespondError(w, http.StatusUnauthorized, "invalid or expired sign-in link")
		case errors.Is(err, services.ErrNotApproved):
			h.RespondError(w, http.StatusForbidden, "email is not approved")
		default:
			h.Logger.Error("failed to consume magic link", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, "failed to sign in")
		}
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)
	h.RespondJSON(w, http.StatusOK, user)
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Refresh access and refresh tokens using a valid refresh token. Token can be provided in request body or as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Tokens refreshed successfully"
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.refreshTokenFrom(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.Logger.Warn("failed to refresh tokens", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	h.setTokenCookies(w, accessToken, newRefreshToken)
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "tokens refreshed successfully"})
}

// SignOut handles POST /auth/signout
// @Summary Sign out
// @Description Delete the refresh token of the current session and clear cookies.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Signed out"
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := h.refreshTokenFrom(r); ok {
		if err := h.authService.SignOut(r.Context(), refreshToken); err != nil {
			h.Logger.Warn("failed to delete refresh token on signout", zap.Error(err))
		}
	}

	h.clearTokenCookies(w)
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// Me handles GET /auth/me
// @Summary Resolve the current session
// @Description Return the profile of the signed-in user. A user whose email fell off the approval list is signed out with 401.
// @Tags auth
// @Produce json
// @Success 200 {object} models.User "Current user"
// @Failure 401 {object} map[string]string "Not signed in or no longer approved"
// @Router /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.authService.ResolveSession(r.Context(), userID, email)
	if err != nil {
		if errors.Is(err, services.ErrSessionRevoked) {
			// The removal is silent on purpose, the cookies are cleared and
			// the client just sees a signed-out state
			h.clearTokenCookies(w)
			h.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		// A failing roster read degrades to signed-out rather than an error
		// page; the cookies stay and the next request can still succeed
		h.Logger.Error("failed to resolve session", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// refreshTokenFrom extracts the refresh token from the request body or cookie
func (h *AuthHandler) refreshTokenFrom(r *http.Request) (string, bool) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken, true
	}

	cookie, err := r.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	// Access token cookie (1 hour)
	accessCookie := &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, accessCookie)

	// Refresh token cookie (7 days)
	refreshCookie := &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   604800,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, refreshCookie)
}

// clearTokenCookies expires both token cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
