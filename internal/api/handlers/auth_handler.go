package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/api/middleware"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

// LoginService runs the Google login flow for AuthHandler
type LoginService interface {
	LoginURL(state string) string
	CompleteLogin(ctx context.Context, code string) (string, error)
	Logout(ctx context.Context, identity *models.UserIdentity) error
}

// AuthHandler is the handler for the auth API
type AuthHandler struct {
	service     LoginService
	frontendURL string
}

// NewAuthHandler creates a new handler for the auth API.
// Login results are redirected to frontendURL.
func NewAuthHandler(service LoginService, frontendURL string) *AuthHandler {
	return &AuthHandler{service: service, frontendURL: frontendURL}
}

// GoogleLogin redirects to the Google consent page
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.service.LoginURL(state))
}

// GoogleCallback completes the login and hands the token to the frontend
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if e := c.QueryParam("error"); e != "" {
		return h.redirect(c, "error", e)
	}

	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return h.redirect(c, "error", "invalid_state")
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.redirect(c, "error", "missing_code")
	}

	token, err := h.service.CompleteLogin(c.Request().Context(), code)
	if err != nil {
		zaplogger.Error("google login failed", zaplogger.Fields{"error": err.Error()})
		return h.redirect(c, "error", "authentication_failed")
	}
	return h.redirect(c, "token", token)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Not authenticated")
	}
	return response.SuccessResponse(c, identity)
}

// Logout invalidates the caller's token
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Not authenticated")
	}
	if err := h.service.Logout(c.Request().Context(), identity); err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) redirect(c echo.Context, key, value string) error {
	target := h.frontendURL + "/auth/callback?" + url.Values{key: {value}}.Encode()
	return c.Redirect(http.StatusTemporaryRedirect, target)
}
