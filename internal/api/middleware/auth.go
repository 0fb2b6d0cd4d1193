package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/bhavapi/internal/models"
	"github.com/nsvirk/bhavapi/internal/service"
	"github.com/nsvirk/bhavapi/pkg/utils/response"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
)

// UserContextKey is the echo context key holding the *models.UserIdentity
const UserContextKey = "user"

// AuthMiddleware creates a new authorization middleware
func AuthMiddleware(authenticator service.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Missing Authorization header")
			}

			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Invalid Authorization header format")
			}

			identity, err := authenticator.Authenticate(c.Request().Context(), strings.TrimSpace(token))
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					zaplogger.Error("token verification failed", zaplogger.Fields{"error": err.Error()})
				}
				return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthorizationException, "Invalid or expired token")
			}

			c.Set(UserContextKey, identity)
			return next(c)
		}
	}
}

// CurrentUser returns the identity set by AuthMiddleware
func CurrentUser(c echo.Context) (*models.UserIdentity, bool) {
	identity, ok := c.Get(UserContextKey).(*models.UserIdentity)
	return identity, ok && identity != nil
}
