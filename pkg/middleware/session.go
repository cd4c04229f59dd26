package middleware

import (
	"StudentRequests/internal/auth"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionMiddleware resolves the session cookie to a live session and user
// and stores both on the context. Expired sessions are rejected here; they
// stay in the store until logout.
func SessionMiddleware(service *auth.AuthService, cookies *auth.CookieCodec, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cookies.Read(c)
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": auth.ErrSessionExpired.Error()})
			}
			session, user, err := service.Authorize(c.Request().Context(), key)
			if err != nil {
				if errors.Is(err, auth.ErrSessionExpired) {
					cookies.Clear(c)
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
				}
				logger.Error("session lookup failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}
			auth.SetContext(c, session, user)
			return next(c)
		}
	}
}
