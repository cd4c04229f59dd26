package middleware

import (
	"StudentRequests/internal/auth"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	CSRFHeader    = "X-CSRF-Token"
	CSRFFormField = "csrfToken"
)

// CSRFMiddleware rejects state-changing requests whose token does not match
// the session's. It must run after SessionMiddleware.
func CSRFMiddleware(service *auth.AuthService, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			supplied := c.Request().Header.Get(CSRFHeader)
			if supplied == "" {
				supplied = c.FormValue(CSRFFormField)
			}
			session := auth.SessionFromContext(c)
			if err := service.RequireCSRF(session, supplied); err != nil {
				userID := ""
				if session != nil {
					userID = session.Data.UserID
				}
				logger.Warn("csrf token mismatch", zap.String("userid", userID), zap.String("path", c.Path()))
				return c.JSON(auth.StatusCSRFMismatch, map[string]string{"error": "CSRF TOKEN MISMATCH"})
			}
			return next(c)
		}
	}
}
