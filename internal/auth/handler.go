package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service *AuthService
	cookies *CookieCodec
	logger  *zap.Logger
}

func NewAuthHandler(service *AuthService, cookies *CookieCodec, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies, logger: logger.Named("auth.http")}
}

func (h *AuthHandler) fail(c echo.Context, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Reason})
	case errors.Is(err, ErrUserExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrSessionExpired), errors.Is(err, ErrInvalidChallenge):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrCSRFMismatch):
		return c.JSON(StatusCSRFMismatch, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("auth request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// StatusCSRFMismatch is the non-standard status returned when a form token
// does not match the session.
const StatusCSRFMismatch = 419

func (h *AuthHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid Request"})
	}
	if _, err := h.service.Register(c.Request().Context(), req); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Verification email sent, check your inbox"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := h.bind(c, &cred); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	ctx := c.Request().Context()
	session, err := h.service.Authenticate(ctx, cred.UserID, cred.Password)
	if err != nil {
		return h.fail(c, err)
	}
	user, err := h.service.GetUser(ctx, session.Data.UserID)
	if err != nil || user == nil {
		return h.fail(c, ErrInvalidCredentials)
	}
	if err := h.cookies.Write(c, session); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"userid":     user.UserID,
		"role":       user.Role,
		"expiry":     session.Expiry,
		"csrf_token": session.CSRFToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), h.cookies.Read(c)); err != nil {
		return h.fail(c, err)
	}
	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	if _, err := h.service.VerifyEmail(c.Request().Context(), c.QueryParam("key")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Thank you for verifying. You can log in"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "If the account exists, a password reset email has been sent"})
}

// CheckResetKey lets the reset page confirm a link before asking for a password.
func (h *AuthHandler) CheckResetKey(c echo.Context) error {
	user, err := h.service.ResolveChallenge(c.Request().Context(), c.QueryParam("key"), ChallengeReset)
	if err != nil {
		return h.fail(c, err)
	}
	if user == nil {
		return h.fail(c, ErrInvalidChallenge)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Reset key is valid"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := h.service.ResetPassword(c.Request().Context(), req.Key, req.Password, req.RepeatPassword); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password changed successfully!"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	user := UserFromContext(c)
	session := SessionFromContext(c)
	if user == nil || session == nil {
		return h.fail(c, ErrSessionExpired)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       user,
		"expiry":     session.Expiry,
		"csrf_token": session.CSRFToken,
	})
}
