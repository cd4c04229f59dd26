package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "session"

// CookieClaims wraps the opaque session key carried by the session cookie.
type CookieClaims struct {
	SessionKey string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs session keys so that a forged cookie is rejected before
// any store lookup.
type CookieCodec struct {
	secret []byte
	secure bool
}

func NewCookieCodec(secret []byte, secure bool) *CookieCodec {
	return &CookieCodec{secret: secret, secure: secure}
}

func (c *CookieCodec) Encode(session *Session) (string, error) {
	claims := &CookieClaims{
		SessionKey: session.Key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.Expiry),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &CookieClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionKey == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SessionKey, nil
}

// Read returns the session key from the request cookie, or "" when the
// cookie is missing, tampered with or expired.
func (c *CookieCodec) Read(ctx echo.Context) string {
	cookie, err := ctx.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	key, err := c.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return key
}

func (c *CookieCodec) Write(ctx echo.Context, session *Session) error {
	value, err := c.Encode(session)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  session.Expiry,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieCodec) Clear(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
