package auth

import "github.com/labstack/echo/v4"

const (
	contextSession = "session"
	contextUser    = "user"
)

func SetContext(c echo.Context, session *Session, user *User) {
	c.Set(contextSession, session)
	c.Set(contextUser, user)
}

func SessionFromContext(c echo.Context) *Session {
	session, _ := c.Get(contextSession).(*Session)
	return session
}

func UserFromContext(c echo.Context) *User {
	user, _ := c.Get(contextUser).(*User)
	return user
}
