package middleware

import (
	"StudentRequests/internal/auth"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// rbacPolicy maps roles to route patterns and methods.
var rbacPolicy = [][]string{
	{string(auth.RoleStudent), "/api/profile", http.MethodGet},
	{string(auth.RoleStudent), "/api/requests", http.MethodGet},
	{string(auth.RoleStudent), "/api/requests", http.MethodPost},
	{string(auth.RoleStudent), "/api/requests/cancel", http.MethodPost},
	{string(auth.RoleStaff), "/api/profile", http.MethodGet},
	{string(auth.RoleStaff), "/api/staff/*", "*"},
}

// NewEnforcer builds the RBAC enforcer from the in-code model and policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(rbacPolicy); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// CasbinMiddleware enforces RBAC on the route pattern for the session user's
// role. It must run after SessionMiddleware.
func CasbinMiddleware(enforcer *casbin.Enforcer, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := auth.UserFromContext(c)
			if user == nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized: missing user"})
			}
			role := string(user.Role)
			obj := c.Path()
			act := c.Request().Method
			allowed, err := enforcer.Enforce(role, obj, act)
			if err != nil {
				logger.Error("casbin enforce error", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
			}
			if !allowed {
				logger.Info("casbin denied", zap.String("role", role), zap.String("obj", obj), zap.String("act", act))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
			}
			return next(c)
		}
	}
}
