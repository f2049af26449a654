package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant/pkg/tokens"
)

const RoleAdmin = "admin"

type RoleMiddleware struct {
	JWTSecret []byte
}

func NewRoleMiddleware(secret []byte) *RoleMiddleware {
	return &RoleMiddleware{JWTSecret: secret}
}

// RequireRole accepts a bearer token or the accessToken cookie. Admins pass
// every group.
func (m *RoleMiddleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
			if err != nil || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			if claims.Role != RoleAdmin && !slices.Contains(roles, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, claims.Role+" role cannot access this resource")
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(v)
	}
	if ck, err := c.Cookie("accessToken"); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("role", claims.Role)
}
