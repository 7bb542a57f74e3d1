package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/mkjeong/leadnet/internal/auth"
	"github.com/mkjeong/leadnet/internal/model"
)

const principalKey = "principal"

// PrincipalFromCtx extracts the authenticated principal set by JWTMiddleware.
func PrincipalFromCtx(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}

// JWTMiddleware authenticates requests using the Authorization bearer token.
// On success it stores the principal in context for the handlers downstream.
func JWTMiddleware(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const prefix = "Bearer "
			h := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if !strings.HasPrefix(h, prefix) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			p, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(h, prefix)))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}
