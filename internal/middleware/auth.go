package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/velobay/velobay-backend/internal/handler"
	"github.com/velobay/velobay-backend/internal/security"
)

type AuthMiddleware struct {
	manager *security.TokenManager
}

func NewAuthMiddleware(manager *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{manager: manager}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized", "missing bearer token"))
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		claims, err := m.manager.ParseAccessToken(tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid_token", "access token is invalid or expired"))
		}
		c.Set("uid", claims.UserID)
		return next(c)
	}
}
