package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	authpkg "github.com/merraine/merraine-api/internal/auth"
)

// JWT validates the session token and stores the username in the request
// context. The token is read from a Bearer authorization header, or from the
// session cookie when no header is sent.
func JWT(manager *authpkg.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := sessionToken(c)
			if !ok {
				return unauthorized(c, "invalid authorization header")
			}
			if token == "" {
				return unauthorized(c, "unauthorized - please log in")
			}

			claims, err := manager.ParseToken(token)
			if err != nil {
				return unauthorized(c, "invalid token")
			}

			c.Set(ContextKeyUsername, claims.Username)
			return next(c)
		}
	}
}

// UsernameFromContext returns the authenticated username, if any.
func UsernameFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyUsername).(string); ok {
		return val
	}
	return ""
}

func sessionToken(c echo.Context) (string, bool) {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return strings.TrimSpace(parts[1]), true
	}
	if cookie, err := c.Cookie(authpkg.CookieName); err == nil {
		return cookie.Value, true
	}
	return "", true
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"status": "error", "message": message})
}
