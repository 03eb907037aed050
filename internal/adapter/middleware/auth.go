package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin = "admin"

	// ContextSubject holds the verified token subject.
	ContextSubject = "auth.subject"
)

var errInvalidToken = errors.New("invalid token")

// AdminAuth accepts HS256 bearer tokens carrying role=admin.
func AdminAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header required"})
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization header format"})
			}

			sub, role, err := validateToken(strings.TrimSpace(parts[1]), key)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if role != RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin role required"})
			}
			c.Set(ContextSubject, sub)
			return next(c)
		}
	}
}

// Subject returns the subject set by AdminAuth, or "".
func Subject(c echo.Context) string {
	s, _ := c.Get(ContextSubject).(string)
	return s
}

func validateToken(raw string, key []byte) (string, string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", errInvalidToken
	}
	role, _ := claims["role"].(string)
	return sub, role, nil
}
