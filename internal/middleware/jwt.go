package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"   // sentinel comparisons for token expiry
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that resolves the caller's
// identity from a Bearer access token and injects the user id into
// the request context.  The provided secret must match the one used
// when issuing tokens.  Handlers behind this middleware read the
// resolved identity via `c.Get("user_id")` and never touch the
// credential themselves.
//
// Failure modes map onto the booking API's message vocabulary:
// a missing header yields "login_required", an expired token
// "token_expired", and anything else unverifiable "invalid_jwt".
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret.  The callback supplies the
			// signing key and rejects tokens signed with any other
			// algorithm family.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "token_expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_jwt"})
			}
			if !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_jwt"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid_jwt"})
			}

			// Store the subject (user ID) in the context for handlers.
			c.Set("user_id", claims["sub"])
			return next(c)
		}
	}
}
