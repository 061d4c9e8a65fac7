package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// RequireScheme restricts a route to principals authenticated with one of the
// given schemes. It must run after Auth.
func RequireScheme(allowedSchemes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedSchemes))
	for _, s := range allowedSchemes {
		allowed[s] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return domain.InvalidCredentials(nil)
			}
			if _, ok := allowed[p.Scheme]; !ok {
				return domain.InvalidCredentials(fmt.Errorf("scheme %q is not accepted on this route", p.Scheme))
			}
			return next(c)
		}
	}
}
