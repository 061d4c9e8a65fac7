package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
)

// PrincipalKey is the echo context key holding the authenticated
// domain.Principal.
const PrincipalKey = "principal"

// Auth authenticates the Authorization header and injects the principal into
// the context. Failures are returned to the HTTP error handler, which turns
// them into 401 or 500.
func Auth(authn ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			principal, err := authn.Authenticate(c.Request().Context(), header)
			if err != nil {
				return err
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal set by Auth.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	return p, ok && !p.Identity.IsZero()
}
