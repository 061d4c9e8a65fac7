package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/lairbnb/lairs-api/internal/api/middleware"
	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware. A
// missing principal means the route was wired without Auth; it is treated
// as unauthenticated rather than trusted.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return domain.Principal{}, domain.InvalidCredentials(nil)
	}
	return p, nil
}
