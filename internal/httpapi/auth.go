package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "Bearer "

// requireToken guards admin endpoints behind the configured admin token,
// presented as a bearer token.
func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return unauthorizedResponse(c)
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if !s.tokens.Verify(token) {
				return unauthorizedResponse(c)
			}
			return next(c)
		}
	}
}

func unauthorizedResponse(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Unauthorized", nil)
}
