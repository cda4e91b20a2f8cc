package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SetupKeyHeader carries the bootstrap secret.
const SetupKeyHeader = "X-Setup-Key"

// SetupKey rejects requests whose x-setup-key header does not match secret.
// An empty secret rejects everything.
func SetupKey(secret string) echo.MiddlewareFunc {
	want := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := []byte(c.Request().Header.Get(SetupKeyHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid setup key")
			}
			return next(c)
		}
	}
}
