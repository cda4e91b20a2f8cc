package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/api/middleware"
	"github.com/autodealer/showroom/internal/core/domain"
)

// principal returns the authenticated caller. Routes behind Auth always
// have one; a missing principal means the route was wired without it.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}

// viewer returns the caller on public routes, or nil when anonymous.
func viewer(c echo.Context) *domain.Principal {
	if p, ok := middleware.PrincipalFrom(c); ok {
		return &p
	}
	return nil
}

// bindAndValidate decodes the request into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// pageQuery reads page and limit, falling back to the first page of
// defaultLimit items and capping limit at maxLimit.
func pageQuery(c echo.Context) (page, limit int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, min(limit, maxLimit), nil
}
