package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type statsResponse struct {
	Stats *domain.DashboardStats `json:"stats"`
}

type logsResponse struct {
	Logs  []*domain.LogEntry `json:"logs"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type purgeResponse struct {
	Deleted int64 `json:"deleted"`
}

type loggingSetting struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// AdminHandler serves the superadmin dashboard.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Stats: stats})
}

// Logs lists recorded API calls, newest first.
//
// @Summary      List API logs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        method       query     string  false  "HTTP method"
// @Param        status_code  query     int     false  "Response status"
// @Param        endpoint     query     string  false  "Endpoint prefix"
// @Param        user_id      query     string  false  "Caller ID"
// @Param        page         query     int     false  "Page (1-based)"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {object}  logsResponse
// @Failure      400          {object}  errorResponse
// @Router       /api/admin/logs [get]
func (h *AdminHandler) Logs(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	f := domain.LogFilter{
		Method:         strings.ToUpper(c.QueryParam("method")),
		EndpointPrefix: c.QueryParam("endpoint"),
		UserID:         c.QueryParam("user_id"),
		Page:           page,
		Limit:          limit,
	}
	if err := echo.QueryParamsBinder(c).Int("status_code", &f.StatusCode).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "status_code must be an integer")
	}

	logs, total, err := h.admin.Logs(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logsResponse{Logs: logs, Total: total, Page: page, Limit: limit})
}

// PurgeLogs deletes entries older than before, or every entry when before is omitted.
//
// @Summary      Purge API logs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        before  query     string  false  "RFC 3339 cutoff"
// @Success      200     {object}  purgeResponse
// @Failure      400     {object}  errorResponse
// @Router       /api/admin/logs [delete]
func (h *AdminHandler) PurgeLogs(c echo.Context) error {
	var before *time.Time
	if raw := c.QueryParam("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Invalid("before must be an RFC 3339 timestamp")
		}
		before = &t
	}
	n, err := h.admin.PurgeLogs(c.Request().Context(), before)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purgeResponse{Deleted: n})
}

// GetLogging handles GET /api/admin/settings/logging.
//
// @Summary      Read the API logging flag
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  loggingSetting
// @Router       /api/admin/settings/logging [get]
func (h *AdminHandler) GetLogging(c echo.Context) error {
	on, err := h.admin.LoggingEnabled(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loggingSetting{Enabled: &on})
}

// SetLogging handles PUT /api/admin/settings/logging.
//
// @Summary      Toggle API logging
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      loggingSetting  true  "Flag"
// @Success      200   {object}  loggingSetting
// @Failure      400   {object}  errorResponse
// @Router       /api/admin/settings/logging [put]
func (h *AdminHandler) SetLogging(c echo.Context) error {
	var req loggingSetting
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.admin.SetLoggingEnabled(c.Request().Context(), *req.Enabled); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}
