package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

const (
	startKey         = "reqlog.start"
	errorKey         = "reqlog.error"
	defaultBodyLimit = 4096
	requestLogTask   = "request_log.write"
	truncatedSuffix  = "...(truncated)"
	redactedValue    = "[REDACTED]"
)

// sensitiveKeys are JSON fields whose values never reach the request log.
var sensitiveKeys = map[string]struct{}{
	"password":         {},
	"current_password": {},
	"new_password":     {},
	"token":            {},
	"code":             {},
}

// skippedPrefixes are never logged. The realtime stream is long-lived and
// its body would be buffered for the life of the connection.
var skippedPrefixes = []string{"/health", "/metrics", "/swagger", "/api/realtime/stream"}

// RequestLogConfig configures RequestLog.
type RequestLogConfig struct {
	// BodyLimit caps the stored request and response bodies, in bytes.
	BodyLimit int
	Now       func() time.Time
}

// RequestLog records every API call through recorder without delaying
// the response. It must be registered before any middleware that can
// short-circuit a request, so the final status is captured.
func RequestLog(recorder ports.RequestLogger, queue ports.TaskQueue, cfg RequestLogConfig) echo.MiddlewareFunc {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = defaultBodyLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	dump := echomiddleware.BodyDumpWithConfig(echomiddleware.BodyDumpConfig{
		Skipper: skipRequestLog,
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			entry := buildEntry(c, cfg, reqBody, resBody)
			queue.Enqueue(ports.Task{
				Name: requestLogTask,
				Key:  entry.Endpoint,
				Run: func(ctx context.Context) error {
					_, err := recorder.Log(ctx, entry)
					return err
				},
			})
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		inner := dump(func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Set(errorKey, err.Error())
			}
			return err
		})
		return func(c echo.Context) error {
			c.Set(startKey, cfg.Now())
			return inner(c)
		}
	}
}

func skipRequestLog(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, p := range skippedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func buildEntry(c echo.Context, cfg RequestLogConfig, reqBody, resBody []byte) *domain.LogEntry {
	now := cfg.Now()
	entry := &domain.LogEntry{
		Endpoint:     c.Request().URL.Path,
		Route:        c.Path(),
		Method:       c.Request().Method,
		StatusCode:   c.Response().Status,
		RequestBody:  clip(redact(reqBody), cfg.BodyLimit),
		ResponseBody: clip(redact(resBody), cfg.BodyLimit),
		RequestID:    c.Response().Header().Get(echo.HeaderXRequestID),
		Timestamp:    now,
	}
	if start, ok := c.Get(startKey).(time.Time); ok {
		entry.LatencyMs = now.Sub(start).Milliseconds()
	}
	if p, ok := PrincipalFrom(c); ok {
		id := p.ID
		entry.UserID = &id
	}
	if msg, ok := c.Get(errorKey).(string); ok {
		entry.Error = &msg
	}
	return entry
}

func clip(b []byte, limit int) *string {
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	if len(b) > limit {
		s = string(b[:limit]) + truncatedSuffix
	}
	return &s
}

// redact masks sensitiveKeys at any depth of a JSON body. Bodies that are not
// JSON are returned unchanged.
func redact(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return b
	}
	if !redactValue(doc) {
		return b
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return b
	}
	return out
}

// redactValue reports whether anything was masked.
func redactValue(v any) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				t[k] = redactedValue
				changed = true
				continue
			}
			if redactValue(child) {
				changed = true
			}
		}
	case []any:
		for _, child := range t {
			if redactValue(child) {
				changed = true
			}
		}
	}
	return changed
}
