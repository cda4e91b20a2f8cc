package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autodealer/showroom/internal/core/domain"
	"github.com/autodealer/showroom/internal/core/ports"
)

type stubAdminService struct {
	ports.AdminService
	logs       func(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error)
	purge      func(ctx context.Context, before *time.Time) (int64, error)
	setLogging func(ctx context.Context, enabled bool) error
}

func (s *stubAdminService) Logs(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error) {
	return s.logs(ctx, f)
}

func (s *stubAdminService) PurgeLogs(ctx context.Context, before *time.Time) (int64, error) {
	return s.purge(ctx, before)
}

func (s *stubAdminService) SetLoggingEnabled(ctx context.Context, enabled bool) error {
	return s.setLogging(ctx, enabled)
}

func TestAdminHandler_Logs_Filter(t *testing.T) {
	var got domain.LogFilter
	h := NewAdminHandler(&stubAdminService{
		logs: func(_ context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error) {
			got = f
			return nil, 0, nil
		},
	})

	_, err := do(t, h.Logs, call{
		method: http.MethodGet,
		target: "/api/admin/logs?method=post&status_code=404&endpoint=/api/cars&user_id=u1",
		token:  "super",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LogFilter{
		Method:         "POST",
		StatusCode:     404,
		EndpointPrefix: "/api/cars",
		UserID:         "u1",
		Page:           1,
		Limit:          defaultLimit,
	}, got)
}

func TestAdminHandler_PurgeLogs(t *testing.T) {
	var got []*time.Time
	h := NewAdminHandler(&stubAdminService{
		purge: func(_ context.Context, before *time.Time) (int64, error) {
			got = append(got, before)
			return 3, nil
		},
	})

	rec, err := do(t, h.PurgeLogs, call{method: http.MethodDelete, target: "/api/admin/logs", token: "super"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":3}`, rec.Body.String())

	_, err = do(t, h.PurgeLogs, call{method: http.MethodDelete, target: "/api/admin/logs?before=2026-01-01T00:00:00Z", token: "super"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	require.NotNil(t, got[1])
	assert.Equal(t, 2026, got[1].Year())

	_, err = do(t, h.PurgeLogs, call{method: http.MethodDelete, target: "/api/admin/logs?before=soon", token: "super"})
	assert.True(t, isValidation(err))
}

func TestAdminHandler_SetLogging_RequiresFlag(t *testing.T) {
	h := NewAdminHandler(&stubAdminService{
		setLogging: func(context.Context, bool) error {
			t.Fatal("service must not be called")
			return nil
		},
	})

	_, err := do(t, h.SetLogging, call{method: http.MethodPut, target: "/api/admin/settings/logging", body: `{}`, token: "super"})
	assert.True(t, isValidation(err), "got %v", err)
}

func TestAdminHandler_SetLogging_False(t *testing.T) {
	var got *bool
	h := NewAdminHandler(&stubAdminService{
		setLogging: func(_ context.Context, enabled bool) error {
			got = &enabled
			return nil
		},
	})

	rec, err := do(t, h.SetLogging, call{method: http.MethodPut, target: "/api/admin/settings/logging", body: `{"enabled":false}`, token: "super"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got)
	assert.JSONEq(t, `{"enabled":false}`, rec.Body.String())
}

type stubRealtimeService struct {
	ports.RealtimeService
	issue     func(ctx context.Context, p domain.Principal, channel string) (string, error)
	subscribe func(ctx context.Context, token, channel string) (ports.Subscription, error)
}

func (s *stubRealtimeService) IssueChannelToken(ctx context.Context, p domain.Principal, channel string) (string, error) {
	return s.issue(ctx, p, channel)
}

func (s *stubRealtimeService) Subscribe(ctx context.Context, token, channel string) (ports.Subscription, error) {
	return s.subscribe(ctx, token, channel)
}

type chanSubscription struct {
	ch     chan []byte
	closed bool
}

func (s *chanSubscription) Messages() <-chan []byte { return s.ch }

func (s *chanSubscription) Close() error {
	s.closed = true
	return nil
}

func TestRealtimeHandler_Authorize(t *testing.T) {
	h := NewRealtimeHandler(&stubRealtimeService{
		issue: func(_ context.Context, p domain.Principal, channel string) (string, error) {
			if channel != domain.NotificationChannel(p.ID) {
				return "", domain.ErrForbidden
			}
			return "chan-token", nil
		},
	}, testLogger())

	rec, err := do(t, h.Authorize, call{method: http.MethodPost, target: "/api/realtime/auth", body: `{"channel":"notification-u1"}`, token: "user"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"chan-token"}`, rec.Body.String())

	_, err = do(t, h.Authorize, call{method: http.MethodPost, target: "/api/realtime/auth", body: `{"channel":"notification-u2"}`, token: "user"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRealtimeHandler_Stream_RelaysUntilClosed(t *testing.T) {
	sub := &chanSubscription{ch: make(chan []byte, 2)}
	sub.ch <- []byte(`{"event":"new-message"}`)
	close(sub.ch)

	h := NewRealtimeHandler(&stubRealtimeService{
		subscribe: func(_ context.Context, token, channel string) (ports.Subscription, error) {
			assert.Equal(t, "tok", token)
			assert.Equal(t, "chat-c1", channel)
			return sub, nil
		},
	}, testLogger())

	rec, err := do(t, h.Stream, call{method: http.MethodGet, target: "/api/realtime/stream?channel=chat-c1&token=tok"})
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "data: {\"event\":\"new-message\"}\n\n")
	assert.True(t, sub.closed)
}

func TestRealtimeHandler_ShutdownEndsOpenStreams(t *testing.T) {
	sub := &chanSubscription{ch: make(chan []byte)}
	started := make(chan struct{})
	h := NewRealtimeHandler(&stubRealtimeService{
		subscribe: func(context.Context, string, string) (ports.Subscription, error) {
			close(started)
			return sub, nil
		},
	}, testLogger())

	type result struct {
		body string
		err  error
	}
	finished := make(chan result, 1)
	go func() {
		rec, err := do(t, h.Stream, call{method: http.MethodGet, target: "/api/realtime/stream?channel=chat-c1&token=tok"})
		finished <- result{body: rec.Body.String(), err: err}
	}()

	<-started
	h.Shutdown()
	h.Shutdown()

	select {
	case r := <-finished:
		require.NoError(t, r.err)
		assert.Contains(t, r.body, ": connected")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end on shutdown")
	}
	assert.True(t, sub.closed)

	_, err := do(t, h.Stream, call{method: http.MethodGet, target: "/api/realtime/stream?channel=chat-c1&token=tok"})
	assert.Equal(t, http.StatusServiceUnavailable, httpStatus(err))
}

func TestRealtimeHandler_Stream_BadToken(t *testing.T) {
	h := NewRealtimeHandler(&stubRealtimeService{
		subscribe: func(context.Context, string, string) (ports.Subscription, error) {
			return nil, domain.ErrUnauthorized
		},
	}, testLogger())

	_, err := do(t, h.Stream, call{method: http.MethodGet, target: "/api/realtime/stream?channel=chat-c1&token=bad"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = do(t, h.Stream, call{method: http.MethodGet, target: "/api/realtime/stream?channel=chat-c1"})
	assert.Equal(t, http.StatusBadRequest, httpStatus(err))
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec, err := do(t, NewHealthHandler(map[string]Pinger{"postgres": ok, "redis": ok}).Readiness, call{method: http.MethodGet, target: "/health/ready"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, err = do(t, NewHealthHandler(map[string]Pinger{"postgres": ok, "mongodb": down}).Readiness, call{method: http.MethodGet, target: "/health/ready"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{
		"status": "degraded",
		"dependencies": {
			"postgres": {"status": "ok"},
			"mongodb": {"status": "unhealthy", "error": "connection refused"}
		}
	}`, rec.Body.String())
}
