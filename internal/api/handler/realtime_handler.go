package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/pkg/metrics"
)

const keepAliveInterval = 25 * time.Second

type channelRequest struct {
	Channel string `json:"channel" validate:"required,max=200"`
}

type channelTokenResponse struct {
	Token string `json:"token"`
}

// RealtimeHandler handles channel authorization and the server-sent event stream.
type RealtimeHandler struct {
	realtime ports.RealtimeService
	log      zerolog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

func NewRealtimeHandler(realtime ports.RealtimeService, log zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{realtime: realtime, log: log, done: make(chan struct{})}
}

// Shutdown ends every open stream and refuses new ones. http.Server.Shutdown
// does not cancel request contexts, so it must be registered with
// RegisterOnShutdown for streams to let the server drain.
func (h *RealtimeHandler) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Authorize checks the caller may observe channel and returns a short-lived
// token scoped to it.
//
// @Summary      Authorize a realtime channel
// @Tags         realtime
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      channelRequest  true  "Channel key, e.g. notification-{userId} or chat-{conversationId}"
// @Success      200   {object}  channelTokenResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/realtime/auth [post]
func (h *RealtimeHandler) Authorize(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req channelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	token, err := h.realtime.IssueChannelToken(c.Request().Context(), p, req.Channel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, channelTokenResponse{Token: token})
}

// Stream relays channel events as server-sent events until the client goes away.
//
// @Summary      Subscribe to a realtime channel
// @Tags         realtime
// @Produce      text/event-stream
// @Param        channel  query  string  true  "Channel key"
// @Param        token    query  string  true  "Channel token from /api/realtime/auth"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /api/realtime/stream [get]
func (h *RealtimeHandler) Stream(c echo.Context) error {
	channel, token := c.QueryParam("channel"), c.QueryParam("token")
	if channel == "" || token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "channel and token are required")
	}

	select {
	case <-h.done:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server is shutting down")
	default:
	}

	ctx := c.Request().Context()
	sub, err := h.realtime.Subscribe(ctx, token, channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	metrics.RealtimeSubscribers.Inc()
	defer metrics.RealtimeSubscribers.Dec()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(res, ": connected\n\n"); err != nil {
		return nil
	}
	res.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case msg, ok := <-sub.Messages():
			if !ok {
				h.log.Debug().Str("channel", channel).Msg("realtime subscription closed")
				return nil
			}
			if _, err := fmt.Fprintf(res, "data: %s\n\n", msg); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
