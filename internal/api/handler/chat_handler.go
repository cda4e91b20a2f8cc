package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autodealer/showroom/internal/core/ports"
)

// ChatHandler handles HTTP requests for conversations and their messages.
type ChatHandler struct {
	chats ports.ChatService
}

func NewChatHandler(chats ports.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// Start returns the caller's conversation with a room's owner, creating it
// on first contact.
//
// @Summary      Start a conversation
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startChatRequest  true  "Room"
// @Success      200   {object}  conversationResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/chats [post]
func (h *ChatHandler) Start(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req startChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	conv, err := h.chats.Start(c.Request().Context(), p, req.RoomID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversationResponse{Conversation: conv})
}

// List handles GET /api/chats.
//
// @Summary      List the caller's conversations
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  conversationsResponse
// @Router       /api/chats [get]
func (h *ChatHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	convs, err := h.chats.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversationsResponse{Conversations: convs})
}

// Messages returns history oldest first. Pass before (RFC 3339) to page back.
//
// @Summary      Conversation history
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Conversation ID"
// @Param        before  query     string  false  "Only messages older than this timestamp"
// @Param        limit   query     int     false  "Max messages"
// @Success      200     {object}  messagesResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/chats/{id}/messages [get]
func (h *ChatHandler) Messages(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var (
		before *time.Time
		limit  int
	)
	err = echo.QueryParamsBinder(c).
		Int("limit", &limit).
		CustomFunc("before", func(values []string) []error {
			t, err := time.Parse(time.RFC3339, values[0])
			if err != nil {
				return []error{err}
			}
			before = &t
			return nil
		}).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "before must be an RFC 3339 timestamp and limit an integer")
	}
	if limit <= 0 {
		limit = 50
	}

	msgs, err := h.chats.Messages(c.Request().Context(), p, c.Param("id"), before, min(limit, maxLimit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messagesResponse{Messages: msgs})
}

// Send handles POST /api/chats/:id/messages.
//
// @Summary      Send a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Conversation ID"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  chatMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/chats/{id}/messages [post]
func (h *ChatHandler) Send(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg, err := h.chats.Send(c.Request().Context(), p, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, chatMessageResponse{Message: msg})
}

// MarkRead handles PUT /api/chats/:id/read.
//
// @Summary      Mark the other party's messages read
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  markedResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id}/read [put]
func (h *ChatHandler) MarkRead(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.chats.MarkRead(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markedResponse{Updated: n})
}
