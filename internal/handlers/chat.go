package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"profilescope/internal/services"
	"profilescope/pkg/logger"
)

// ChatSender streams follow-up answers for an open chat session
type ChatSender interface {
	Exists(sessionID string) bool
	Send(ctx context.Context, sessionID, message string, emit func(chunk string) error) error
}

type ChatHandler struct {
	chats ChatSender
}

func NewChatHandler(chats ChatSender) *ChatHandler {
	return &ChatHandler{
		chats: chats,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage handles POST /api/chat/:session/messages and streams the
// reply as server-sent events: message events with text chunks in arrival
// order, terminated by a done event.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID := c.Param("session")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	if !h.chats.Exists(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err := h.chats.Send(c.Request.Context(), sessionID, req.Message, func(chunk string) error {
		c.SSEvent("message", chunk)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// The session was evicted between the existence check and the send,
		// or the consumer disconnected mid-stream
		if errors.Is(err, services.ErrSessionNotFound) {
			c.SSEvent("error", services.ErrSessionNotFound.Error())
			c.Writer.Flush()
			return
		}
		logger.WithError(err).WithField("session", sessionID).Warn("Chat send aborted")
		return
	}

	c.SSEvent("done", "")
	c.Writer.Flush()
}
