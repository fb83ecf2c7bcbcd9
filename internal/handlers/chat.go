package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListUsers returns the caller's contacts with their unread counts
func (h *ChatHandler) ListUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	users, err := h.chatService.ChatUsers(p)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *ChatHandler) Conversation(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	peerID, ok := pathID(c, "userId", "user")
	if !ok {
		return
	}
	messages, err := h.chatService.Conversation(p, peerID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req services.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.chatService.Send(c.Request.Context(), p, req)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	type MarkReadRequest struct {
		SenderID uint64 `json:"senderId" binding:"required"`
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "senderId is required")
		return
	}

	updated, err := h.chatService.MarkRead(p, req.SenderID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Messages marked as read",
		"updated": updated,
	})
}

func respondChatError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrChatPeerNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrMessageRequired),
		errors.Is(err, services.ErrCannotMessageSelf):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
