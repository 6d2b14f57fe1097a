package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finbro-chat/internal/app"
	"finbro-chat/internal/transport/http/middleware"
	"finbro-chat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
	ChatID  string `json:"chat_id" binding:"max=64"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage accepts anonymous turns; an X-User-Id header attaches the
// persistence identity for this chat's session.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	userID, _ := middleware.UserIDFromHeader(c)

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:  userID,
		ChatID:  req.ChatID,
		Content: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrChatBusy):
			response.Error(c, http.StatusConflict, response.CodeChatBusy, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, result)
}

// Transcript exposes the live in-memory transcript of an open session. The
// optional identity header scopes the lookup, so one user's live session is
// never readable through another identity.
func (h *ChatHandler) Transcript(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat_id")
		return
	}

	userID, _ := middleware.UserIDFromHeader(c)
	messages, ok := h.chatService.Transcript(userID, chatID)
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeChatNotFound, "chat not found")
		return
	}
	response.OK(c, gin.H{"chat_id": chatID, "messages": messages})
}
