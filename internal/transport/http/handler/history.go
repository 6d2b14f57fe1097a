package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finbro-chat/internal/app"
	"finbro-chat/internal/transport/http/middleware"
	"finbro-chat/internal/transport/http/response"
)

type HistoryHandler struct {
	historyService *app.HistoryService
}

// HistoryActionRequest is the action-dispatch body the widget posts:
// save_message mirrors one transcript turn, update_chat_title renames a chat.
type HistoryActionRequest struct {
	Action  string `json:"action" binding:"required"`
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
	IsUser  *bool  `json:"is_user"`
	Title   string `json:"title"`
}

func NewHistoryHandler(historyService *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) PostAction(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "User ID required")
		return
	}

	var req HistoryActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	switch req.Action {
	case "save_message":
		isUser := true
		if req.IsUser != nil {
			isUser = *req.IsUser
		}
		if err := h.historyService.SaveMessage(c.Request.Context(), userID, req.ChatID, req.Message, isUser); err != nil {
			if errors.Is(err, app.ErrInvalidInput) {
				response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "chat_id and message required")
				return
			}
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save message failed")
			return
		}
		response.OK(c, gin.H{"success": true})

	case "update_chat_title":
		if err := h.historyService.UpdateChatTitle(userID, req.ChatID, req.Title); err != nil {
			if errors.Is(err, app.ErrInvalidInput) {
				response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "chat_id and title required")
				return
			}
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update chat title failed")
			return
		}
		response.OK(c, gin.H{"success": true})

	default:
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unknown action")
	}
}

// GetHistory returns one chat's transcript when chat_id is present, or the
// user's chat list when it is not.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "User ID required")
		return
	}

	chatID := c.Query("chat_id")
	if chatID == "" {
		chats, err := h.historyService.ListChats(userID)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chats failed")
			return
		}
		response.OK(c, gin.H{"chats": chats})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	entries, err := h.historyService.GetHistory(c.Request.Context(), userID, chatID, limit)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid chat_id")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}
	response.OK(c, gin.H{"messages": entries})
}

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok
}
