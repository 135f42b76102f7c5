package handlers

import (
	"net/http"
	"strconv"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves persisted chat history. Live delivery happens over the
// websocket channel; this is the catch-up surface.
type ChatHandler struct{}

// NewChatHandler creates a chat history handler.
func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

// GetMessages handles GET /api/chat/messages
// With ?peer=<id> it returns the two-way direct history between the caller
// and that peer; without it, recent broadcast messages. Optional limit
// (default 50, max 200). Messages come back newest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := database.GetDB().Model(&models.ChatMessage{}).Order("created_at desc").Limit(limit)
	if peer := c.Query("peer"); peer != "" {
		query = query.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peer, peer, userID,
		)
	} else {
		query = query.Where("receiver_id = ''")
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}
