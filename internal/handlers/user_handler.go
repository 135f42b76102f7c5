package handlers

import (
	"net/http"
	"time"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// UserHandler serves user listings enriched with live presence state.
type UserHandler struct {
	registry *realtime.Registry
}

// NewUserHandler creates a user handler over the shared registry.
func NewUserHandler(registry *realtime.Registry) *UserHandler {
	return &UserHandler{registry: registry}
}

type UserResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	FullName   string     `json:"fullName"`
	Role       string     `json:"role"`
	Online     bool       `json:"online"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

// GetAllUsers returns all users (protected)
// GET /api/users
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.GetDB().Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	// Map to safe response payload with live presence
	resp := lo.Map(users, func(u models.User, _ int) UserResponse {
		return UserResponse{
			ID:         u.ID,
			Username:   u.Username,
			FullName:   u.FullName,
			Role:       u.Role,
			Online:     h.registry.ActiveCount(u.ID) > 0,
			LastSeenAt: u.LastSeenAt,
		}
	})

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}
