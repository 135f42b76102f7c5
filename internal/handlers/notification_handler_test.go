package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"mill-ops-api/internal/auth"
	"mill-ops-api/internal/database"
	"mill-ops-api/internal/middleware"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newNotificationRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	seed := []models.Notification{
		{ID: "ntf-1", UserID: "emp-1", Title: "Dispatch completed", Message: "2 roll(s) dispatched"},
		{ID: "ntf-2", UserID: "emp-1", Title: "Machine status changed", Message: "Loom 1 is now idle", Read: true},
		{ID: "ntf-3", UserID: "emp-2", Title: "Someone else's", Message: "not yours"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	h := NewNotificationHandler()
	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/notifications", h.GetNotifications)
	r.PATCH("/api/notifications/:id/read", h.MarkNotificationRead)

	token, err := auth.GenerateToken("emp-1", "alice")
	require.NoError(t, err)
	return r, token
}

func TestGetNotifications_OwnOnly(t *testing.T) {
	r, token := newNotificationRouter(t)

	w := authedJSON(t, r, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
		Count         int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	for _, n := range resp.Notifications {
		require.Equal(t, "emp-1", n.UserID)
	}
}

func TestGetNotifications_UnreadFilter(t *testing.T) {
	r, token := newNotificationRouter(t)

	w := authedJSON(t, r, http.MethodGet, "/api/notifications?unread=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
		Count         int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "ntf-1", resp.Notifications[0].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	r, token := newNotificationRouter(t)

	w := authedJSON(t, r, http.MethodPatch, "/api/notifications/ntf-1/read", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Notification
	require.NoError(t, database.GetDB().Where("id = ?", "ntf-1").First(&stored).Error)
	require.True(t, stored.Read)
}

func TestMarkNotificationRead_NotOwner(t *testing.T) {
	r, token := newNotificationRouter(t)

	w := authedJSON(t, r, http.MethodPatch, "/api/notifications/ntf-3/read", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
