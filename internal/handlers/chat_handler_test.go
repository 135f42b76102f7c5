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

func newChatRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	seed := []models.ChatMessage{
		{ID: "msg-1", SenderID: "emp-1", SenderName: "Alice", ReceiverID: "", Body: "shift change at 6"},
		{ID: "msg-2", SenderID: "emp-2", SenderName: "Bob", ReceiverID: "emp-1", Body: "loom 3 is down"},
		{ID: "msg-3", SenderID: "emp-1", SenderName: "Alice", ReceiverID: "emp-2", Body: "on my way"},
		{ID: "msg-4", SenderID: "emp-3", SenderName: "Carol", ReceiverID: "emp-2", Body: "unrelated"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	h := NewChatHandler()
	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.GET("/api/chat/messages", h.GetMessages)

	token, err := auth.GenerateToken("emp-1", "alice")
	require.NoError(t, err)
	return r, token
}

func TestGetMessages_BroadcastHistory(t *testing.T) {
	r, token := newChatRouter(t)

	w := authedJSON(t, r, http.MethodGet, "/api/chat/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
		Count    int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, "msg-1", resp.Messages[0].ID)
}

func TestGetMessages_PeerHistoryBothDirections(t *testing.T) {
	r, token := newChatRouter(t)

	w := authedJSON(t, r, http.MethodGet, "/api/chat/messages?peer=emp-2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
		Count    int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	for _, msg := range resp.Messages {
		require.NotEqual(t, "msg-4", msg.ID, "must not leak another pair's conversation")
	}
}

func TestGetMessages_RequiresAuth(t *testing.T) {
	r, _ := newChatRouter(t)

	w := authedJSON(t, r, http.MethodGet, "/api/chat/messages", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
