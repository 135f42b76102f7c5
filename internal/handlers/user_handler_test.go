package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/realtime"
	"mill-ops-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestGetAllUsers_WithPresence(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.Create(&models.User{ID: "emp-1", Username: "alice", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "emp-2", Username: "bob", Password: "x"}).Error)

	registry := realtime.NewRegistry()
	registry.Register("emp-1", nopConn{})

	r := gin.New()
	r.GET("/api/users", NewUserHandler(registry).GetAllUsers)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []UserResponse `json:"users"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)

	byID := map[string]UserResponse{}
	for _, u := range resp.Users {
		byID[u.ID] = u
	}
	require.True(t, byID["emp-1"].Online)
	require.False(t, byID["emp-2"].Online)
}
