package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRollRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.Create(&models.Machine{ID: "mc-1", Code: "LM-01", Name: "Loom 1"}).Error)
	require.NoError(t, db.Create(&models.Allotment{ID: "alt-1", MachineID: "mc-1", Quality: "Poplin 40s", Status: models.AllotmentRunning}).Error)
	require.NoError(t, db.Create(&models.Allotment{ID: "alt-2", MachineID: "mc-1", Quality: "Denim 10oz", Status: models.AllotmentCancelled}).Error)

	h := NewRollHandler()
	r := gin.New()
	r.POST("/api/rolls", h.CreateRoll)
	r.GET("/api/rolls", h.GetRolls)
	r.PATCH("/api/rolls/:id/status", h.UpdateRollStatus)
	return r
}

func TestCreateRoll_Success(t *testing.T) {
	r := newRollRouter(t)

	w := postJSON(t, r, "/api/rolls", map[string]any{
		"rollNumber":  "R-001",
		"allotmentId": "alt-1",
		"weightKg":    85.5,
		"lengthM":     120.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var roll models.Roll
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roll))
	require.Equal(t, models.RollWound, roll.Status)
	require.Equal(t, "A", roll.Grade) // default grade
}

func TestCreateRoll_CancelledAllotment(t *testing.T) {
	r := newRollRouter(t)

	w := postJSON(t, r, "/api/rolls", map[string]any{
		"rollNumber":  "R-002",
		"allotmentId": "alt-2",
		"weightKg":    85.5,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRoll_DuplicateRollNumber(t *testing.T) {
	r := newRollRouter(t)

	payload := map[string]any{"rollNumber": "R-003", "allotmentId": "alt-1", "weightKg": 80.0}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/rolls", payload).Code)
	require.Equal(t, http.StatusConflict, postJSON(t, r, "/api/rolls", payload).Code)
}

func TestUpdateRollStatus_DispatchedRejected(t *testing.T) {
	r := newRollRouter(t)

	w := postJSON(t, r, "/api/rolls", map[string]any{
		"rollNumber":  "R-004",
		"allotmentId": "alt-1",
		"weightKg":    80.0,
	})
	var roll models.Roll
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roll))

	body := map[string]string{"status": "dispatched"}
	data, _ := json.Marshal(body)
	req, rec := patchRequest(t, "/api/rolls/"+roll.ID+"/status", data)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRollStatus_InspectedOnlyFromWound(t *testing.T) {
	r := newRollRouter(t)

	w := postJSON(t, r, "/api/rolls", map[string]any{
		"rollNumber":  "R-005",
		"allotmentId": "alt-1",
		"weightKg":    80.0,
	})
	var roll models.Roll
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roll))

	data, _ := json.Marshal(map[string]string{"status": "inspected"})
	req, rec := patchRequest(t, "/api/rolls/"+roll.ID+"/status", data)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// second inspection attempt hits a roll that is no longer wound
	req, rec = patchRequest(t, "/api/rolls/"+roll.ID+"/status", data)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}
