package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllotmentHandler serves production allotment planning and pushes lifecycle
// events to connected clients.
type AllotmentHandler struct {
	fanout *realtime.Fanout
}

// NewAllotmentHandler creates an allotment handler over the shared fanout service.
func NewAllotmentHandler(fanout *realtime.Fanout) *AllotmentHandler {
	return &AllotmentHandler{fanout: fanout}
}

// CreateAllotmentRequest represents the request payload for creating an allotment
type CreateAllotmentRequest struct {
	MachineID  string  `json:"machineId" binding:"required"`
	Quality    string  `json:"quality" binding:"required"`
	OrderRef   string  `json:"orderRef"`
	QuantityKg float64 `json:"quantityKg" binding:"required,gt=0"`
	StartDate  string  `json:"startDate" binding:"required"`
	DueDate    string  `json:"dueDate" binding:"required"`
}

// UpdateAllotmentStatusRequest represents a minimal request to change status
type UpdateAllotmentStatusRequest struct {
	Status models.AllotmentStatus `json:"status" binding:"required"`
}

// allotmentTransitions lists the allowed status transitions. Completed and
// cancelled are terminal.
var allotmentTransitions = map[models.AllotmentStatus][]models.AllotmentStatus{
	models.AllotmentPlanned: {models.AllotmentRunning, models.AllotmentCancelled},
	models.AllotmentRunning: {models.AllotmentCompleted, models.AllotmentCancelled},
}

func allotmentTransitionAllowed(from, to models.AllotmentStatus) bool {
	for _, next := range allotmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CreateAllotment handles POST /api/allotments
// Creates a new production allotment for the authenticated user
func (h *AllotmentHandler) CreateAllotment(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateAllotmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The machine must exist before production can be allotted to it
	var machine models.Machine
	if err := database.GetDB().Where("id = ?", req.MachineID).First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machineId: machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate machineId"})
		}
		return
	}

	allotment := models.Allotment{
		ID:         "alt-" + uuid.NewString(),
		MachineID:  machine.ID,
		Quality:    req.Quality,
		OrderRef:   req.OrderRef,
		QuantityKg: req.QuantityKg,
		StartDate:  req.StartDate,
		DueDate:    req.DueDate,
		Status:     models.AllotmentPlanned,
		UserID:     userID,
	}

	if err := database.GetDB().Create(&allotment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create allotment"})
		return
	}

	h.fanout.PushToAll(realtime.Notification{
		Title:   "New production allotment",
		Message: fmt.Sprintf("%s (%.0f kg) allotted to %s", allotment.Quality, allotment.QuantityKg, machine.Code),
		Metadata: map[string]any{
			"allotmentId": allotment.ID,
			"machineId":   machine.ID,
		},
		CreatedAt: time.Now(),
	})

	c.JSON(http.StatusCreated, allotment)
}

// GetAllotments handles GET /api/allotments
// Query params: page (default 1), limit (default 10), sort (asc|desc on
// created_at, default desc), machineId and status filters.
func (h *AllotmentHandler) GetAllotments(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")
	sortParam := strings.ToLower(c.DefaultQuery("sort", "desc"))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	order := "created_at desc"
	if sortParam == "asc" {
		order = "created_at asc"
	}

	query := database.GetDB().Model(&models.Allotment{})
	if machineID := c.Query("machineId"); machineID != "" {
		query = query.Where("machine_id = ?", machineID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count allotments"})
		return
	}

	var allotments []models.Allotment
	result := query.Session(&gorm.Session{}).Order(order).Limit(limit).Offset(offset).Find(&allotments)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch allotments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allotments": allotments,
		"count":      len(allotments),
		"total":      total,
		"page":       page,
		"limit":      limit,
		"sort":       sortParam,
	})
}

// GetAllotmentByID handles GET /api/allotments/:id
func (h *AllotmentHandler) GetAllotmentByID(c *gin.Context) {
	var allotment models.Allotment
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&allotment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Allotment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch allotment"})
		}
		return
	}
	c.JSON(http.StatusOK, allotment)
}

// UpdateAllotmentStatus handles PATCH /api/allotments/:id/status
// Enforces the planned -> running -> completed lifecycle (cancel allowed from
// planned and running) and pushes the transition to all connected clients.
func (h *AllotmentHandler) UpdateAllotmentStatus(c *gin.Context) {
	var req UpdateAllotmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var allotment models.Allotment
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&allotment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Allotment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch allotment"})
		}
		return
	}

	if !allotmentTransitionAllowed(allotment.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Cannot change status from %s to %s", allotment.Status, req.Status),
		})
		return
	}

	allotment.Status = req.Status
	if err := database.GetDB().Model(&allotment).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.fanout.PushToAll(realtime.Notification{
		Title:   "Allotment status changed",
		Message: fmt.Sprintf("Allotment %s for %s is now %s", allotment.ID, allotment.Quality, allotment.Status),
		Metadata: map[string]any{
			"allotmentId": allotment.ID,
			"status":      string(allotment.Status),
		},
		CreatedAt: time.Now(),
	})

	c.JSON(http.StatusOK, allotment)
}

// DeleteAllotment handles DELETE /api/allotments/:id
// Only planned allotments can be deleted.
func (h *AllotmentHandler) DeleteAllotment(c *gin.Context) {
	var allotment models.Allotment
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&allotment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Allotment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch allotment"})
		}
		return
	}

	if allotment.Status != models.AllotmentPlanned {
		c.JSON(http.StatusConflict, gin.H{"error": "Only planned allotments can be deleted"})
		return
	}

	if err := database.GetDB().Delete(&allotment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete allotment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Allotment deleted successfully",
		"id":      allotment.ID,
	})
}
