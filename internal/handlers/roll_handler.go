package handlers

import (
	"errors"
	"net/http"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RollHandler serves roll tracking.
type RollHandler struct{}

// NewRollHandler creates a roll handler.
func NewRollHandler() *RollHandler {
	return &RollHandler{}
}

// CreateRollRequest represents the request payload for creating a roll
type CreateRollRequest struct {
	RollNumber  string  `json:"rollNumber" binding:"required"`
	AllotmentID string  `json:"allotmentId" binding:"required"`
	WeightKg    float64 `json:"weightKg" binding:"required,gt=0"`
	LengthM     float64 `json:"lengthM" binding:"gte=0"`
	Grade       string  `json:"grade"`
}

// UpdateRollStatusRequest represents a minimal request to change roll status
type UpdateRollStatusRequest struct {
	Status models.RollStatus `json:"status" binding:"required"`
}

// CreateRoll handles POST /api/rolls
// A roll is always wound against an existing, non-cancelled allotment.
func (h *RollHandler) CreateRoll(c *gin.Context) {
	var req CreateRollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var allotment models.Allotment
	if err := database.GetDB().Where("id = ?", req.AllotmentID).First(&allotment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid allotmentId: allotment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate allotmentId"})
		}
		return
	}
	if allotment.Status == models.AllotmentCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot add rolls to a cancelled allotment"})
		return
	}

	var existing models.Roll
	if err := database.GetDB().Where("roll_number = ?", req.RollNumber).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Roll number already in use"})
		return
	}

	grade := req.Grade
	if grade == "" {
		grade = "A"
	}

	roll := models.Roll{
		ID:          "roll-" + uuid.NewString(),
		RollNumber:  req.RollNumber,
		AllotmentID: allotment.ID,
		WeightKg:    req.WeightKg,
		LengthM:     req.LengthM,
		Grade:       grade,
		Status:      models.RollWound,
	}

	if err := database.GetDB().Create(&roll).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create roll"})
		return
	}

	c.JSON(http.StatusCreated, roll)
}

// GetRolls handles GET /api/rolls
// Optional query params: allotmentId and status filters.
func (h *RollHandler) GetRolls(c *gin.Context) {
	query := database.GetDB().Model(&models.Roll{})
	if allotmentID := c.Query("allotmentId"); allotmentID != "" {
		query = query.Where("allotment_id = ?", allotmentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var rolls []models.Roll
	if err := query.Order("roll_number asc").Find(&rolls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rolls"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rolls": rolls,
		"count": len(rolls),
	})
}

// UpdateRollStatus handles PATCH /api/rolls/:id/status
// Only wound -> inspected is allowed here; dispatched is set exclusively by
// executing a dispatch plan.
func (h *RollHandler) UpdateRollStatus(c *gin.Context) {
	var req UpdateRollStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != models.RollInspected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rolls can only be marked inspected here; dispatch happens via dispatch plans"})
		return
	}

	var roll models.Roll
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&roll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Roll not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roll"})
		}
		return
	}

	if roll.Status != models.RollWound {
		c.JSON(http.StatusConflict, gin.H{"error": "Only wound rolls can be inspected"})
		return
	}

	roll.Status = models.RollInspected
	if err := database.GetDB().Model(&roll).Update("status", roll.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, roll)
}
