package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"
	"mill-ops-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DispatchHandler serves dispatch planning and pushes dispatch events to all
// users.
type DispatchHandler struct {
	fanout *realtime.Fanout
}

// NewDispatchHandler creates a dispatch handler over the shared fanout service.
func NewDispatchHandler(fanout *realtime.Fanout) *DispatchHandler {
	return &DispatchHandler{fanout: fanout}
}

// CreateDispatchPlanRequest represents the request payload for creating a plan
type CreateDispatchPlanRequest struct {
	PartyName   string   `json:"partyName" binding:"required"`
	Destination string   `json:"destination"`
	PlannedDate string   `json:"plannedDate"`
	RollIDs     []string `json:"rollIds" binding:"required,min=1"`
}

// CreateDispatchPlan handles POST /api/dispatch-plans
// Every referenced roll must exist and be inspected.
func (h *DispatchHandler) CreateDispatchPlan(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateDispatchPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rollIDs := lo.Uniq(req.RollIDs)
	var rolls []models.Roll
	if err := database.GetDB().Where("id IN ?", rollIDs).Find(&rolls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate rolls"})
		return
	}
	if len(rolls) != len(rollIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more rollIds do not exist"})
		return
	}
	for _, roll := range rolls {
		if roll.Status != models.RollInspected {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Roll %s is %s; only inspected rolls can be planned for dispatch", roll.RollNumber, roll.Status),
			})
			return
		}
	}

	plan := models.DispatchPlan{
		ID:          "dsp-" + uuid.NewString(),
		PartyName:   req.PartyName,
		Destination: req.Destination,
		PlannedDate: req.PlannedDate,
		Status:      models.DispatchDraft,
		Items: lo.Map(rollIDs, func(rollID string, _ int) models.DispatchItem {
			return models.DispatchItem{RollID: rollID}
		}),
		UserID: userID,
	}

	if err := database.GetDB().Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dispatch plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetDispatchPlans handles GET /api/dispatch-plans
func (h *DispatchHandler) GetDispatchPlans(c *gin.Context) {
	query := database.GetDB().Model(&models.DispatchPlan{}).Preload("Items")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var plans []models.DispatchPlan
	if err := query.Order("created_at desc").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatch plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dispatchPlans": plans,
		"count":         len(plans),
	})
}

// GetDispatchPlanByID handles GET /api/dispatch-plans/:id
func (h *DispatchHandler) GetDispatchPlanByID(c *gin.Context) {
	var plan models.DispatchPlan
	err := database.GetDB().Preload("Items").Where("id = ?", c.Param("id")).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch plan not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatch plan"})
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ConfirmDispatchPlan handles POST /api/dispatch-plans/:id/confirm
func (h *DispatchHandler) ConfirmDispatchPlan(c *gin.Context) {
	var plan models.DispatchPlan
	err := database.GetDB().Preload("Items").Where("id = ?", c.Param("id")).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch plan not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatch plan"})
		}
		return
	}

	if plan.Status != models.DispatchDraft {
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft plans can be confirmed"})
		return
	}

	plan.Status = models.DispatchConfirmed
	if err := database.GetDB().Model(&plan).Update("status", plan.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm dispatch plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ExecuteDispatchPlan handles POST /api/dispatch-plans/:id/dispatch
// Marks the plan and all its rolls dispatched in one transaction, then pushes
// a notification to every user (recorded durably per user).
func (h *DispatchHandler) ExecuteDispatchPlan(c *gin.Context) {
	var plan models.DispatchPlan
	err := database.GetDB().Preload("Items").Where("id = ?", c.Param("id")).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispatch plan not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dispatch plan"})
		}
		return
	}

	if plan.Status != models.DispatchConfirmed {
		c.JSON(http.StatusConflict, gin.H{"error": "Only confirmed plans can be dispatched"})
		return
	}

	rollIDs := lo.Map(plan.Items, func(item models.DispatchItem, _ int) string {
		return item.RollID
	})

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Roll{}).
			Where("id IN ?", rollIDs).
			Update("status", models.RollDispatched).Error; err != nil {
			return err
		}
		return tx.Model(&plan).Update("status", models.DispatchDispatched).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to dispatch plan"})
		return
	}
	plan.Status = models.DispatchDispatched

	var users []models.User
	if err := database.GetDB().Find(&users).Error; err == nil {
		identities := lo.Map(users, func(u models.User, _ int) string { return u.ID })
		h.fanout.PushToUsers(identities, realtime.Notification{
			Title:   "Dispatch completed",
			Message: fmt.Sprintf("%d roll(s) dispatched to %s", len(rollIDs), plan.PartyName),
			Metadata: map[string]any{
				"dispatchPlanId": plan.ID,
				"partyName":      plan.PartyName,
			},
			CreatedAt: time.Now(),
		})
	}

	c.JSON(http.StatusOK, plan)
}
