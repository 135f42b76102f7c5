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
	"gorm.io/gorm"
)

// MachineHandler serves machine CRUD and pushes status changes to all
// connected clients.
type MachineHandler struct {
	fanout *realtime.Fanout
}

// NewMachineHandler creates a machine handler over the shared fanout service.
func NewMachineHandler(fanout *realtime.Fanout) *MachineHandler {
	return &MachineHandler{fanout: fanout}
}

// CreateMachineRequest represents the request payload for creating a machine
type CreateMachineRequest struct {
	Code     string               `json:"code" binding:"required"`
	Name     string               `json:"name" binding:"required"`
	Type     string               `json:"type"`
	Status   models.MachineStatus `json:"status"`
	Location string               `json:"location"`
}

// UpdateMachineRequest represents the request payload for updating a machine
type UpdateMachineRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Location *string `json:"location"`
}

// UpdateMachineStatusRequest represents a minimal request to change status
type UpdateMachineStatusRequest struct {
	Status models.MachineStatus `json:"status" binding:"required"`
}

func validMachineStatus(s models.MachineStatus) bool {
	switch s {
	case models.MachineRunning, models.MachineIdle, models.MachineMaintenance:
		return true
	}
	return false
}

// CreateMachine handles POST /api/machines
func (h *MachineHandler) CreateMachine(c *gin.Context) {
	var req CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.MachineIdle
	}
	if !validMachineStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine status"})
		return
	}

	var existing models.Machine
	if err := database.GetDB().Where("code = ?", req.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Machine code already in use"})
		return
	}

	machine := models.Machine{
		ID:       "mc-" + uuid.NewString(),
		Code:     req.Code,
		Name:     req.Name,
		Type:     req.Type,
		Status:   status,
		Location: req.Location,
	}

	if err := database.GetDB().Create(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create machine"})
		return
	}

	c.JSON(http.StatusCreated, machine)
}

// GetMachines handles GET /api/machines
// Optional query param: status to filter by operational status.
func (h *MachineHandler) GetMachines(c *gin.Context) {
	query := database.GetDB().Model(&models.Machine{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var machines []models.Machine
	if err := query.Order("code asc").Find(&machines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch machines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"machines": machines,
		"count":    len(machines),
	})
}

// GetMachineByID handles GET /api/machines/:id
func (h *MachineHandler) GetMachineByID(c *gin.Context) {
	var machine models.Machine
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch machine"})
		}
		return
	}
	c.JSON(http.StatusOK, machine)
}

// UpdateMachine handles PUT /api/machines/:id
func (h *MachineHandler) UpdateMachine(c *gin.Context) {
	var machine models.Machine
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch machine"})
		}
		return
	}

	var req UpdateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		machine.Name = *req.Name
	}
	if req.Type != nil {
		machine.Type = *req.Type
	}
	if req.Location != nil {
		machine.Location = *req.Location
	}

	if err := database.GetDB().Save(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update machine"})
		return
	}

	c.JSON(http.StatusOK, machine)
}

// UpdateMachineStatus handles PATCH /api/machines/:id/status
// Pushes the status change to every connected client.
func (h *MachineHandler) UpdateMachineStatus(c *gin.Context) {
	var req UpdateMachineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validMachineStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid machine status"})
		return
	}

	var machine models.Machine
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch machine"})
		}
		return
	}

	machine.Status = req.Status
	if err := database.GetDB().Model(&machine).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.fanout.PushToAll(realtime.Notification{
		Title:   "Machine status changed",
		Message: fmt.Sprintf("%s (%s) is now %s", machine.Name, machine.Code, machine.Status),
		Metadata: map[string]any{
			"machineId": machine.ID,
			"status":    string(machine.Status),
		},
		CreatedAt: time.Now(),
	})

	c.JSON(http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/machines/:id
// A machine with allotments cannot be deleted.
func (h *MachineHandler) DeleteMachine(c *gin.Context) {
	var machine models.Machine
	if err := database.GetDB().Where("id = ?", c.Param("id")).First(&machine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch machine"})
		}
		return
	}

	var allotted int64
	if err := database.GetDB().Model(&models.Allotment{}).Where("machine_id = ?", machine.ID).Count(&allotted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check allotments"})
		return
	}
	if allotted > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Machine has allotments and cannot be deleted"})
		return
	}

	if err := database.GetDB().Delete(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete machine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Machine deleted successfully",
		"id":      machine.ID,
	})
}
