package models

import (
	"gorm.io/gorm"
)

// AllotmentStatus represents the lifecycle status of a production allotment
type AllotmentStatus string

const (
	AllotmentPlanned   AllotmentStatus = "planned"
	AllotmentRunning   AllotmentStatus = "running"
	AllotmentCompleted AllotmentStatus = "completed"
	AllotmentCancelled AllotmentStatus = "cancelled"
)

// Allotment represents a production allotment: a quality/order assigned to a
// machine for a planned quantity and period
type Allotment struct {
	ID         string          `json:"id" gorm:"primaryKey"`
	MachineID  string          `json:"machineId" gorm:"column:machine_id;not null;index"`
	Quality    string          `json:"quality" gorm:"not null"`
	OrderRef   string          `json:"orderRef" gorm:"column:order_ref"`
	QuantityKg float64         `json:"quantityKg" gorm:"column:quantity_kg"`
	StartDate  string          `json:"startDate" gorm:"column:start_date"`
	DueDate    string          `json:"dueDate" gorm:"column:due_date"`
	Status     AllotmentStatus `json:"status" gorm:"not null;default:'planned'"`
	UserID     string          `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for Allotment Model
func (Allotment) TableName() string {
	return "allotments"
}
