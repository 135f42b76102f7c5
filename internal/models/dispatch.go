package models

import (
	"gorm.io/gorm"
)

// DispatchStatus represents the lifecycle status of a dispatch plan
type DispatchStatus string

const (
	DispatchDraft      DispatchStatus = "draft"
	DispatchConfirmed  DispatchStatus = "confirmed"
	DispatchDispatched DispatchStatus = "dispatched"
)

// DispatchPlan represents a planned shipment of rolls to a party
type DispatchPlan struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	PartyName   string         `json:"partyName" gorm:"column:party_name;not null"`
	Destination string         `json:"destination"`
	PlannedDate string         `json:"plannedDate" gorm:"column:planned_date"`
	Status      DispatchStatus `json:"status" gorm:"not null;default:'draft'"`
	Items       []DispatchItem `json:"items" gorm:"foreignKey:DispatchPlanID"`
	UserID      string         `json:"-" gorm:"column:user_id;index"`
	gorm.Model
}

// TableName specifies the table name for DispatchPlan Model
func (DispatchPlan) TableName() string {
	return "dispatch_plans"
}

// DispatchItem links one roll to a dispatch plan
type DispatchItem struct {
	ID             uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	DispatchPlanID string `json:"-" gorm:"column:dispatch_plan_id;index"`
	RollID         string `json:"rollId" gorm:"column:roll_id;not null"`
}

// TableName specifies the table name for DispatchItem Model
func (DispatchItem) TableName() string {
	return "dispatch_items"
}
