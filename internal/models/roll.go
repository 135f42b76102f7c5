package models

import (
	"gorm.io/gorm"
)

// RollStatus represents the tracking status of a produced roll
type RollStatus string

const (
	RollWound      RollStatus = "wound"
	RollInspected  RollStatus = "inspected"
	RollDispatched RollStatus = "dispatched"
)

// Roll represents one produced roll of cloth, tracked from winding to dispatch
type Roll struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	RollNumber  string     `json:"rollNumber" gorm:"column:roll_number;unique;not null"`
	AllotmentID string     `json:"allotmentId" gorm:"column:allotment_id;not null;index"`
	WeightKg    float64    `json:"weightKg" gorm:"column:weight_kg"`
	LengthM     float64    `json:"lengthM" gorm:"column:length_m"`
	Grade       string     `json:"grade" gorm:"default:'A'"`
	Status      RollStatus `json:"status" gorm:"not null;default:'wound'"`
	gorm.Model
}

// TableName specifies the table name for Roll Model
func (Roll) TableName() string {
	return "rolls"
}
