package models

import (
	"gorm.io/gorm"
)

// MachineStatus represents the operational status of a machine
type MachineStatus string

const (
	MachineRunning     MachineStatus = "running"
	MachineIdle        MachineStatus = "idle"
	MachineMaintenance MachineStatus = "maintenance"
)

// Machine represents a production machine (loom) on the shop floor
type Machine struct {
	ID       string        `json:"id" gorm:"primaryKey"`
	Code     string        `json:"code" gorm:"unique;not null"`
	Name     string        `json:"name" gorm:"not null"`
	Type     string        `json:"type"`
	Status   MachineStatus `json:"status" gorm:"not null;default:'idle'"`
	Location string        `json:"location"`
	gorm.Model
}

// TableName specifies the table name for Machine Model
func (Machine) TableName() string {
	return "machines"
}
